// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// IndexBackend selects the ordered-index store: "memory" or "redis".
	IndexBackend string `koanf:"index_backend"`

	// RedisAddr, RedisPassword and RedisDB configure the redis index
	// backend. Ignored when IndexBackend is "memory".
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// DatabaseDSN selects the postgres score log and directories. Empty
	// means in-memory.
	DatabaseDSN string `koanf:"database_dsn"`

	// UpdateQueueSize bounds the deferred index update queue.
	UpdateQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of retry workers.
	WorkerCount int `koanf:"worker_count"`

	// RebuildBatchSize sets how many log records a rebuild reads per batch.
	RebuildBatchSize int `koanf:"rebuild_batch_size"`

	// MaxPageSize caps leaderboard window requests.
	MaxPageSize int `koanf:"max_page_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		IndexBackend:     "memory",
		RedisAddr:        "localhost:6379",
		RedisDB:          0,
		UpdateQueueSize:  10_000,
		WorkerCount:      2,
		RebuildBatchSize: 1_000,
		MaxPageSize:      100,
	}
}
