package scorelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IMperiumX/ranker/internal/domain/model"
	"github.com/IMperiumX/ranker/internal/domain/policy"
)

// scoreRow is the persisted shape of one score record.
type scoreRow struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"index:idx_scores_user_game;not null"`
	GameID      string    `gorm:"index:idx_scores_user_game;index:idx_scores_game_score;not null"`
	Score       float64   `gorm:"type:numeric(12,2);index:idx_scores_game_score;not null"`
	Metadata    []byte    `gorm:"type:jsonb"`
	SubmittedAt time.Time `gorm:"index;not null"`
}

func (scoreRow) TableName() string { return "scores" }

func (r scoreRow) toRecord() (model.ScoreRecord, error) {
	var meta map[string]any
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &meta); err != nil {
			return model.ScoreRecord{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return model.ScoreRecord{
		ID:          r.ID,
		UserID:      r.UserID,
		GameID:      r.GameID,
		Score:       r.Score,
		Metadata:    meta,
		SubmittedAt: r.SubmittedAt,
	}, nil
}

// GormLog implements Log on a relational database via GORM.
type GormLog struct {
	db *gorm.DB
}

// NewGormLog migrates the scores table and returns the log.
func NewGormLog(db *gorm.DB) (*GormLog, error) {
	if err := db.AutoMigrate(&scoreRow{}); err != nil {
		return nil, fmt.Errorf("migrate scores: %w", err)
	}
	return &GormLog{db: db}, nil
}

// Append implements Log.Append.
func (l *GormLog) Append(ctx context.Context, rec model.ScoreRecord) (string, error) {
	row := scoreRow{
		ID:          rec.ID,
		UserID:      rec.UserID,
		GameID:      rec.GameID,
		Score:       rec.Score,
		SubmittedAt: rec.SubmittedAt,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = time.Now().UTC()
	}
	if rec.Metadata != nil {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			return "", fmt.Errorf("encode metadata: %w", err)
		}
		row.Metadata = data
	}

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("%w: %v", ErrAppend, err)
	}
	return row.ID, nil
}

// ForEachByGame implements Log.ForEachByGame using FindInBatches, so the
// full log is never loaded at once.
func (l *GormLog) ForEachByGame(ctx context.Context, gameID string, batchSize int, fn func(context.Context, []model.ScoreRecord) error) error {
	if batchSize < 1 {
		batchSize = 1
	}

	var rows []scoreRow
	result := l.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		FindInBatches(&rows, batchSize, func(_ *gorm.DB, _ int) error {
			batch := make([]model.ScoreRecord, 0, len(rows))
			for _, row := range rows {
				rec, err := row.toRecord()
				if err != nil {
					return err
				}
				batch = append(batch, rec)
			}
			return fn(ctx, batch)
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, result.Error)
	}
	return nil
}

// Best implements Log.Best with a single ordered query.
func (l *GormLog) Best(ctx context.Context, userID, gameID string, pol policy.Policy) (*model.ScoreRecord, error) {
	order := "score ASC"
	if pol == policy.HighestWins {
		order = "score DESC"
	}

	var row scoreRow
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Order(order).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
