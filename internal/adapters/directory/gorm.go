package directory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/IMperiumX/ranker/internal/domain/model"
	"github.com/IMperiumX/ranker/internal/domain/policy"
)

// gameRow is the persisted shape of a game.
type gameRow struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	Name     string `gorm:"uniqueIndex;size:100;not null"`
	Policy   string `gorm:"size:20;not null;default:highest"`
	IsActive bool   `gorm:"not null;default:true"`
}

func (gameRow) TableName() string { return "games" }

// userRow is the persisted shape of a user's display identity.
type userRow struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	DisplayName string `gorm:"size:255;not null"`
}

func (userRow) TableName() string { return "users" }

// GormGames implements Games on a relational database.
type GormGames struct {
	db *gorm.DB
}

// NewGormGames migrates the games table and returns the directory.
func NewGormGames(db *gorm.DB) (*GormGames, error) {
	if err := db.AutoMigrate(&gameRow{}); err != nil {
		return nil, fmt.Errorf("migrate games: %w", err)
	}
	return &GormGames{db: db}, nil
}

// Get implements Games.Get.
func (d *GormGames) Get(ctx context.Context, gameID string) (model.Game, error) {
	var row gameRow
	err := d.db.WithContext(ctx).First(&row, "id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Game{}, ErrGameNotFound
	}
	if err != nil {
		return model.Game{}, fmt.Errorf("load game: %w", err)
	}

	pol, err := policy.Parse(row.Policy)
	if err != nil {
		return model.Game{}, fmt.Errorf("game %s: %w", gameID, err)
	}
	return model.Game{ID: row.ID, Name: row.Name, Policy: pol, Active: row.IsActive}, nil
}

// GormUsers implements Users on a relational database.
type GormUsers struct {
	db *gorm.DB
}

// NewGormUsers migrates the users table and returns the directory.
func NewGormUsers(db *gorm.DB) (*GormUsers, error) {
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &GormUsers{db: db}, nil
}

// ResolveDisplay implements Users.ResolveDisplay.
func (d *GormUsers) ResolveDisplay(ctx context.Context, userID string) (Display, error) {
	var row userRow
	err := d.db.WithContext(ctx).First(&row, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Display{}, ErrUserNotFound
	}
	if err != nil {
		return Display{}, fmt.Errorf("load user: %w", err)
	}
	return Display{UserID: row.ID, DisplayName: row.DisplayName}, nil
}
