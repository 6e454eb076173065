package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sma-admin-gateway/internal/models"
)

// ProfileRepository provides access to stored profile documents.
type ProfileRepository interface {
	Get(ctx context.Context, key string) (models.ProfileDocument, error)
	Save(ctx context.Context, document *models.ProfileDocument) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, key string) (models.ProfileDocument, error) {
	var document models.ProfileDocument
	if err := r.db.WithContext(ctx).First(&document, "key = ?", key).Error; err != nil {
		return models.ProfileDocument{}, err
	}

	return document, nil
}

func (r *profileRepository) Save(ctx context.Context, document *models.ProfileDocument) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(document).Error
}
