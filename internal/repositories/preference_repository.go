package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "taskboard.dev/taskboard/internal/models"
	"taskboard.dev/taskboard/pkg/api"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the user's preferences, falling back to defaults when
// none were saved yet.
func (r *PreferenceRepository) Get(ctx context.Context, userID string) (*model.Preference, error) {
	var pref model.Preference
	err := r.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.Preference{
				UserID:      userID,
				DefaultSort: api.SortRecent,
				PerPage:     15,
			}, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, userID string, input api.PreferenceInput) (*model.Preference, error) {
	pref := &model.Preference{
		UserID:      userID,
		DefaultSort: input.DefaultSort,
		PerPage:     input.PerPage,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_sort", "per_page", "updated_at"}),
		}).
		Create(pref).Error
	if err != nil {
		return nil, err
	}
	return pref, nil
}
