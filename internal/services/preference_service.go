package services

import (
	"context"

	model "taskboard.dev/taskboard/internal/models"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/pkg/api"
)

type PreferenceService struct {
	repo *repository.PreferenceRepository
}

func NewPreferenceService(repo *repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo}
}

func (s *PreferenceService) Get(ctx context.Context, userID string) (*model.Preference, error) {
	return s.repo.Get(ctx, userID)
}

func (s *PreferenceService) Update(ctx context.Context, userID string, input api.PreferenceInput) (*model.Preference, error) {
	return s.repo.Upsert(ctx, userID, input)
}
