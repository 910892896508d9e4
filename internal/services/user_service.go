package services

import (
	"context"

	"github.com/sirupsen/logrus"

	model "taskboard.dev/taskboard/internal/models"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/pkg/api"
)

// UserService backs the admin user-management endpoints.
type UserService struct {
	repo   *repository.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo *repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]api.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]api.User, len(users))
	for i := range users {
		out[i] = users[i].ToAPI()
	}
	return out, nil
}

// ToggleActive flips a user's active flag. Deactivated users cannot
// sign in and their existing sessions fail on the next request.
func (s *UserService) ToggleActive(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetActive(ctx, id, !user.Active)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": id,
		"active":  updated.Active,
	}).Info("user active flag toggled")
	return updated, nil
}
