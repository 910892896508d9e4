package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	apperrors "taskboard.dev/taskboard/internal/errors"
	model "taskboard.dev/taskboard/internal/models"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/pkg/api"
)

type TaskService struct {
	repo   *repository.TaskRepository
	logger *logrus.Logger
}

func NewTaskService(repo *repository.TaskRepository, logger *logrus.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// List returns one page of the user's tasks plus pagination metadata.
func (s *TaskService) List(ctx context.Context, q repository.TaskListQuery) ([]api.Task, api.Pagination, error) {
	tasks, pagination, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", q.UserID).Error("task listing failed")
		return nil, api.Pagination{}, err
	}

	out := make([]api.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].ToAPI()
	}
	return out, pagination, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *TaskService) Create(ctx context.Context, userID string, input api.TaskInput) (*model.Task, error) {
	task, err := s.repo.Create(ctx, userID, input)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("task create failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"user_id": userID,
	}).Info("task created")
	return task, nil
}

// Update applies input to the task, retrying once when another writer
// bumped the version between read and write.
func (s *TaskService) Update(ctx context.Context, userID, id string, input api.TaskInput) (*model.Task, error) {
	for attempt := 0; attempt < 2; attempt++ {
		task, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return nil, err
		}

		task.Title = input.Title
		task.Description = input.Description
		task.Status = input.Status
		task.Priority = input.Priority
		task.DueAt = input.DueAt

		err = s.repo.Update(ctx, task)
		if err == nil {
			return task, nil
		}
		if !errors.Is(err, apperrors.ErrOptimisticLock) {
			s.logger.WithError(err).WithField("task_id", id).Error("task update failed")
			return nil, err
		}
	}

	return nil, apperrors.ErrOptimisticLock
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": id,
		"user_id": userID,
	}).Info("task deleted")
	return nil
}
