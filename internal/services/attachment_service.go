package services

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	model "taskboard.dev/taskboard/internal/models"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/storage"
)

type AttachmentService struct {
	tasks       *repository.TaskRepository
	attachments *repository.AttachmentRepository
	storage     storage.Storage
	logger      *logrus.Logger
}

func NewAttachmentService(
	tasks *repository.TaskRepository,
	attachments *repository.AttachmentRepository,
	store storage.Storage,
	logger *logrus.Logger,
) *AttachmentService {
	return &AttachmentService{
		tasks:       tasks,
		attachments: attachments,
		storage:     store,
		logger:      logger,
	}
}

// Upload stores a file against one of the user's tasks. Ownership is
// checked before anything touches disk.
func (s *AttachmentService) Upload(ctx context.Context, userID, taskID, filename string, file io.Reader) (*model.Attachment, error) {
	if _, err := s.tasks.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	path, err := s.storage.Save(ctx, filename, file)
	if err != nil {
		s.logger.WithError(err).WithField("task_id", taskID).Error("attachment save failed")
		return nil, err
	}

	attachment, err := s.attachments.Create(ctx, taskID, filename, path)
	if err != nil {
		// The file is unreferenced now; remove it rather than leaving
		// it for the janitor.
		_ = s.storage.Remove(ctx, path)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"attachment_id": attachment.ID,
		"task_id":       taskID,
	}).Info("attachment uploaded")
	return attachment, nil
}

// Delete removes an attachment record and its file.
func (s *AttachmentService) Delete(ctx context.Context, userID, taskID, attachmentID string) error {
	if _, err := s.tasks.FindByID(ctx, userID, taskID); err != nil {
		return err
	}

	attachment, err := s.attachments.FindByID(ctx, taskID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.attachments.Delete(ctx, attachment.ID); err != nil {
		return err
	}
	if err := s.storage.Remove(ctx, attachment.Path); err != nil {
		s.logger.WithError(err).WithField("path", attachment.Path).Warn("attachment file removal failed")
	}

	return nil
}

// Open streams an attachment's file for download.
func (s *AttachmentService) Open(ctx context.Context, userID, taskID, attachmentID string) (*model.Attachment, io.ReadCloser, error) {
	if _, err := s.tasks.FindByID(ctx, userID, taskID); err != nil {
		return nil, nil, err
	}

	attachment, err := s.attachments.FindByID(ctx, taskID, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.storage.Open(ctx, attachment.Path)
	if err != nil {
		return nil, nil, err
	}
	return attachment, file, nil
}
