package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskboard.dev/taskboard/internal/errors"
	model "taskboard.dev/taskboard/internal/models"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, taskID, originalName, path string) (*model.Attachment, error) {
	attachment := &model.Attachment{
		ID:           uuid.NewString(),
		TaskID:       taskID,
		OriginalName: originalName,
		Path:         path,
	}

	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *AttachmentRepository) FindByID(ctx context.Context, taskID, id string) (*model.Attachment, error) {
	var attachment model.Attachment
	err := r.db.WithContext(ctx).
		First(&attachment, "id = ? AND task_id = ?", id, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id).Error
}

// PathExists reports whether any attachment row references the given
// stored path. The janitor uses it to tell live files from orphans.
func (r *AttachmentRepository) PathExists(ctx context.Context, path string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Attachment{}).
		Where("path = ?", path).Count(&count).Error
	return count > 0, err
}
