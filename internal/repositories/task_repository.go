package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskboard.dev/taskboard/internal/errors"
	model "taskboard.dev/taskboard/internal/models"
	"taskboard.dev/taskboard/pkg/api"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskListQuery selects one page of a user's tasks. Empty Status or
// Priority means no filter; Search matches title and description.
type TaskListQuery struct {
	UserID   string
	Status   api.TaskStatus
	Priority api.TaskPriority
	Search   string
	Sort     api.SortKey
	Page     int
	PerPage  int
}

func (r *TaskRepository) Create(ctx context.Context, userID string, input api.TaskInput) (*model.Task, error) {
	task := &model.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueAt:       input.DueAt,
		Version:     1,
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		First(&task, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// List returns the page of tasks selected by q along with pagination
// metadata computed from the total match count.
func (r *TaskRepository) List(ctx context.Context, q TaskListQuery) ([]model.Task, api.Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 15
	}

	base := r.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", q.UserID)

	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		base = base.Where("priority = ?", q.Priority)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		base = base.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, api.Pagination{}, err
	}

	var tasks []model.Task
	err := base.
		Order(orderClause(q.Sort)).
		Limit(q.PerPage).
		Offset((q.Page - 1) * q.PerPage).
		Preload("Attachments").
		Find(&tasks).Error
	if err != nil {
		return nil, api.Pagination{}, err
	}

	return tasks, api.NewPagination(int(total), q.PerPage, q.Page), nil
}

func orderClause(sort api.SortKey) string {
	switch sort {
	case api.SortDueDate:
		// tasks without a due date sort last
		return "due_at IS NULL, due_at ASC, created_at DESC"
	case api.SortPriority:
		return "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at DESC"
	case api.SortTitle:
		return "title COLLATE NOCASE ASC"
	default:
		return "created_at DESC"
	}
}

// Update writes the mutable fields of task, guarded by its version
// column. apperrors.ErrOptimisticLock means the task changed
// underneath the caller.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"priority":    task.Priority,
			"due_at":      task.DueAt,
			"updated_at":  time.Now().UTC(),
			"version":     gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}

	task.Version++
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Task{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}
