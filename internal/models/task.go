package model

import (
	"time"

	"taskboard.dev/taskboard/pkg/api"
)

type Task struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	UserID      string           `gorm:"size:36;not null;index" json:"user_id"`
	Title       string           `gorm:"not null" json:"title"`
	Description string           `json:"description,omitempty"`
	Status      api.TaskStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Priority    api.TaskPriority `gorm:"type:varchar(20);not null;index" json:"priority"`
	DueAt       *time.Time       `json:"due_at,omitempty"`
	Version     uint             `gorm:"not null;default:1" json:"version"`
	Attachments []Attachment     `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ToAPI converts the stored task to its wire representation.
func (t *Task) ToAPI() api.Task {
	out := api.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueAt:       t.DueAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, a := range t.Attachments {
		out.Attachments = append(out.Attachments, a.ToAPI())
	}
	return out
}
