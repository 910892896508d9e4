package model

import (
	"time"

	"taskboard.dev/taskboard/pkg/api"
)

type Attachment struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID       string    `gorm:"size:36;not null;index" json:"task_id"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	Path         string    `gorm:"not null" json:"path"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Attachment) ToAPI() api.Attachment {
	return api.Attachment{
		ID:           a.ID,
		TaskID:       a.TaskID,
		OriginalName: a.OriginalName,
		Path:         a.Path,
		CreatedAt:    a.CreatedAt,
	}
}
