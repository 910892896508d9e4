package model

import (
	"time"

	"taskboard.dev/taskboard/pkg/api"
)

// Preference stores per-user display defaults, one row per user.
type Preference struct {
	UserID      string      `gorm:"primaryKey;size:36" json:"user_id"`
	DefaultSort api.SortKey `gorm:"type:varchar(20);not null;default:recent" json:"default_sort"`
	PerPage     int         `gorm:"not null;default:15" json:"per_page"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (p *Preference) ToAPI() api.Preference {
	return api.Preference{
		DefaultSort: p.DefaultSort,
		PerPage:     p.PerPage,
	}
}
