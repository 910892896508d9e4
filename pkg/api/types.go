package api

import "time"

// Task is the wire representation of a task, shared by the server
// handlers and the API client.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueAt       *time.Time   `json:"due_at,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Attachment struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	CreatedAt    time.Time `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Preference holds per-user display defaults.
type Preference struct {
	DefaultSort SortKey `json:"default_sort"`
	PerPage     int     `json:"per_page"`
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Items      []Task     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// TaskInput is the create/update payload for a task.
type TaskInput struct {
	Title       string       `json:"title" validate:"required,max=255"`
	Description string       `json:"description" validate:"max=4000"`
	Status      TaskStatus   `json:"status" validate:"required,oneof=todo in_progress completed"`
	Priority    TaskPriority `json:"priority" validate:"required,oneof=low medium high urgent"`
	DueAt       *time.Time   `json:"due_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type PreferenceInput struct {
	DefaultSort SortKey `json:"default_sort" validate:"required,oneof=recent due_date priority title"`
	PerPage     int     `json:"per_page" validate:"required,min=5,max=100"`
}
