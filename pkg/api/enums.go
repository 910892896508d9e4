package api

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// SortKey selects the ordering of a task listing.
type SortKey string

const (
	SortRecent   SortKey = "recent"
	SortDueDate  SortKey = "due_date"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
)

func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidSortKey(k SortKey) bool {
	switch k {
	case SortRecent, SortDueDate, SortPriority, SortTitle:
		return true
	}
	return false
}
