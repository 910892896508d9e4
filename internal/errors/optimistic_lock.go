package errors

import "net/http"

var ErrOptimisticLock = &Exception{
	Message:    "the task was modified by someone else, please reload",
	StatusCode: http.StatusConflict,
}
