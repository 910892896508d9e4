package errors

import "net/http"

var ErrForbidden = &Exception{
	Message:    "you are not allowed to access this resource",
	StatusCode: http.StatusForbidden,
}
