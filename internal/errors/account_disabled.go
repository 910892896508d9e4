package errors

import "net/http"

var ErrAccountDisabled = &Exception{
	Message:    "this account has been deactivated",
	StatusCode: http.StatusForbidden,
}
