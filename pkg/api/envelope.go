package api

import "encoding/json"

// Envelope is the uniform response shape of every endpoint. Data holds
// the payload on success; Errors holds field-level validation messages
// when a request is rejected.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    json.RawMessage     `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
