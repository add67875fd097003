package handler

import "time"

// Response is the standard envelope for service-generated replies. /env
// and /metrics are written bare.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// HealthStatus is the data of GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Uptime  string `json:"uptime"`
	EnvFile string `json:"env_file"`
	EnvOK   bool   `json:"env_ok"`
	Version string `json:"version"`
}
