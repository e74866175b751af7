package types

// SuccessEnvelope wraps every successful JSON response. Message is always
// present.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// APIError is the error half of the envelope. RequestID echoes the
// X-Request-Id response header so support can find the matching log line.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// Page is the list payload for cursor paginated endpoints.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
