package types

// SuccessEnvelope wraps every successful JSON response.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// ErrorEnvelope is the flat error body: Error carries the HTTP status text,
// Message the public message and Code the machine-readable error code.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
