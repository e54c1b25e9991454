package models

// ChatRequest is the body posted to /chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the body returned by /chat. Only Reply is read.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Healthy reports whether the backend declared itself healthy
func (h HealthResponse) Healthy() bool {
	return h.Status == "healthy"
}

// VersionResponse is returned by /version
type VersionResponse struct {
	Version string `json:"version"`
}
