// Package models contains data types and constants for the chat widget.
package models

// Endpoint paths served by the chat backend
const (
	PathChat    = "/chat"
	PathHealth  = "/health"
	PathVersion = "/version"
)

// Fixed transcript texts
const (
	PlaceholderText     = "Thinking..."
	ConnectionErrorText = "❌ Error connecting to server"
	InvalidReplyText    = "❌ Invalid response from server"
)

// DefaultEndpoint is where the backend listens when run locally
const DefaultEndpoint = "http://localhost:5000"

// DefaultHeaders returns the headers sent with every JSON request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "chatwidget/1.0",
	}
}
