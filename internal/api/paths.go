package api

// GJSON paths for the fields read from backend responses
const (
	PathReply   = "reply"
	PathStatus  = "status"
	PathVersion = "version"
)
