package core

import "github.com/google/uuid"

// Logger is the application logger.
// args may hold errors, extra fields (map[string]interface{}) and the Caller behind the logged event.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Caller identifies the authenticated user an event happened for.
type Caller struct {
	ID       uuid.UUID
	Username string
}
