// Package event defines document lifecycle events and their payloads.
package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Event represents a document lifecycle event
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	SchemaName string         `json:"schema_name"`
	DocName    string         `json:"doc_name"`
	Payload    map[string]any `json:"payload"`
	Timestamp  time.Time      `json:"timestamp"`
}

// New creates a new lifecycle event with an auto-generated ID and timestamp
func New(eventType Type, schemaName, docName string, payload map[string]any) *Event {
	return &Event{
		ID:         generateID(),
		Type:       eventType,
		SchemaName: schemaName,
		DocName:    docName,
		Payload:    payload,
		Timestamp:  time.Now(),
	}
}

// Matches reports whether the event concerns the given document
func (e *Event) Matches(schemaName, docName string) bool {
	return e.SchemaName == schemaName && e.DocName == docName
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// generateID creates a unique ID using timestamp and random bytes
func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
