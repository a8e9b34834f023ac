package common

import (
	"github.com/google/uuid"
)

// NewID generates a new unique identifier for topics, articles, and news items
func NewID() string {
	return uuid.New().String()
}
