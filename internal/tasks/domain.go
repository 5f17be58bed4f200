// Package tasks manages the personal todo records.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Todo represents a todo record.
type Todo struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
