package model

import (
	"github.com/google/uuid"
)

// Notification is an in-app message addressed to a provider.
type Notification struct {
	Base
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	Content string    `db:"content" json:"content"`
	Read    bool      `db:"read" json:"read"`
}
