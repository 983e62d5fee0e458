package db

import (
	"time"

	"github.com/google/uuid"
)

type Override struct {
	ID        uuid.UUID
	FlagKey   string
	UserID    string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
