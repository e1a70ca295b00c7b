package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a tenant principal stored in the accounts table. ID doubles as
// the tenant key that row-level security policies match against; PublicID is
// the identifier handed out to external callers.
type Account struct {
	ID           int64
	PublicID     uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}
