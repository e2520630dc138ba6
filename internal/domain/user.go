package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is a stored principal as seen by the credential routines.
// Users and admins live in separate tables; the role is never read from the row.
type Account struct {
	ID        uuid.UUID
	Email     string
	Password  string // bcrypt hash
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
