package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role enumerates the stored account roles.
type Role string

const (
	// RoleUser is the default role for self-registered accounts.
	RoleUser Role = "user"
	// RoleAdmin marks administrator accounts.
	RoleAdmin Role = "admin"
)

// RequireShared is a route requirement satisfied by both stored roles. It is a
// policy value only and is never persisted on an account.
const RequireShared = "shared"

// Valid reports whether r is one of the stored roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account record. The password hash is never serialized.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Approved     bool       `json:"approved"`
	ApprovedBy   *uuid.UUID `json:"approved_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Claims is the payload carried inside a bearer credential. The subject holds
// the account id. The role claim is a hint stamped at issuance; authorization
// always re-reads the stored role, since approval and role can change after a
// credential was issued.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}
