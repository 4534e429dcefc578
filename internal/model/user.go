package model

import "time"

// Application user roles.  Gatekeepers carry the plain user role;
// authority and admin unlock the approvals and administration
// surfaces respectively.
const (
	UserRoleAdmin     = "admin"
	UserRoleAuthority = "authority"
	UserRoleUser      = "user"
)

// User represents a login account as stored in the `users` table.
// The password is never stored in the clear; only its bcrypt hash.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – admin, authority or user.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Username     string    `json:"username"`   // users.username
	PasswordHash string    `json:"-"`          // users.password_hash
	Role         string    `json:"role"`       // users.role
	IsActive     bool      `json:"is_active"`  // users.is_active
	CreatedAt    time.Time `json:"created_at"` // users.created_at
	UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// RefreshToken models a row in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is persisted.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (null while active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// ValidUserRole reports whether r names a known role.
func ValidUserRole(r string) bool {
	return r == UserRoleAdmin || r == UserRoleAuthority || r == UserRoleUser
}
