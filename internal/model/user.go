package model

import "time"

// UserStatus tracks the account lifecycle.  INACTIVE doubles as the soft
// delete marker: user rows are never removed from the table.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
	UserBlocked  UserStatus = "BLOCKED"
)

// ValidUserStatus reports whether s is one of the three known states.
func ValidUserStatus(s UserStatus) bool {
	return s == UserActive || s == UserInactive || s == UserBlocked
}

// User represents a row in the `users` table.  PasswordHash and the
// recovery fields never leave the repository/service layers; handlers
// respond with PublicUser instead.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Username          – unique login name (1–50 chars).
//  Email             – unique email address (1–100 chars).
//  Role              – job title (INTERN/MANAGER/ANALYST/COORDINATOR/DIRECTOR).
//  Permission        – access ladder level embedded into tokens.
//  PasswordHash      – bcrypt hash; plaintext is never stored.
//  Status            – ACTIVE / INACTIVE / BLOCKED.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
//  LastLoginAt       – when the user last logged in (nullable).
//  RecoveryToken     – password recovery token (nullable).
//  RecoveryExpiresAt – expiry of the recovery token (nullable).
type User struct {
	ID                uint64
	Username          string
	Email             string
	Role              Role
	Permission        Permission
	PasswordHash      string
	Status            UserStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
	RecoveryToken     *string
	RecoveryExpiresAt *time.Time
}

// PublicUser is the redacted view returned by handlers.  It carries no
// credential material.
type PublicUser struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	Permission  string     `json:"permission"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Public converts a full record into its redacted view.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Permission:  u.Permission.String(),
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
