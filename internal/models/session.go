package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a principal. Role selects
// which credential table is queried and what LoginID means (roll number,
// employee id, or email).
type LoginRequest struct {
	Role       Role   `json:"role" validate:"required"`
	LoginID    string `json:"login_id" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
	IP         string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse returns the issued token and principal info. The same token
// is also set as the session cookie.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	IssuedAt  time.Time     `json:"issued_at"`
	Principal PrincipalInfo `json:"principal"`
}

// PrincipalInfo describes the authenticated principal in responses.
type PrincipalInfo struct {
	ID            string  `json:"id"`
	Role          Role    `json:"role"`
	DisplayName   string  `json:"display_name"`
	LoginID       string  `json:"login_id"`
	InstitutionID *string `json:"institution_id,omitempty"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// SessionClaims is the JWT payload carried by the session cookie. Lifetime is
// enforced purely by the embedded expiry; there is no server-side session
// state.
type SessionClaims struct {
	PrincipalID   string  `json:"principal_id"`
	Role          Role    `json:"role"`
	DisplayName   string  `json:"display_name"`
	LoginID       string  `json:"login_id"`
	InstitutionID *string `json:"institution_id,omitempty"`
	jwt.RegisteredClaims
}
