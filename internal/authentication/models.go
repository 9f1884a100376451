// Package authentication implements the login service: username/password
// verification, an OTP second factor, and the forgot/reset password flow.
// It issues the JWTs the requirement tracker validates.
package authentication

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	otpCodeLength  = 6
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 5
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidOTP         = fmt.Errorf("invalid or expired code")
	ErrUserNotFound       = fmt.Errorf("user not found")
)

// OTPPurpose separates login codes from password-reset codes so one cannot
// be replayed for the other.
type OTPPurpose string

const (
	PurposeLogin OTPPurpose = "login"
	PurposeReset OTPPurpose = "reset"
)

// User is an account that can sign in to the tracker.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:128;uniqueIndex"`
	Email        string    `gorm:"size:256"`
	PasswordHash string    `gorm:"size:128"`
	Role         string    `gorm:"size:32"`
	OTPEnabled   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginResult is the outcome of the first authentication factor. When
// OTPRequired is set the token is empty and the caller must verify the
// delivered code to obtain one.
type LoginResult struct {
	Token       string
	OTPRequired bool
}
