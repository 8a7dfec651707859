package identity

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber    = regexp.MustCompile(`[0-9]`)
)

// Credential is an e-mail/password login. Its ID doubles as the user id of
// the users/{uid} profile document.
type Credential struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	DisplayName    string
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewCredential validates and hashes a new login.
func NewCredential(email, password, displayName string) (*Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	now := time.Now()
	return &Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// VerifyPassword checks password against the stored hash.
func (c *Credential) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// Name returns the display name or the e-mail local part.
func (c *Credential) Name() string {
	return DisplayName(c.DisplayName, c.Email)
}

// IsLocked reports whether too many failures locked the login.
func (c *Credential) IsLocked(now time.Time) bool {
	return c.LockedUntil != nil && now.Before(*c.LockedUntil)
}

// RecordLoginSuccess resets the failure counter.
func (c *Credential) RecordLoginSuccess(now time.Time) {
	c.LastLoginAt = &now
	c.FailedAttempts = 0
	c.LockedUntil = nil
	c.UpdatedAt = now
}

// RecordLoginFailure counts a failed attempt and locks the login once
// maxAttempts is reached. Returns true if the login is now locked.
func (c *Credential) RecordLoginFailure(now time.Time, maxAttempts int, lockDuration time.Duration) bool {
	c.FailedAttempts++
	c.UpdatedAt = now
	if maxAttempts > 0 && c.FailedAttempts >= maxAttempts {
		until := now.Add(lockDuration)
		c.LockedUntil = &until
		return true
	}
	return false
}

// CredentialRepository stores logins.
type CredentialRepository interface {
	Create(ctx context.Context, c *Credential) error
	Update(ctx context.Context, c *Credential) error
	FindByID(ctx context.Context, id uuid.UUID) (*Credential, error)
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}
