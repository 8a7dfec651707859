package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sparkcode/dashboard/internal/domain/identity"
)

// CredentialModel is the persistence model for identity.Credential.
type CredentialModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Email          string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string    `gorm:"type:varchar(255);not null"`
	DisplayName    string    `gorm:"type:varchar(200)"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "credentials"
}

// ToDomain converts the persistence model to a domain Credential.
func (m *CredentialModel) ToDomain() *identity.Credential {
	return &identity.Credential{
		ID:             m.ID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		DisplayName:    m.DisplayName,
		LastLoginAt:    m.LastLoginAt,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CredentialModelFromDomain creates a persistence model from a Credential.
func CredentialModelFromDomain(c *identity.Credential) *CredentialModel {
	return &CredentialModel{
		ID:             c.ID,
		Email:          c.Email,
		PasswordHash:   c.PasswordHash,
		DisplayName:    c.DisplayName,
		LastLoginAt:    c.LastLoginAt,
		FailedAttempts: c.FailedAttempts,
		LockedUntil:    c.LockedUntil,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
