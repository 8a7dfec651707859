package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCredentialRepository implements identity.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

var _ identity.CredentialRepository = (*GormCredentialRepository)(nil)

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// Create stores a new credential
func (r *GormCredentialRepository) Create(ctx context.Context, c *identity.Credential) error {
	return r.db.WithContext(ctx).Create(models.CredentialModelFromDomain(c)).Error
}

// Update saves login bookkeeping of an existing credential
func (r *GormCredentialRepository) Update(ctx context.Context, c *identity.Credential) error {
	result := r.db.WithContext(ctx).
		Model(&models.CredentialModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"password_hash":   c.PasswordHash,
			"display_name":    c.DisplayName,
			"last_login_at":   c.LastLoginAt,
			"failed_attempts": c.FailedAttempts,
			"locked_until":    c.LockedUntil,
			"updated_at":      c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a credential by ID
func (r *GormCredentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a credential by e-mail, ignoring case
func (r *GormCredentialRepository) FindByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks whether a login already uses email
func (r *GormCredentialRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CredentialModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
