package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// ErrEmailExists refuses a second login for the same e-mail.
var ErrEmailExists = shared.NewDomainError("EMAIL_EXISTS", "A user with this email already exists")

// UserService provisions dashboard users.
type UserService struct {
	credentials identity.CredentialRepository
	store       document.Writer
	logger      *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(credentials identity.CredentialRepository, store document.Writer, logger *zap.Logger) *UserService {
	return &UserService{credentials: credentials, store: store, logger: logger}
}

// CreateUser stores the credential and writes the users/{uid} profile that
// carries the role.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	exists, err := s.credentials.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	cred, err := identity.NewCredential(input.Email, input.Password, input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, err
	}

	role := identity.RoleMember
	if input.Admin {
		role = identity.RoleAdmin
	}
	profile := &identity.Profile{
		UserID: cred.ID.String(),
		Email:  cred.Email,
		Name:   cred.DisplayName,
		Role:   role,
	}
	if err := s.store.Set(ctx, identity.ProfileRef(profile.UserID), profile.Fields(), false); err != nil {
		s.logger.Error("Credential created without profile",
			zap.String("user_id", profile.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", profile.UserID), zap.String("role", string(role)))
	info := ToUserInfo(&identity.Session{UserID: profile.UserID, Email: cred.Email, Name: cred.Name(), Role: role})
	return &info, nil
}

// SetRole changes the role stored in the user's profile. It takes effect at
// the user's next login or token refresh.
func (s *UserService) SetRole(ctx context.Context, userID string, role identity.Role) error {
	return s.store.Set(ctx, identity.ProfileRef(userID), document.Fields{"role": string(role)}, true)
}
