// Package identity signs users in and resolves the session they act as.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/internal/infrastructure/auth"
)

// Login and token errors
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Please try again later")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrTokenMaxRefresh    = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	ErrUserNotFound       = shared.NewDomainError("USER_NOT_FOUND", "User not found")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // failed attempts before the login locks
	LockDuration     time.Duration // how long a locked login stays locked
	DefaultRole      identity.Role // role of users without a profile document
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
		DefaultRole:      identity.RoleMember,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	credentials identity.CredentialRepository
	profiles    document.Reader
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	config      AuthServiceConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service. blacklist may be nil,
// in which case logout only forgets tokens client-side.
func NewAuthService(
	credentials identity.CredentialRepository,
	profiles document.Reader,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if config.DefaultRole == "" {
		config.DefaultRole = identity.RoleMember
	}
	return &AuthService{
		credentials: credentials,
		profiles:    profiles,
		jwtService:  jwtService,
		blacklist:   blacklist,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("email", input.Email), zap.String("ip", input.IP))

	cred, err := s.credentials.FindByEmail(ctx, input.Email)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Unknown e-mail during login", zap.String("email", input.Email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if cred.IsLocked(now) {
		s.logger.Warn("Login attempt for locked account", zap.String("email", cred.Email))
		return nil, ErrAccountLocked
	}

	if !cred.VerifyPassword(input.Password) {
		locked := cred.RecordLoginFailure(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.credentials.Update(ctx, cred); err != nil {
			s.logger.Error("Failed to update credential after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("email", cred.Email),
				zap.Int("attempts", cred.FailedAttempts))
			return nil, ErrAccountLocked
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("email", cred.Email),
			zap.Int("failed_attempts", cred.FailedAttempts))
		return nil, ErrInvalidCredentials
	}

	cred.RecordLoginSuccess(now)
	if err := s.credentials.Update(ctx, cred); err != nil {
		// The login itself succeeded.
		s.logger.Error("Failed to update credential after successful login", zap.Error(err))
	}

	session, err := s.sessionFor(ctx, cred)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtService.IssueTokenPair(session)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in successfully",
		zap.String("user_id", session.UserID),
		zap.String("role", string(session.Role)))
	return &LoginResult{TokenResult: toTokenResult(pair), User: ToUserInfo(session)}, nil
}

// ResolveSession loads the current identity of userID: the credential for
// name and e-mail, the users/{uid} profile for the role.
func (s *AuthService) ResolveSession(ctx context.Context, userID string) (*identity.Session, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	cred, err := s.credentials.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.sessionFor(ctx, cred)
}

func (s *AuthService) sessionFor(ctx context.Context, cred *identity.Credential) (*identity.Session, error) {
	session := &identity.Session{
		UserID: cred.ID.String(),
		Email:  cred.Email,
		Name:   cred.Name(),
		Role:   s.config.DefaultRole,
	}
	doc, err := s.profiles.Get(ctx, identity.ProfileRef(session.UserID))
	if errors.Is(err, shared.ErrNotFound) {
		return session, nil
	}
	if err != nil {
		return nil, err
	}
	profile, err := identity.ProfileFromDocument(*doc)
	if err != nil {
		return nil, err
	}
	session.Role = profile.Role
	if profile.Name != "" {
		session.Name = profile.Name
	}
	return session, nil
}

// Refresh exchanges a refresh token for a new pair. The role is re-read, so
// a promotion takes effect on the next refresh. The used refresh token is
// revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if s.revoked(ctx, claims) {
		return nil, ErrTokenRevoked
	}

	pair, used, err := s.jwtService.Refresh(refreshToken, func(userID string) (*identity.Session, error) {
		return s.ResolveSession(ctx, userID)
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, mapTokenError(err)
	}
	s.revoke(ctx, used)

	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes the access token and, when given, the refresh token.
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if s.blacklist == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, access.ID, access.GetRemainingTTL()); err != nil {
		return err
	}
	if refreshToken != "" {
		if claims, err := s.jwtService.ValidateRefreshToken(refreshToken); err == nil {
			s.revoke(ctx, claims)
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", access.UserID))
	return nil
}

func (s *AuthService) revoked(ctx context.Context, claims *auth.Claims) bool {
	if s.blacklist == nil {
		return false
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Token blacklist lookup failed", zap.Error(err))
		return false
	}
	return revoked
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) {
	if s.blacklist == nil || claims == nil {
		return
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke token", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}

func toTokenResult(p *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}
