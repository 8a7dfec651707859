package identity

import (
	"time"

	"github.com/sparkcode/dashboard/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // client IP, logged only
}

// UserInfo is the signed-in user as shown by GET /auth/me
type UserInfo struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      identity.Role `json:"role"`
	RoleLabel string        `json:"roleLabel"`
}

// ToUserInfo converts a session for display.
func ToUserInfo(s *identity.Session) UserInfo {
	return UserInfo{
		ID:        s.UserID,
		Email:     s.Email,
		Name:      identity.DisplayName(s.Name, s.Email),
		Role:      s.Role,
		RoleLabel: s.RoleLabel(),
	}
}

// TokenResult is an issued token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	TokenResult
	User UserInfo `json:"user"`
}

// CreateUserInput creates a login and its profile document.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Admin    bool
}
