package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/sparkcode/dashboard/internal/application/identity"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/infrastructure/auth"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/persistence"
	"github.com/sparkcode/dashboard/internal/interfaces/http/middleware"
	"github.com/sparkcode/dashboard/tests/testutil"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

type authEnv struct {
	engine *gin.Engine
	users  *appidentity.UserService
}

// newAuthEnv serves the auth routes behind the real JWT middleware.
func newAuthEnv(t *testing.T, cfg appidentity.AuthServiceConfig) *authEnv {
	t.Helper()
	store := testutil.NewMemoryStore(t)
	creds := persistence.NewGormCredentialRepository(store.Database.DB)
	jwtService := auth.NewJWTService(testJWTConfig())
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := appidentity.NewAuthService(creds, store, jwtService, blacklist, cfg, zap.NewNop())
	h := NewAuthHandler(authService)

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist

	engine := gin.New()
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	api := engine.Group("/api/v1/auth")
	api.POST("/login", h.Login)
	api.POST("/refresh", h.RefreshToken)
	api.GET("/me", h.Me)
	api.POST("/logout", h.Logout)

	return &authEnv{engine: engine, users: appidentity.NewUserService(creds, store, zap.NewNop())}
}

func (e *authEnv) login(t *testing.T, email, password string) appidentity.LoginResult {
	t.Helper()
	w := testutil.Perform(t, e.engine, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Email: email, Password: password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result appidentity.LoginResult
	decodeData(t, w, &result)
	return result
}

func TestAuthHandler_Login(t *testing.T) {
	env := newAuthEnv(t, appidentity.DefaultAuthServiceConfig())
	_, err := env.users.CreateUser(context.Background(), appidentity.CreateUserInput{
		Email: "zayd@sparkcode.com", Password: "secret123", Name: "Zayd", Admin: true,
	})
	require.NoError(t, err)

	result := env.login(t, "zayd@sparkcode.com", "secret123")
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "Zayd", result.User.Name)
	assert.Equal(t, identity.RoleAdmin, result.User.Role)
	assert.Equal(t, "Admin", result.User.RoleLabel)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"wrong password", LoginRequest{Email: "zayd@sparkcode.com", Password: "wrong123"}, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS"},
		{"unknown user", LoginRequest{Email: "nobody@sparkcode.com", Password: "secret123"}, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS"},
		{"not an email", LoginRequest{Email: "zayd", Password: "secret123"}, http.StatusBadRequest, "ERR_VALIDATION"},
		{"missing password", map[string]any{"email": "zayd@sparkcode.com"}, http.StatusBadRequest, "ERR_VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/login", tt.body, nil)
			testutil.AssertErrorResponse(t, w, tt.status, tt.code)
		})
	}
}

func TestAuthHandler_Lockout(t *testing.T) {
	cfg := appidentity.DefaultAuthServiceConfig()
	cfg.MaxLoginAttempts = 2
	env := newAuthEnv(t, cfg)
	_, err := env.users.CreateUser(context.Background(), appidentity.CreateUserInput{Email: "ada@sparkcode.com", Password: "secret123"})
	require.NoError(t, err)

	bad := LoginRequest{Email: "ada@sparkcode.com", Password: "wrong123"}
	w := testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/login", bad, nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS")
	w = testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/login", bad, nil)
	testutil.AssertErrorResponse(t, w, http.StatusTooManyRequests, "ERR_ACCOUNT_LOCKED")
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	env := newAuthEnv(t, appidentity.DefaultAuthServiceConfig())
	_, err := env.users.CreateUser(context.Background(), appidentity.CreateUserInput{Email: "max@sparkcode.com", Password: "secret123"})
	require.NoError(t, err)
	result := env.login(t, "max@sparkcode.com", "secret123")

	w := testutil.Perform(t, env.engine, http.MethodGet, "/api/v1/auth/me", nil, nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")

	w = testutil.Perform(t, env.engine, http.MethodGet, "/api/v1/auth/me", nil, testutil.Bearer(result.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me appidentity.UserInfo
	decodeData(t, w, &me)
	assert.Equal(t, "max@sparkcode.com", me.Email)
	assert.Equal(t, "max", me.Name)
	assert.Equal(t, identity.RoleMember, me.Role)
	assert.Equal(t, "Team Member", me.RoleLabel)

	w = testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/logout",
		LogoutRequest{RefreshToken: result.RefreshToken}, testutil.Bearer(result.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out LogoutResponse
	decodeData(t, w, &out)
	assert.Equal(t, "Logged out successfully", out.Message)

	w = testutil.Perform(t, env.engine, http.MethodGet, "/api/v1/auth/me", nil, testutil.Bearer(result.AccessToken))
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_TOKEN_REVOKED")

	w = testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/refresh",
		RefreshTokenRequest{RefreshToken: result.RefreshToken}, nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_TOKEN_REVOKED")
}

func TestAuthHandler_RefreshIsSingleUse(t *testing.T) {
	env := newAuthEnv(t, appidentity.DefaultAuthServiceConfig())
	info, err := env.users.CreateUser(context.Background(), appidentity.CreateUserInput{Email: "muhsin@sparkcode.com", Password: "secret123"})
	require.NoError(t, err)
	result := env.login(t, "muhsin@sparkcode.com", "secret123")

	require.NoError(t, env.users.SetRole(context.Background(), info.ID, identity.RoleAdmin))

	w := testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/refresh",
		RefreshTokenRequest{RefreshToken: result.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair appidentity.TokenResult
	decodeData(t, w, &pair)

	w = testutil.Perform(t, env.engine, http.MethodGet, "/api/v1/auth/me", nil, testutil.Bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	var me appidentity.UserInfo
	decodeData(t, w, &me)
	assert.Equal(t, identity.RoleAdmin, me.Role, "refresh re-reads the profile role")

	w = testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/refresh",
		RefreshTokenRequest{RefreshToken: result.RefreshToken}, nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_TOKEN_REVOKED")

	w = testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/refresh",
		RefreshTokenRequest{RefreshToken: "not-a-token"}, nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_TOKEN_INVALID")

	w = testutil.Perform(t, env.engine, http.MethodPost, "/api/v1/auth/refresh", map[string]any{}, nil)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_VALIDATION")
}
