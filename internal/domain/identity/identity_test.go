package identity

import (
	"testing"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRole(t *testing.T) {
	assert.Equal(t, "Admin", FormatRole("admin"))
	assert.Equal(t, "Admin", FormatRole("ADMIN"))
	assert.Equal(t, "Team Member", FormatRole("member"))
	assert.Equal(t, "Team Member", FormatRole("student"))
	assert.Equal(t, "Team Member", FormatRole(""))
}

func TestSession(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsAdmin())
	assert.Equal(t, "Team Member", nilSession.RoleLabel())

	admin := &Session{Role: ParseRole(" Admin ")}
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "Admin", admin.RoleLabel())

	assert.Equal(t, RoleMember, ParseRole(""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", DisplayName(" Ada ", "ada@x.io"))
	assert.Equal(t, "zayd", DisplayName("", "zayd@sparkcode.com"))
	assert.Equal(t, "User", DisplayName("", ""))
}

func TestProfileFromDocument(t *testing.T) {
	p, err := ProfileFromDocument(document.Document{ID: "u1", Collection: "users", Fields: document.Fields{"email": "a@b.io", "role": "admin"}})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.True(t, p.Role.IsAdmin())
	assert.Equal(t, "users/u1", ProfileRef("u1").Path())
}

func TestNewCredential(t *testing.T) {
	t.Run("hashes password", func(t *testing.T) {
		c, err := NewCredential(" Ada@Sparkcode.com ", "secret123", "")
		require.NoError(t, err)
		assert.Equal(t, "ada@sparkcode.com", c.Email)
		assert.NotEqual(t, "secret123", c.PasswordHash)
		assert.True(t, c.VerifyPassword("secret123"))
		assert.False(t, c.VerifyPassword("secret124"))
		assert.Equal(t, "ada", c.Name())
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewCredential("ada@sparkcode.com", "short1", "")
		assert.ErrorContains(t, err, "at least 8")
		_, err = NewCredential("ada@sparkcode.com", "lettersonly", "")
		assert.ErrorContains(t, err, "letter and one number")
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewCredential("ada", "secret123", "")
		assert.ErrorContains(t, err, "Invalid email")
	})
}

func TestCredential_Lockout(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Credential{}

	assert.False(t, c.RecordLoginFailure(now, 3, time.Minute))
	assert.False(t, c.RecordLoginFailure(now, 3, time.Minute))
	assert.True(t, c.RecordLoginFailure(now, 3, time.Minute))
	assert.True(t, c.IsLocked(now.Add(30*time.Second)))
	assert.False(t, c.IsLocked(now.Add(2*time.Minute)))

	c.RecordLoginSuccess(now)
	assert.Equal(t, 0, c.FailedAttempts)
	assert.False(t, c.IsLocked(now))
	require.NotNil(t, c.LastLoginAt)
}
