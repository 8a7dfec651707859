package settings

import (
	"testing"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGlobal(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	g, err := NewGlobal("Sparkcode Labs", ThemeDark, "https://cdn/logo.png", "ada@sparkcode.com", now)
	require.NoError(t, err)
	fields := g.Fields()
	assert.Equal(t, "Sparkcode Labs", fields["companyName"])
	assert.Equal(t, "dark", fields["theme"])
	assert.Equal(t, "ada@sparkcode.com", fields["updatedBy"])

	_, err = NewGlobal("", ThemeDark, "", "", now)
	assert.Error(t, err)

	_, err = NewGlobal("X", "sepia", "", "", now)
	assert.ErrorContains(t, err, "theme")
}

func TestGlobalFromDocument(t *testing.T) {
	g, err := GlobalFromDocument(document.Document{ID: "global_settings", Collection: "config", Fields: document.Fields{"theme": "dark"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultCompanyName, g.CompanyName)
	assert.Equal(t, ThemeDark, g.Theme)

	_, err = GlobalFromDocument(document.Document{ID: "global_settings", Collection: "config", Fields: document.Fields{"theme": "neon"}})
	assert.Error(t, err)
}

func TestNotifications(t *testing.T) {
	n, err := NotificationsFromDocument(document.Document{ID: "general", Collection: "settings", Fields: document.Fields{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultNotifications(), n)

	n, err = NotificationsFromDocument(document.Document{ID: "general", Collection: "settings", Fields: document.Fields{
		"notifications": map[string]any{"emailAlerts": false, "projectCreated": true},
	}})
	require.NoError(t, err)
	assert.False(t, n.EmailAlerts)
	assert.True(t, n.ProjectCreated)
	assert.False(t, n.StudentEnrollment)

	nested := n.Fields()["notifications"].(map[string]any)
	assert.Equal(t, false, nested["emailAlerts"])
}

func TestLogo(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	assert.Equal(t, "logos/dashboard_logo_1767225600123", LogoKey(at))

	assert.NoError(t, ValidateLogo("image/png", 1024, DefaultMaxLogoSize))
	assert.NoError(t, ValidateLogo("image/svg+xml; charset=utf-8", 1024, 0))
	assert.Error(t, ValidateLogo("application/pdf", 1024, DefaultMaxLogoSize))
	assert.Error(t, ValidateLogo("image/png", 0, DefaultMaxLogoSize))
	assert.Error(t, ValidateLogo("image/png", DefaultMaxLogoSize+1, DefaultMaxLogoSize))
}

func TestSystemTestMessage(t *testing.T) {
	assert.Equal(t, "Manual system test performed by Ada", SystemTestMessage("Ada"))
	assert.Equal(t, "Manual system test performed by Admin", SystemTestMessage(""))
}
