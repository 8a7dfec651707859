// Package settings holds the dashboard's singleton configuration documents:
// branding in config/global_settings and notification preferences in
// settings/general.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// Theme is the dashboard colour scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid checks if the theme is supported
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// DefaultCompanyName is shown until an admin saves a name.
const DefaultCompanyName = "Sparkcode"

// Singleton document references.
var (
	GlobalRef  = document.NewRef(document.CollectionConfig, "global_settings")
	GeneralRef = document.NewRef(document.CollectionSettings, "general")
)

// Global is the branding configuration.
type Global struct {
	CompanyName string
	Theme       Theme
	LogoURL     string
	UpdatedAt   time.Time
	UpdatedBy   string
}

// DefaultGlobal is used while config/global_settings does not exist.
func DefaultGlobal() *Global {
	return &Global{CompanyName: DefaultCompanyName, Theme: ThemeLight}
}

// NewGlobal validates a save from the settings form.
func NewGlobal(companyName string, theme Theme, logoURL, updatedBy string, now time.Time) (*Global, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, shared.InvalidInput("company name cannot be empty")
	}
	if theme == "" {
		theme = ThemeLight
	}
	if !theme.IsValid() {
		return nil, shared.InvalidInput("theme must be light or dark")
	}
	return &Global{
		CompanyName: companyName,
		Theme:       theme,
		LogoURL:     strings.TrimSpace(logoURL),
		UpdatedAt:   now,
		UpdatedBy:   updatedBy,
	}, nil
}

// Fields returns the fields merged into config/global_settings.
func (g *Global) Fields() document.Fields {
	return document.Fields{
		"companyName": g.CompanyName,
		"theme":       string(g.Theme),
		"logoUrl":     g.LogoURL,
		"updatedAt":   g.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"updatedBy":   g.UpdatedBy,
	}
}

// GlobalFromDocument maps config/global_settings. Missing values keep their
// defaults, matching a partially written document.
func GlobalFromDocument(d document.Document) (*Global, error) {
	r := document.Read(d)
	g := DefaultGlobal()
	if name := r.OptionalString("companyName"); name != "" {
		g.CompanyName = name
	}
	g.Theme = Theme(r.OptionalOneOf("theme", string(ThemeLight), string(ThemeLight), string(ThemeDark)))
	g.LogoURL = r.OptionalString("logoUrl")
	g.UpdatedAt = r.Time("updatedAt", d.UpdateTime)
	g.UpdatedBy = r.OptionalString("updatedBy")
	if err := r.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Notifications are the e-mail preferences stored in settings/general.
type Notifications struct {
	EmailAlerts       bool `json:"emailAlerts"`
	ProjectCreated    bool `json:"projectCreated"`
	StudentEnrollment bool `json:"studentEnrollment"`
}

// DefaultNotifications enables every alert.
func DefaultNotifications() Notifications {
	return Notifications{EmailAlerts: true, ProjectCreated: true, StudentEnrollment: true}
}

// Fields returns the fields merged into settings/general.
func (n Notifications) Fields() document.Fields {
	return document.Fields{
		"notifications": map[string]any{
			"emailAlerts":       n.EmailAlerts,
			"projectCreated":    n.ProjectCreated,
			"studentEnrollment": n.StudentEnrollment,
		},
	}
}

// NotificationsFromDocument maps settings/general.
func NotificationsFromDocument(d document.Document) (Notifications, error) {
	r := document.Read(d)
	nested := r.Map("notifications")
	if err := r.Err(); err != nil {
		return Notifications{}, err
	}
	out := DefaultNotifications()
	if nested == nil {
		return out, nil
	}
	inner := document.Read(document.Document{ID: d.ID, Collection: d.Collection, Fields: nested})
	out.EmailAlerts = inner.Bool("emailAlerts")
	out.ProjectCreated = inner.Bool("projectCreated")
	out.StudentEnrollment = inner.Bool("studentEnrollment")
	if err := inner.Err(); err != nil {
		return Notifications{}, err
	}
	return out, nil
}

// Logo upload limits.
const (
	LogoPrefix         = "logos/dashboard_logo_"
	DefaultMaxLogoSize = 2 << 20
)

var allowedLogoTypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// LogoKey returns the object key for a logo uploaded at now.
func LogoKey(now time.Time) string {
	return fmt.Sprintf("%s%d", LogoPrefix, now.UnixMilli())
}

// ValidateLogo checks the uploaded file before it is stored.
func ValidateLogo(contentType string, size, maxSize int64) error {
	if size <= 0 {
		return shared.InvalidInput("logo file is empty")
	}
	if maxSize > 0 && size > maxSize {
		return shared.InvalidInput(fmt.Sprintf("logo exceeds the %d byte limit", maxSize))
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if _, ok := allowedLogoTypes[mediaType]; !ok {
		return shared.InvalidInput("logo must be a PNG, JPEG, GIF, WebP or SVG image")
	}
	return nil
}

// SystemTestMessage is the activity logged by the manual system test.
func SystemTestMessage(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	return "Manual system test performed by " + name
}
