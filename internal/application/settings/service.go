// Package settings implements the admin settings and notification
// preference screens, including the logo upload.
package settings

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/settings"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// ErrStorageUnavailable is returned by UploadLogo when no object storage is
// configured.
var ErrStorageUnavailable = shared.NewDomainError("STORAGE_UNAVAILABLE", "Logo storage is not configured")

// ObjectStorage stores uploaded files and returns their URL.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// SaveGlobalInput is the settings form. An empty LogoURL keeps the current
// logo.
type SaveGlobalInput struct {
	CompanyName string
	Theme       settings.Theme
	LogoURL     string
}

// LogoUpload is one uploaded logo file.
type LogoUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service reads and writes the settings singletons.
type Service struct {
	store       document.Store
	activity    *activityapp.Recorder
	storage     ObjectStorage
	maxLogoSize int64
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithStorage enables logo uploads.
func WithStorage(storage ObjectStorage, maxLogoSize int64) Option {
	return func(s *Service) {
		s.storage = storage
		if maxLogoSize > 0 {
			s.maxLogoSize = maxLogoSize
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a settings Service
func NewService(store document.Store, recorder *activityapp.Recorder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		activity:    recorder,
		maxLogoSize: settings.DefaultMaxLogoSize,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Global returns the branding settings, or the defaults when none were
// saved yet.
func (s *Service) Global(ctx context.Context) (*settings.Global, error) {
	doc, err := s.store.Get(ctx, settings.GlobalRef)
	if errors.Is(err, shared.ErrNotFound) {
		return settings.DefaultGlobal(), nil
	}
	if err != nil {
		return nil, err
	}
	return settings.GlobalFromDocument(*doc)
}

// SaveGlobal merges the form into config/global_settings.
func (s *Service) SaveGlobal(ctx context.Context, actor *identity.Session, input SaveGlobalInput) (*settings.Global, error) {
	logoURL := input.LogoURL
	if logoURL == "" {
		current, err := s.Global(ctx)
		if err != nil {
			return nil, err
		}
		logoURL = current.LogoURL
	}
	g, err := settings.NewGlobal(input.CompanyName, input.Theme, logoURL, updatedBy(actor), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, settings.GlobalRef, g.Fields(), true); err != nil {
		s.activity.Failure(ctx, actor, "update system configuration", err)
		return nil, err
	}
	s.activity.Log(ctx, actor, "Updated system configuration", activity.TypeInfo)
	return g, nil
}

// Notifications returns the e-mail preferences.
func (s *Service) Notifications(ctx context.Context) (settings.Notifications, error) {
	doc, err := s.store.Get(ctx, settings.GeneralRef)
	if errors.Is(err, shared.ErrNotFound) {
		return settings.DefaultNotifications(), nil
	}
	if err != nil {
		return settings.Notifications{}, err
	}
	return settings.NotificationsFromDocument(*doc)
}

// SaveNotifications merges the preferences into settings/general.
func (s *Service) SaveNotifications(ctx context.Context, actor *identity.Session, prefs settings.Notifications) error {
	if err := s.store.Set(ctx, settings.GeneralRef, prefs.Fields(), true); err != nil {
		s.activity.Failure(ctx, actor, "update notification preferences", err)
		return err
	}
	s.activity.Log(ctx, actor, "Updated notification preferences", activity.TypeInfo)
	return nil
}

// UploadLogo stores the file and points logoUrl at it. The returned URL is
// the one written to the settings document.
func (s *Service) UploadLogo(ctx context.Context, actor *identity.Session, upload LogoUpload) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	if err := settings.ValidateLogo(upload.ContentType, upload.Size, s.maxLogoSize); err != nil {
		return "", err
	}
	now := s.now()
	key := settings.LogoKey(now)
	url, err := s.storage.Put(ctx, key, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		s.activity.Failure(ctx, actor, "upload logo", err)
		return "", err
	}
	fields := document.Fields{
		"logoUrl":   url,
		"updatedAt": now.UTC().Format(time.RFC3339Nano),
		"updatedBy": updatedBy(actor),
	}
	if err := s.store.Set(ctx, settings.GlobalRef, fields, true); err != nil {
		s.activity.Failure(ctx, actor, "upload logo", err)
		return "", err
	}
	s.logger.Info("Logo uploaded", zap.String("key", key))
	s.activity.Log(ctx, actor, "Uploaded new dashboard logo", activity.TypeInfo)
	return url, nil
}

// SystemTest writes the manual test entry. Unlike the audit entries of other
// mutations, the entry is the whole point, so its failure is returned.
func (s *Service) SystemTest(ctx context.Context, actor *identity.Session) (*activity.Activity, error) {
	name := ""
	if actor != nil {
		name = identity.DisplayName(actor.Name, actor.Email)
	}
	return s.activity.Record(ctx, actor, settings.SystemTestMessage(name), activity.TypeSuccess)
}

func updatedBy(actor *identity.Session) string {
	if actor == nil {
		return ""
	}
	if actor.Email != "" {
		return actor.Email
	}
	return actor.UserID
}
