// Package activity appends to and reads the activity feed, the audit trail
// every mutation writes to.
package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
)

// Recorder writes activity entries on behalf of a session.
type Recorder struct {
	store  document.Writer
	logger *zap.Logger
	now    func() time.Time
}

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store document.Writer, logger *zap.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores one entry and returns it. The actor may be nil for system
// entries.
func (r *Recorder) Record(ctx context.Context, actor *identity.Session, message string, typ activity.Type) (*activity.Activity, error) {
	user, role := "", ""
	if actor != nil {
		user = identity.DisplayName(actor.Name, actor.Email)
		role = string(actor.Role)
	}
	a, err := activity.New(message, typ, user, role, r.now())
	if err != nil {
		return nil, err
	}
	ref, err := r.store.Add(ctx, document.CollectionActivity, a.Fields())
	if err != nil {
		return nil, err
	}
	a.ID = ref.ID
	return a, nil
}

// Log records an entry best-effort. A failure is logged and swallowed so
// the mutation that triggered it still succeeds.
func (r *Recorder) Log(ctx context.Context, actor *identity.Session, message string, typ activity.Type) {
	if _, err := r.Record(ctx, actor, message, typ); err != nil {
		r.logger.Warn("Failed to log activity",
			zap.String("message", message),
			zap.Error(err))
	}
}

// Failure logs "Failed to <action>: <err>" as an error entry, best-effort.
func (r *Recorder) Failure(ctx context.Context, actor *identity.Session, action string, cause error) {
	r.Log(ctx, actor, "Failed to "+action+": "+cause.Error(), activity.TypeError)
}
