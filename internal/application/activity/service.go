package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
)

// AnnounceInput is a message sent from the notifications screen.
type AnnounceInput struct {
	Message string
	Type    activity.Type
}

// Service reads the feed and handles the notification screen actions.
type Service struct {
	store    document.Store
	recorder *Recorder
	logger   *zap.Logger
}

// NewService creates a new activity Service
func NewService(store document.Store, recorder *Recorder, logger *zap.Logger) *Service {
	return &Service{store: store, recorder: recorder, logger: logger}
}

// Feed returns the most recent entries, newest first.
func (s *Service) Feed(ctx context.Context) ([]*activity.Activity, error) {
	snap, err := s.store.Run(ctx, activity.FeedQuery())
	if err != nil {
		return nil, err
	}
	return document.MapAll(snap, activity.FromDocument)
}

// UnreadCount counts every unread entry, including those beyond the feed cap.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	snap, err := s.store.Run(ctx, activity.UnreadQuery())
	if err != nil {
		return 0, err
	}
	return snap.Size(), nil
}

// Announce posts a message to the feed. Unlike the audit entries of other
// mutations this is the write itself, so failures are returned.
func (s *Service) Announce(ctx context.Context, actor *identity.Session, input AnnounceInput) (*activity.Activity, error) {
	a, err := s.recorder.Record(ctx, actor, input.Message, input.Type)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Message announced",
		zap.String("activity_id", a.ID),
		zap.String("type", string(a.Type)))
	return a, nil
}

// MarkAllRead flips every unread entry to read in one batch and returns how
// many were updated. Either all entries are updated or none is.
func (s *Service) MarkAllRead(ctx context.Context) (int, error) {
	snap, err := s.store.Run(ctx, activity.UnreadQuery())
	if err != nil {
		return 0, err
	}
	batch := activity.MarkAllRead(snap.Docs)
	if batch.Len() == 0 {
		return 0, nil
	}
	if err := s.store.Commit(ctx, batch); err != nil {
		s.logger.Error("Failed to mark activities read",
			zap.Int("count", batch.Len()),
			zap.Error(err))
		return 0, err
	}
	s.logger.Info("Activities marked read", zap.Int("count", batch.Len()))
	return batch.Len(), nil
}
