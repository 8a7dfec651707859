// Package team implements the team screen.
package team

import (
	"context"

	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/team"
)

// MemberInput is the team member form, used for both add and edit.
type MemberInput struct {
	Name   string
	Role   string
	Status team.MemberStatus
	Email  string
}

// ListQuery is the team subscription.
func ListQuery() document.Query {
	return document.Collection(document.CollectionTeam)
}

// Service handles team members.
type Service struct {
	store    document.Store
	activity *activityapp.Recorder
	logger   *zap.Logger
}

// NewService creates a new team Service
func NewService(store document.Store, recorder *activityapp.Recorder, logger *zap.Logger) *Service {
	return &Service{store: store, activity: recorder, logger: logger}
}

// List returns every member.
func (s *Service) List(ctx context.Context) ([]*team.Member, error) {
	snap, err := s.store.Run(ctx, ListQuery())
	if err != nil {
		return nil, err
	}
	return document.MapAll(snap, team.FromDocument)
}

// Add stores a new member.
func (s *Service) Add(ctx context.Context, actor *identity.Session, input MemberInput) (*team.Member, error) {
	m, err := team.NewMember(input.Name, input.Role, input.Status, input.Email)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.Add(ctx, document.CollectionTeam, m.Fields())
	if err != nil {
		s.activity.Failure(ctx, actor, "add team member", err)
		return nil, err
	}
	m.ID = ref.ID
	s.activity.Log(ctx, actor, "Added new team member: "+m.Name, activity.TypeSuccess)
	return m, nil
}

// Update replaces a member's editable fields.
func (s *Service) Update(ctx context.Context, actor *identity.Session, id string, input MemberInput) (*team.Member, error) {
	m, err := team.NewMember(input.Name, input.Role, input.Status, input.Email)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, document.NewRef(document.CollectionTeam, id), m.UpdateFields()); err != nil {
		s.activity.Failure(ctx, actor, "update team member", err)
		return nil, err
	}
	m.ID = id
	s.activity.Log(ctx, actor, "Updated team member: "+m.Name, activity.TypeInfo)
	return m, nil
}

// Remove deletes a member.
func (s *Service) Remove(ctx context.Context, actor *identity.Session, id string) error {
	ref := document.NewRef(document.CollectionTeam, id)
	doc, err := s.store.Get(ctx, ref)
	if err != nil {
		return err
	}
	name, _ := doc.Fields["name"].(string)
	if err := s.store.Delete(ctx, ref); err != nil {
		s.activity.Failure(ctx, actor, "remove team member", err)
		return err
	}
	s.activity.Log(ctx, actor, "Removed team member: "+name, activity.TypeWarning)
	return nil
}

// SeedFounders adds the three founding members in one batch. Running it
// again adds them again.
func (s *Service) SeedFounders(ctx context.Context, actor *identity.Session) ([]*team.Member, error) {
	founders := team.Founders()
	batch := document.NewBatch()
	for _, m := range founders {
		m.ID = document.NewID()
		batch.Set(document.NewRef(document.CollectionTeam, m.ID), m.Fields(), false)
	}
	if err := s.store.Commit(ctx, batch); err != nil {
		s.activity.Failure(ctx, actor, "initialize team", err)
		return nil, err
	}
	s.logger.Info("Founding team seeded", zap.Int("count", len(founders)))
	s.activity.Log(ctx, actor, "Initialized founding team members", activity.TypeSuccess)
	return founders, nil
}
