// Package project implements the agency project screens: the project list,
// its task checklists and the Kanban board.
package project

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/project"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// ListQuery is the projects subscription, newest first.
func ListQuery() document.Query {
	return document.Collection(document.CollectionProjects).Order(document.CreateTimeField, document.Desc)
}

// Service handles project mutations and reads.
type Service struct {
	store    document.Store
	activity *activityapp.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new project Service
func NewService(store document.Store, recorder *activityapp.Recorder, logger *zap.Logger) *Service {
	return &Service{store: store, activity: recorder, logger: logger, now: time.Now}
}

// List returns projects whose name or client contains search.
func (s *Service) List(ctx context.Context, search string) ([]*project.Project, error) {
	snap, err := s.store.Run(ctx, ListQuery())
	if err != nil {
		return nil, err
	}
	projects, err := document.MapAll(snap, project.FromDocument)
	if err != nil {
		return nil, err
	}
	return project.Search(projects, search), nil
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id string) (*project.Project, error) {
	doc, err := s.store.Get(ctx, document.NewRef(document.CollectionProjects, id))
	if err != nil {
		return nil, err
	}
	return project.FromDocument(*doc)
}

// Create stores a new project. Submitting the same form twice creates two
// projects.
func (s *Service) Create(ctx context.Context, actor *identity.Session, input CreateProjectInput) (*project.Project, error) {
	p, err := project.NewProject(input.Name, input.Client, input.Budget, input.Deadline, input.Status, input.Team)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.Add(ctx, document.CollectionProjects, p.Fields())
	if err != nil {
		s.logger.Error("Failed to create project", zap.String("name", p.Name), zap.Error(err))
		s.activity.Failure(ctx, actor, "create project", err)
		return nil, err
	}
	p.ID = ref.ID
	p.CreatedAt = s.now()

	s.logger.Info("Project created", zap.String("project_id", p.ID), zap.String("name", p.Name))
	s.activity.Log(ctx, actor, "Started new project: "+p.Name, activity.TypeSuccess)
	return p, nil
}

// Update merges the patch into the project.
func (s *Service) Update(ctx context.Context, actor *identity.Session, id string, patch project.Patch) error {
	fields, err := patch.Fields()
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, document.NewRef(document.CollectionProjects, id), fields); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.activity.Failure(ctx, actor, "update project", err)
		}
		return err
	}
	s.logger.Info("Project updated", zap.String("project_id", id))
	s.activity.Log(ctx, actor, "Updated project details", activity.TypeInfo)
	return nil
}

// Delete removes the project. Its tasks sub-collection is left in place.
func (s *Service) Delete(ctx context.Context, actor *identity.Session, id string) error {
	if err := s.store.Delete(ctx, document.NewRef(document.CollectionProjects, id)); err != nil {
		s.logger.Error("Failed to delete project", zap.String("project_id", id), zap.Error(err))
		s.activity.Failure(ctx, actor, "delete project", err)
		return err
	}
	s.logger.Info("Project deleted", zap.String("project_id", id))
	s.activity.Log(ctx, actor, "Archived project record", activity.TypeError)
	return nil
}

// Board groups every project into the Kanban columns.
func (s *Service) Board(ctx context.Context) ([]project.Column, error) {
	projects, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return project.Board(projects), nil
}

// Move shifts a project one column forward or backward. At the first or
// last column the move is a no-op: nothing is written or logged. Concurrent
// moves are last-write-wins on the status field.
func (s *Service) Move(ctx context.Context, actor *identity.Session, id string, dir project.Direction) (*MoveResult, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	to, moved := p.Move(dir)
	result := &MoveResult{Project: p, From: from, To: to, Moved: moved}
	if !moved {
		return result, nil
	}
	if err := s.store.Update(ctx, document.NewRef(document.CollectionProjects, id), document.Fields{"status": string(to)}); err != nil {
		s.activity.Failure(ctx, actor, "move project", err)
		return nil, err
	}
	p.Status = to
	s.logger.Info("Project moved",
		zap.String("project_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	s.activity.Log(ctx, actor, "Updated project status to "+string(to), activity.TypeInfo)
	return result, nil
}
