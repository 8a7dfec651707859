package project

import (
	"context"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/project"
)

// TasksQuery is the checklist subscription of a project.
func TasksQuery(projectID string) document.Query {
	return document.Collection(project.TasksPath(projectID))
}

// Tasks returns the project's checklist, newest first.
func (s *Service) Tasks(ctx context.Context, projectID string) ([]*project.Task, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	snap, err := s.store.Run(ctx, TasksQuery(projectID))
	if err != nil {
		return nil, err
	}
	tasks, err := document.MapAll(snap, project.TaskFromDocument)
	if err != nil {
		return nil, err
	}
	project.NewestFirst(tasks)
	return tasks, nil
}

// AddTask appends an open task to the checklist.
func (s *Service) AddTask(ctx context.Context, projectID, title string) (*project.Task, error) {
	task, err := project.NewTask(title, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	ref, err := s.store.Add(ctx, project.TasksPath(projectID), task.Fields())
	if err != nil {
		return nil, err
	}
	task.ID = ref.ID
	return task, nil
}

// SetTaskCompleted ticks or unticks a task.
func (s *Service) SetTaskCompleted(ctx context.Context, projectID, taskID string, completed bool) error {
	return s.store.Update(ctx, document.NewRef(project.TasksPath(projectID), taskID), document.Fields{"completed": completed})
}

// DeleteTask removes a task from the checklist.
func (s *Service) DeleteTask(ctx context.Context, projectID, taskID string) error {
	return s.store.Delete(ctx, document.NewRef(project.TasksPath(projectID), taskID))
}

func (s *Service) requireProject(ctx context.Context, projectID string) error {
	_, err := s.store.Get(ctx, document.NewRef(document.CollectionProjects, projectID))
	return err
}
