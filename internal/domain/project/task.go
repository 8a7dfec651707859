package project

import (
	"sort"
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// TasksCollection is the sub-collection holding a project's checklist.
const TasksCollection = "tasks"

// TasksPath returns the collection path of the project's tasks.
func TasksPath(projectID string) string {
	return document.NewRef(document.CollectionProjects, projectID).Child(TasksCollection)
}

// Task is a checklist item of a project.
type Task struct {
	ID        string
	Title     string
	Completed bool
	CreatedAt time.Time
}

// NewTask validates a new checklist item.
func NewTask(title string, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.InvalidInput("task title cannot be empty")
	}
	return &Task{Title: title, CreatedAt: now}, nil
}

// Fields returns the stored representation.
func (t *Task) Fields() document.Fields {
	return document.Fields{
		"title":     t.Title,
		"completed": t.Completed,
		"createdAt": t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// TaskFromDocument maps a tasks document.
func TaskFromDocument(d document.Document) (*Task, error) {
	r := document.Read(d)
	t := &Task{
		ID:        d.ID,
		Title:     r.String("title"),
		Completed: r.Bool("completed"),
		CreatedAt: r.Time("createdAt", d.CreateTime),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewestFirst orders tasks by creation time, most recent first.
func NewestFirst(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
