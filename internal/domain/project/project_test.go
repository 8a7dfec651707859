package project

import (
	"testing"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from     Status
		forward  Status
		backward Status
	}{
		{StatusToDo, StatusInProgress, StatusToDo},
		{StatusInProgress, StatusReview, StatusToDo},
		{StatusReview, StatusDone, StatusInProgress},
		{StatusDone, StatusDone, StatusReview},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.forward, tt.from.Forward())
			assert.Equal(t, tt.backward, tt.from.Backward())
		})
	}

	t.Run("unknown status does not move", func(t *testing.T) {
		assert.Equal(t, Status("Completed"), Status("Completed").Forward())
		assert.Equal(t, Status("Completed"), Status("Completed").Backward())
	})
}

func TestProject_Move(t *testing.T) {
	t.Run("review forward is done", func(t *testing.T) {
		p := &Project{Status: StatusReview}
		next, changed := p.Move(Forward)
		assert.True(t, changed)
		assert.Equal(t, StatusDone, next)
	})

	t.Run("done forward is a no-op", func(t *testing.T) {
		p := &Project{Status: StatusDone}
		next, changed := p.Move(Forward)
		assert.False(t, changed)
		assert.Equal(t, StatusDone, next)
	})

	t.Run("to do backward is a no-op", func(t *testing.T) {
		p := &Project{Status: StatusToDo}
		_, changed := p.Move(Backward)
		assert.False(t, changed)
	})
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"To Do":        StatusToDo,
		"To-Do":        StatusToDo,
		"todo":         StatusToDo,
		"in-progress":  StatusInProgress,
		" In Progress": StatusInProgress,
		"REVIEW":       StatusReview,
		"done":         StatusDone,
	} {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseStatus("Completed")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNewProject(t *testing.T) {
	t.Run("applies form defaults", func(t *testing.T) {
		p, err := NewProject(" Website ", "Acme", "$1,200", "2026-12-01", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "Website", p.Name)
		assert.Equal(t, StatusInProgress, p.Status)
		assert.Equal(t, 1, p.Team)

		fields := p.Fields()
		assert.Equal(t, "In Progress", fields["status"])
		assert.True(t, document.IsServerTimestamp(fields["createdAt"]))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProject("  ", "Acme", "", "", StatusToDo, 1)
		assert.ErrorContains(t, err, "name cannot be empty")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewProject("Site", "Acme", "", "", "Completed", 1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestFromDocument(t *testing.T) {
	created := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	t.Run("falls back to document create time", func(t *testing.T) {
		d := document.Document{
			ID:         "p1",
			Collection: document.CollectionProjects,
			CreateTime: created,
			Fields:     document.Fields{"name": "Site", "status": "Review", "budget": float64(900), "team": float64(3)},
		}
		p, err := FromDocument(d)
		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, StatusReview, p.Status)
		assert.Equal(t, "900", p.Budget)
		assert.Equal(t, 3, p.Team)
		assert.Equal(t, created, p.CreatedAt)
	})

	t.Run("fails loudly on unknown status", func(t *testing.T) {
		d := document.Document{ID: "p2", Collection: document.CollectionProjects, Fields: document.Fields{"name": "Site", "status": "Archived"}}
		_, err := FromDocument(d)
		var mapping *document.MappingError
		require.ErrorAs(t, err, &mapping)
		assert.Equal(t, "status", mapping.Field)
	})

	t.Run("fails loudly on missing name", func(t *testing.T) {
		d := document.Document{ID: "p3", Collection: document.CollectionProjects, Fields: document.Fields{"status": "Done"}}
		_, err := FromDocument(d)
		assert.ErrorContains(t, err, `"name"`)
	})
}

func TestSearch(t *testing.T) {
	projects := []*Project{
		{Name: "Brand Refresh", Client: "Acme"},
		{Name: "Mobile App", Client: "Globex"},
	}
	assert.Len(t, Search(projects, ""), 2)
	assert.Equal(t, "Brand Refresh", Search(projects, "ACME")[0].Name)
	assert.Equal(t, "Mobile App", Search(projects, "app")[0].Name)
	assert.Empty(t, Search(projects, "initech"))
}

func TestPatch_Fields(t *testing.T) {
	status := StatusDone
	team := 4
	fields, err := Patch{Status: &status, Team: &team}.Fields()
	require.NoError(t, err)
	assert.Equal(t, document.Fields{"status": "Done", "team": 4}, fields)

	_, err = Patch{}.Fields()
	assert.Error(t, err)

	bad := Status("Archived")
	_, err = Patch{Status: &bad}.Fields()
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestBoard(t *testing.T) {
	projects := []*Project{
		{ID: "a", Status: StatusDone},
		{ID: "b", Status: StatusToDo},
		{ID: "c", Status: StatusDone},
	}
	columns := Board(projects)
	require.Len(t, columns, 4)
	assert.Equal(t, StatusToDo, columns[0].Status)
	assert.Equal(t, 1, columns[0].Count())
	assert.Equal(t, 0, columns[1].Count())
	assert.Equal(t, 0, columns[2].Count())
	assert.Equal(t, 2, columns[3].Count())
	assert.Equal(t, "a", columns[3].Projects[0].ID)
}

func TestTasks(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewTask(" ", now)
	assert.Error(t, err)

	task, err := NewTask("Draft wireframes", now)
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.Equal(t, "projects/p1/tasks", TasksPath("p1"))

	older := &Task{ID: "old", CreatedAt: now.Add(-time.Hour)}
	newer := &Task{ID: "new", CreatedAt: now}
	tasks := []*Task{older, newer}
	NewestFirst(tasks)
	assert.Equal(t, "new", tasks[0].ID)

	mapped, err := TaskFromDocument(document.Document{
		ID:         "t1",
		Collection: TasksPath("p1"),
		Fields:     document.Fields{"title": "Ship", "completed": true, "createdAt": float64(now.UnixMilli())},
	})
	require.NoError(t, err)
	assert.True(t, mapped.Completed)
	assert.True(t, now.Equal(mapped.CreatedAt))
}
