package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	t.Run("top-level document", func(t *testing.T) {
		ref, err := ParsePath("settings/general")
		require.NoError(t, err)
		assert.Equal(t, NewRef("settings", "general"), ref)
	})

	t.Run("sub-collection document", func(t *testing.T) {
		ref, err := ParsePath("/projects/p1/tasks/t1/")
		require.NoError(t, err)
		assert.Equal(t, "projects/p1/tasks", ref.Collection)
		assert.Equal(t, "t1", ref.ID)
		assert.Equal(t, "projects/p1/tasks/t1", ref.Path())
	})

	t.Run("odd segment count is a collection", func(t *testing.T) {
		_, err := ParsePath("projects/p1/tasks")
		assert.Error(t, err)
	})

	t.Run("empty segment", func(t *testing.T) {
		_, err := ParsePath("projects//tasks/t1")
		assert.Error(t, err)
	})
}

func TestRef_Child(t *testing.T) {
	assert.Equal(t, "projects/p1/tasks", NewRef(CollectionProjects, "p1").Child("tasks"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.NoError(t, NewRef(CollectionProjects, a).Validate())
}

func TestDocument_Flatten(t *testing.T) {
	d := Document{ID: "p1", Collection: CollectionProjects, Fields: Fields{"name": "Site", "id": "ignored"}}
	flat := d.Flatten()
	assert.Equal(t, "p1", flat["id"])
	assert.Equal(t, "Site", flat["name"])
	assert.Equal(t, "ignored", d.Fields["id"], "flatten must not mutate the document")
}

func TestServerTimestamp(t *testing.T) {
	assert.True(t, IsServerTimestamp(ServerTimestamp))
	assert.False(t, IsServerTimestamp(time.Now()))
}

func TestWriteBatch_Collections(t *testing.T) {
	b := NewBatch().
		Update(NewRef(CollectionActivity, "a"), Fields{"read": true}).
		Set(NewRef(CollectionConfig, "global_settings"), Fields{"theme": "dark"}, true).
		Update(NewRef(CollectionActivity, "b"), Fields{"read": true}).
		Delete(NewRef(CollectionProjects, "p"))

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []string{CollectionActivity, CollectionConfig, CollectionProjects}, b.Collections())
	assert.Equal(t, OpMerge, b.Ops()[1].Kind)
	assert.Equal(t, OpDelete, b.Ops()[3].Kind)
}

func TestFieldReader(t *testing.T) {
	created := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	doc := Document{
		ID:         "s1",
		Collection: CollectionStudents,
		Fields: Fields{
			"name":      "Ada",
			"progress":  float64(45),
			"email":     "ada@example.com",
			"status":    "Active",
			"read":      true,
			"createdAt": created.Format(time.RFC3339Nano),
			"budget":    float64(1500),
		},
	}

	t.Run("reads well formed fields", func(t *testing.T) {
		r := Read(doc)
		assert.Equal(t, "Ada", r.String("name"))
		assert.Equal(t, 45, r.IntRange("progress", 0, "min=0,max=100"))
		assert.Equal(t, "ada@example.com", r.Email("email"))
		assert.Equal(t, "Active", r.OneOf("status", "Active", "Inactive"))
		assert.True(t, r.Bool("read"))
		assert.Equal(t, created, r.Time("createdAt", time.Time{}))
		assert.Equal(t, "1500", r.OptionalString("budget"))
		assert.Equal(t, "Pending", r.OptionalOneOf("payment", "Pending", "Paid", "Pending"))
		assert.Equal(t, 7, r.Int("missing", 7))
		require.NoError(t, r.Err())
	})

	t.Run("missing required field fails", func(t *testing.T) {
		r := Read(doc)
		r.String("course")
		err := r.Err()
		require.Error(t, err)

		var mapping *MappingError
		require.ErrorAs(t, err, &mapping)
		assert.Equal(t, "students", mapping.Collection)
		assert.Equal(t, "s1", mapping.ID)
		assert.Equal(t, "course", mapping.Field)
	})

	t.Run("first failure wins", func(t *testing.T) {
		r := Read(doc)
		r.OneOf("status", "Graduated")
		r.String("course")
		var mapping *MappingError
		require.ErrorAs(t, r.Err(), &mapping)
		assert.Equal(t, "status", mapping.Field)
	})

	t.Run("out of range number fails", func(t *testing.T) {
		bad := Document{ID: "s2", Collection: CollectionStudents, Fields: Fields{"progress": float64(140)}}
		r := Read(bad)
		r.IntRange("progress", 0, "min=0,max=100")
		assert.ErrorContains(t, r.Err(), "out of range")
	})

	t.Run("fractional number fails", func(t *testing.T) {
		bad := Document{ID: "s3", Collection: CollectionStudents, Fields: Fields{"progress": 12.5}}
		r := Read(bad)
		r.Int("progress", 0)
		assert.ErrorContains(t, r.Err(), "whole number")
	})

	t.Run("invalid email fails", func(t *testing.T) {
		bad := Document{ID: "c1", Collection: CollectionClients, Fields: Fields{"email": "not-an-email"}}
		r := Read(bad)
		r.Email("email")
		assert.ErrorContains(t, r.Err(), "email")
	})

	t.Run("wrong type fails", func(t *testing.T) {
		bad := Document{ID: "a1", Collection: CollectionActivity, Fields: Fields{"read": "yes"}}
		r := Read(bad)
		r.Bool("read")
		assert.ErrorContains(t, r.Err(), "boolean")
	})
}

func TestMapAll(t *testing.T) {
	snap := Snapshot{Docs: []Document{
		{ID: "1", Collection: "team", Fields: Fields{"name": "A"}},
		{ID: "2", Collection: "team", Fields: Fields{}},
	}}
	mapper := func(d Document) (string, error) {
		r := Read(d)
		name := r.String("name")
		return name, r.Err()
	}

	_, err := MapAll(snap, mapper)
	require.Error(t, err)

	names, err := MapAll(Snapshot{Docs: snap.Docs[:1]}, mapper)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names)
}
