package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docAt(id string, at time.Time, fields Fields) Document {
	return Document{ID: id, Collection: CollectionActivity, Fields: fields, CreateTime: at, UpdateTime: at}
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestQuery_Builders(t *testing.T) {
	base := Collection(CollectionActivity)
	withRead := base.Where("read", false)
	withUser := withRead.Where("user", "System")

	assert.Empty(t, base.Filters)
	assert.Len(t, withRead.Filters, 1)
	assert.Len(t, withUser.Filters, 2)

	q := withUser.Order("createdAt", Desc).Take(15)
	assert.Equal(t, "createdAt", q.OrderBy)
	assert.Equal(t, Desc, q.Direction)
	assert.Equal(t, 15, q.Limit)
	assert.Equal(t, "activity_feed where read==false where user==System order by createdAt desc limit 15", q.String())
}

func TestQuery_Validate(t *testing.T) {
	t.Run("accepts sub-collection", func(t *testing.T) {
		require.NoError(t, Collection("projects/abc/tasks").Validate())
	})

	t.Run("rejects document path as collection", func(t *testing.T) {
		assert.Error(t, Collection("projects/abc").Validate())
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		assert.Error(t, Collection("projects").Take(-1).Validate())
	})

	t.Run("rejects unknown direction", func(t *testing.T) {
		assert.Error(t, Collection("projects").Order("name", "sideways").Validate())
	})

	t.Run("rejects empty filter field", func(t *testing.T) {
		assert.Error(t, Collection("projects").Where("", 1).Validate())
	})
}

func TestQuery_Apply(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	docs := []Document{
		docAt("c", t0.Add(2*time.Minute), Fields{"read": false, "createdAt": t0.Add(2 * time.Minute).Format(time.RFC3339Nano), "rank": 3}),
		docAt("a", t0, Fields{"read": true, "createdAt": t0.Format(time.RFC3339Nano), "rank": 10}),
		docAt("b", t0.Add(time.Minute), Fields{"read": false, "createdAt": t0.Add(time.Minute).Format(time.RFC3339Nano)}),
	}

	t.Run("defaults to creation order", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, ids(Collection(CollectionActivity).Apply(docs)))
	})

	t.Run("creation time descending", func(t *testing.T) {
		q := Collection(CollectionActivity).Order(CreateTimeField, Desc)
		assert.Equal(t, []string{"c", "b", "a"}, ids(q.Apply(docs)))
	})

	t.Run("timestamp field descending with limit", func(t *testing.T) {
		q := Collection(CollectionActivity).Order("createdAt", Desc).Take(2)
		assert.Equal(t, []string{"c", "b"}, ids(q.Apply(docs)))
	})

	t.Run("numeric field ascending keeps missing values last", func(t *testing.T) {
		q := Collection(CollectionActivity).Order("rank", Asc)
		assert.Equal(t, []string{"c", "a", "b"}, ids(q.Apply(docs)))
	})

	t.Run("missing values last when descending", func(t *testing.T) {
		q := Collection(CollectionActivity).Order("rank", Desc)
		assert.Equal(t, []string{"a", "c", "b"}, ids(q.Apply(docs)))
	})

	t.Run("equality filter", func(t *testing.T) {
		q := Collection(CollectionActivity).Where("read", false)
		assert.Equal(t, []string{"b", "c"}, ids(q.Apply(docs)))
	})

	t.Run("numeric filter ignores representation", func(t *testing.T) {
		q := Collection(CollectionActivity).Where("rank", float64(10))
		assert.Equal(t, []string{"a"}, ids(q.Apply(docs)))
	})

	t.Run("drops documents of other collections", func(t *testing.T) {
		other := Document{ID: "z", Collection: CollectionProjects, CreateTime: t0}
		q := Collection(CollectionActivity)
		assert.Equal(t, []string{"a", "b", "c"}, ids(q.Apply(append(docs, other))))
	})

	t.Run("ties on creation time break by id", func(t *testing.T) {
		same := []Document{docAt("y", t0, nil), docAt("x", t0, nil)}
		assert.Equal(t, []string{"x", "y"}, ids(Collection(CollectionActivity).Apply(same)))
	})
}
