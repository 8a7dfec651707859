package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFeed remembers every published notice.
type recordingFeed struct {
	mu      sync.Mutex
	notices []document.ChangeNotice
	err     error
}

func (f *recordingFeed) Publish(_ context.Context, n document.ChangeNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, n)
	return f.err
}

func (f *recordingFeed) Listen(func(document.ChangeNotice)) func() {
	return func() {}
}

func (f *recordingFeed) collections() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.notices))
	for _, n := range f.notices {
		out = append(out, n.Collection)
	}
	return out
}

// tickingClock advances one second per call so creation order is observable.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestStore(t *testing.T) (*GormDocumentStore, *recordingFeed) {
	feed := &recordingFeed{}
	store := NewGormDocumentStore(newSQLiteDatabase(t).DB, feed,
		WithClock(tickingClock()), WithOrigin("node-a"))
	return store, feed
}

func TestGormDocumentStore_AddGetRun(t *testing.T) {
	ctx := context.Background()
	store, feed := newTestStore(t)

	first, err := store.Add(ctx, "projects", document.Fields{
		"name": "Website", "status": "In Progress", "createdAt": document.ServerTimestamp,
	})
	require.NoError(t, err)
	_, err = store.Add(ctx, "projects", document.Fields{"name": "App", "status": "Done"})
	require.NoError(t, err)
	assert.Len(t, first.ID, 26)

	doc, err := store.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Website", doc.Fields["name"])
	created, ok := doc.Fields["createdAt"].(string)
	require.True(t, ok, "server timestamp is resolved to a string")
	assert.Equal(t, doc.CreateTime.UTC().Format(time.RFC3339Nano), created)

	snap, err := store.Run(ctx, document.Collection("projects").Order(document.CreateTimeField, document.Desc))
	require.NoError(t, err)
	require.Equal(t, 2, snap.Size())
	assert.Equal(t, "App", snap.Docs[0].Fields["name"])

	snap, err = store.Run(ctx, document.Collection("projects").Where("status", "In Progress"))
	require.NoError(t, err)
	require.Equal(t, 1, snap.Size())
	assert.Equal(t, first.ID, snap.Docs[0].ID)

	assert.Equal(t, []string{"projects", "projects"}, feed.collections())
	assert.Equal(t, "node-a", feed.notices[0].Origin)
}

func TestGormDocumentStore_SubCollections(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	p, err := store.Add(ctx, "projects", document.Fields{"name": "Website"})
	require.NoError(t, err)
	_, err = store.Add(ctx, p.Child("tasks"), document.Fields{"title": "Wireframes", "completed": false})
	require.NoError(t, err)

	tasks, err := store.Run(ctx, document.Collection(p.Child("tasks")))
	require.NoError(t, err)
	assert.Equal(t, 1, tasks.Size())

	projects, err := store.Run(ctx, document.Collection("projects"))
	require.NoError(t, err)
	assert.Equal(t, 1, projects.Size())
}

func TestGormDocumentStore_SetMergeUpdate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ref := document.NewRef("settings", "general")

	require.NoError(t, store.Set(ctx, ref, document.Fields{
		"notifications": map[string]any{"emailAlerts": true, "projectCreated": true},
		"siteName":      "Sparkcode",
	}, false))

	t.Run("merge keeps untouched nested keys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ref, document.Fields{
			"notifications": map[string]any{"emailAlerts": false},
		}, true))

		doc, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"emailAlerts": false, "projectCreated": true}, doc.Fields["notifications"])
		assert.Equal(t, "Sparkcode", doc.Fields["siteName"])
	})

	t.Run("update replaces top-level keys", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, ref, document.Fields{
			"notifications": map[string]any{"studentEnrollment": true},
		}))

		doc, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"studentEnrollment": true}, doc.Fields["notifications"])
		assert.True(t, doc.UpdateTime.After(doc.CreateTime))
	})

	t.Run("set without merge overwrites and keeps create time", func(t *testing.T) {
		before, err := store.Get(ctx, ref)
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, ref, document.Fields{"siteName": "Other"}, false))

		doc, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, document.Fields{"siteName": "Other"}, doc.Fields)
		assert.True(t, doc.CreateTime.Equal(before.CreateTime))
	})

	t.Run("update of a missing document fails", func(t *testing.T) {
		err := store.Update(ctx, document.NewRef("projects", "missing"), document.Fields{"status": "Done"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormDocumentStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, feed := newTestStore(t)

	ref, err := store.Add(ctx, "clients", document.Fields{"name": "Acme"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, store.Delete(ctx, ref), "deleting a missing document is not an error")
	assert.Equal(t, []string{"clients", "clients", "clients"}, feed.collections())
}

func TestGormDocumentStore_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes once per collection after commit", func(t *testing.T) {
		store, feed := newTestStore(t)
		a, err := store.Add(ctx, "activity_feed", document.Fields{"message": "a", "read": false})
		require.NoError(t, err)
		b, err := store.Add(ctx, "activity_feed", document.Fields{"message": "b", "read": false})
		require.NoError(t, err)
		feed.notices = nil

		batch := document.NewBatch().
			Update(a, document.Fields{"read": true}).
			Update(b, document.Fields{"read": true})
		require.NoError(t, store.Commit(ctx, batch))

		unread, err := store.Run(ctx, document.Collection("activity_feed").Where("read", false))
		require.NoError(t, err)
		assert.True(t, unread.Empty())
		assert.Equal(t, []string{"activity_feed"}, feed.collections())
	})

	t.Run("a failing write rolls back the whole batch", func(t *testing.T) {
		store, feed := newTestStore(t)
		a, err := store.Add(ctx, "activity_feed", document.Fields{"message": "a", "read": false})
		require.NoError(t, err)
		feed.notices = nil

		batch := document.NewBatch().
			Update(a, document.Fields{"read": true}).
			Update(document.NewRef("activity_feed", "gone"), document.Fields{"read": true})
		err = store.Commit(ctx, batch)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		doc, err := store.Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, false, doc.Fields["read"])
		assert.Empty(t, feed.collections())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		store, feed := newTestStore(t)
		require.NoError(t, store.Commit(ctx, document.NewBatch()))
		require.NoError(t, store.Commit(ctx, nil))
		assert.Empty(t, feed.collections())
	})

	t.Run("invalid reference is rejected before writing", func(t *testing.T) {
		store, _ := newTestStore(t)
		err := store.Commit(ctx, document.NewBatch().Delete(document.NewRef("", "x")))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestGormDocumentStore_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	store, feed := newTestStore(t)
	feed.err = errors.New("relay down")

	ref, err := store.Add(ctx, "team", document.Fields{"name": "Ada"})
	require.NoError(t, err)
	_, err = store.Get(ctx, ref)
	assert.NoError(t, err)
}

func TestGormDocumentStore_Run_InvalidQuery(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Run(context.Background(), document.Collection("projects/x"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestGormDocumentStore_RollbackOnPostgres(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	feed := &recordingFeed{}
	store := NewGormDocumentStore(db.DB, feed)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"collection", "id", "data", "created_at", "updated_at"}))
	mock.ExpectExec(`INSERT INTO "documents"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Set(context.Background(), document.NewRef("finance", "overview"), document.Fields{"balance": "$0.00"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, feed.collections())
	assert.NoError(t, mock.ExpectationsWereMet())
}
