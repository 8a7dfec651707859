package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	teamapp "github.com/sparkcode/dashboard/internal/application/team"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/internal/infrastructure/migration"
)

func TestDocumentStore_Postgres(t *testing.T) {
	core := OpenCore(t, NewPostgresConfig(t))
	store := core.Store
	ctx := context.Background()

	var notified []string
	cancel := core.Feed.Listen(func(n document.ChangeNotice) {
		notified = append(notified, n.Collection)
	})
	defer cancel()

	t.Run("Add and Get", func(t *testing.T) {
		ref, err := store.Add(ctx, document.CollectionClients, document.Fields{
			"name":      "Northwind",
			"email":     "ops@northwind.io",
			"createdAt": document.ServerTimestamp,
		})
		require.NoError(t, err)

		doc, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, "Northwind", doc.Fields["name"])
		_, err = time.Parse(time.RFC3339Nano, doc.Fields["createdAt"].(string))
		assert.NoError(t, err, "server timestamps are stored as RFC 3339")
		assert.Contains(t, notified, document.CollectionClients)
	})

	t.Run("Run filters orders and limits", func(t *testing.T) {
		for i, status := range []string{"todo", "done", "todo", "todo"} {
			_, err := store.Add(ctx, "projects/p1/tasks", document.Fields{
				"title":  string(rune('a' + i)),
				"status": status,
				"rank":   i,
			})
			require.NoError(t, err)
		}

		snap, err := store.Run(ctx, document.Collection("projects/p1/tasks").
			Where("status", "todo").
			Order("rank", document.Desc).
			Take(2))
		require.NoError(t, err)
		require.Equal(t, 2, snap.Size())
		assert.Equal(t, "d", snap.Docs[0].Fields["title"])
		assert.Equal(t, "c", snap.Docs[1].Fields["title"])
	})

	t.Run("Set merge keeps other fields", func(t *testing.T) {
		ref := document.NewRef(document.CollectionSettings, "global")
		require.NoError(t, store.Set(ctx, ref, document.Fields{"siteName": "SparkCode", "currency": "USD"}, false))
		require.NoError(t, store.Set(ctx, ref, document.Fields{"currency": "NGN"}, true))

		doc, err := store.Get(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, "SparkCode", doc.Fields["siteName"])
		assert.Equal(t, "NGN", doc.Fields["currency"])
		assert.True(t, doc.UpdateTime.After(doc.CreateTime) || doc.UpdateTime.Equal(doc.CreateTime))
	})

	t.Run("Update of a missing document is not found", func(t *testing.T) {
		err := store.Update(ctx, document.NewRef(document.CollectionClients, "ghost"), document.Fields{"name": "x"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Commit is atomic", func(t *testing.T) {
		keep, err := store.Add(ctx, document.CollectionTeam, document.Fields{"name": "Keep"})
		require.NoError(t, err)

		batch := document.NewBatch().
			Delete(keep).
			Update(document.NewRef(document.CollectionTeam, "missing"), document.Fields{"name": "x"})
		assert.Error(t, store.Commit(ctx, batch))

		_, err = store.Get(ctx, keep)
		assert.NoError(t, err, "the delete rolled back with the failed update")
	})
}

func TestCredentialRepository_Postgres(t *testing.T) {
	core := OpenCore(t, NewPostgresConfig(t))
	repo := core.Credentials
	ctx := context.Background()

	cred, err := identity.NewCredential("Founder@SparkCode.com", "launch2026", "Founder")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, cred))

	found, err := repo.FindByEmail(ctx, "founder@sparkcode.com")
	require.NoError(t, err)
	assert.Equal(t, cred.ID, found.ID)
	assert.True(t, found.VerifyPassword("launch2026"))

	dup, err := identity.NewCredential("founder@sparkcode.com", "another123", "")
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, dup), "e-mails are unique")
}

func TestTeamSeed_Postgres(t *testing.T) {
	core := OpenCore(t, NewPostgresConfig(t))
	ctx := context.Background()
	admin := &identity.Session{UserID: "admin-1", Name: "Admin", Role: identity.RoleAdmin}

	svc := teamapp.NewService(core.Store, core.Recorder, zap.NewNop())
	members, err := svc.SeedFounders(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	feed, err := core.Store.Run(ctx, document.Collection(document.CollectionActivity))
	require.NoError(t, err)
	require.Equal(t, 1, feed.Size())
	assert.Equal(t, "Initialized founding team members", feed.Docs[0].Fields["message"])
}

func TestMigrations_DownAndUp(t *testing.T) {
	cfg := NewPostgresConfig(t)
	// Opening applies the embedded migrations.
	core := OpenCore(t, cfg)
	require.NoError(t, core.Close())

	path := findMigrationsPath()
	require.NotEmpty(t, path, "Could not find migrations directory")

	db, err := sql.Open("postgres", cfg.Database.DSN())
	require.NoError(t, err)
	m, err := migration.New(db, path, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(20260301090100), version)
	assert.False(t, dirty)

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(20260301090000), version)

	require.NoError(t, m.Up())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(20260301090100), version)
}
