package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	financeapp "github.com/sparkcode/dashboard/internal/application/finance"
	identityapp "github.com/sparkcode/dashboard/internal/application/identity"
	"github.com/sparkcode/dashboard/internal/bootstrap"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/finance"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/tests/testutil"
)

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "dashboard.db")},
		Log:      config.LogConfig{Level: "silent"},
	}
}

// dashctl runs one command line against the database in cfg.
func dashctl(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	a := &app{cfg: cfg, log: zap.NewNop()}
	t.Cleanup(func() { _ = a.teardown() })

	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func openCore(t *testing.T, cfg *config.Config) *bootstrap.Core {
	t.Helper()
	core, err := bootstrap.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func TestUsersCreate(t *testing.T) {
	cfg := fileConfig(t)

	out, err := dashctl(t, cfg, "users", "create", "--email", "zayd@sparkcode.com", "--password", "secret123", "--name", "Zayd", "--admin")
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.Len(t, fields, 3)
	assert.Equal(t, "zayd@sparkcode.com", fields[1])
	assert.Equal(t, "Admin", fields[2])

	_, err = dashctl(t, cfg, "users", "create", "--email", "zayd@sparkcode.com", "--password", "secret123")
	assert.ErrorIs(t, err, identityapp.ErrEmailExists)

	_, err = dashctl(t, cfg, "users", "create", "--email", "ada@sparkcode.com")
	assert.ErrorContains(t, err, "password")
}

func TestUsersSetRole(t *testing.T) {
	cfg := fileConfig(t)
	out, err := dashctl(t, cfg, "users", "create", "--email", "max@sparkcode.com", "--password", "secret123")
	require.NoError(t, err)
	id := strings.Split(out, "\t")[0]

	out, err = dashctl(t, cfg, "users", "set-role", id, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, id+" is now Admin\n", out)

	core := openCore(t, cfg)
	doc, err := core.Store.Get(context.Background(), document.NewRef(document.CollectionUsers, id))
	require.NoError(t, err)
	assert.Equal(t, "admin", doc.Fields["role"])
	assert.Equal(t, "max@sparkcode.com", doc.Fields["email"], "merge keeps the profile")

	_, err = dashctl(t, cfg, "users", "set-role", id, "owner")
	assert.ErrorContains(t, err, `unknown role "owner"`)

	_, err = dashctl(t, cfg, "users", "set-role", id)
	assert.Error(t, err)
}

func TestTeamSeedFounders(t *testing.T) {
	cfg := fileConfig(t)

	out, err := dashctl(t, cfg, "team", "seed-founders")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Jafar Abass")

	_, err = dashctl(t, cfg, "team", "seed-founders")
	require.NoError(t, err)

	core := openCore(t, cfg)
	snap, err := core.Store.Run(context.Background(), document.Collection(document.CollectionTeam))
	require.NoError(t, err)
	assert.Equal(t, 6, snap.Size(), "seeding twice adds the founders twice")

	feed, err := core.Store.Run(context.Background(), document.Collection(document.CollectionActivity))
	require.NoError(t, err)
	require.Equal(t, 2, feed.Size())
	assert.Equal(t, "Initialized founding team members", feed.Docs[0].Fields["message"])
}

func TestFinanceExport(t *testing.T) {
	cfg := fileConfig(t)

	_, err := dashctl(t, cfg, "finance", "export")
	assert.ErrorIs(t, err, finance.ErrNoTransactions)

	core := openCore(t, cfg)
	svc := financeapp.NewService(core.Store, core.Recorder, zap.NewNop())
	_, err = svc.AddTransaction(context.Background(), testutil.AdminSession(), financeapp.AddTransactionInput{
		Description: `Website "v2" build`, Amount: "1500", Type: finance.TypeIncome,
	})
	require.NoError(t, err)
	require.NoError(t, core.Close())

	out, err := dashctl(t, cfg, "finance", "export", "-o", "-")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(finance.CSVHeader, ","), lines[0])
	assert.Contains(t, lines[1], `"Website ""v2"" build"`)

	dir := t.TempDir()
	out, err = dashctl(t, cfg, "finance", "export", "--format", "CSV", "--out", dir)
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "finance_report_"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(lines, "\n"), string(data))

	_, err = dashctl(t, cfg, "finance", "export", "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}
