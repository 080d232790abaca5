package stage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"ldp/internal/dbexec"
	"ldp/internal/extract"
	pgflavor "ldp/internal/flavor/postgres"
	"ldp/internal/stage"
)

func TestTableStagerRunPublishesAndRepublishIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn := setupPostgres(t, ctx)

	db, err := dbexec.Connect(ctx, dsn, pgflavor.New())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	dir := t.TempDir()
	writeFixturePage(t, dir, "widgets_count.txt", "1\n")
	writeFixturePage(t, dir, "widgets_0.json", `{"records":[
		{"id":"550e8400-e29b-41d4-a716-446655440000","name":"gear","qty":3},
		{"id":"6fa459ea-ee8a-3ca4-894e-db77e160355e","name":"bolt","qty":7}
	]}`)

	stager := &stage.TableStager{
		DB:    db,
		Pages: extract.NewDirReader(dir),
		Log:   zap.NewNop(),
	}
	table := &stage.TableSpec{TableName: "widgets", ModuleName: "mod-widgets"}

	require.NoError(t, stager.Run(ctx, table))
	assertRowCount(t, ctx, dsn, "widgets", 2)
	assertTableAbsent(t, ctx, dsn, "widgets__loading")

	// Republishing with the same source data must leave the published
	// table intact with no stray loading table behind.
	table2 := &stage.TableSpec{TableName: "widgets", ModuleName: "mod-widgets"}
	require.NoError(t, stager.Run(ctx, table2))
	assertRowCount(t, ctx, dsn, "widgets", 2)
	assertTableAbsent(t, ctx, dsn, "widgets__loading")
}

func TestTableStagerRunRollsBackOnExecutionFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn := setupPostgres(t, ctx)

	db, err := dbexec.Connect(ctx, dsn, pgflavor.New())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	dir := t.TempDir()
	// A grant to a role that doesn't exist fails inside createLoadingTable,
	// after the loading table DDL has already run in the same transaction;
	// the whole transaction must roll back and leave nothing behind.
	writeFixturePage(t, dir, "broken_count.txt", "1\n")
	writeFixturePage(t, dir, "broken_0.json", `{"records":[{"id":"550e8400-e29b-41d4-a716-446655440000","name":"x"}]}`)

	stager := &stage.TableStager{
		DB:    db,
		Pages: extract.NewDirReader(dir),
		Log:   zap.NewNop(),
		Roles: []string{"nonexistent_role_xyz"},
	}
	table := &stage.TableSpec{TableName: "broken", ModuleName: "mod-broken"}

	err = stager.Run(ctx, table)
	require.Error(t, err)
	assertTableAbsent(t, ctx, dsn, "broken")
	assertTableAbsent(t, ctx, dsn, "broken__loading")
}

func setupPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("ldp"),
		postgres.WithUsername("ldp"),
		postgres.WithPassword("ldp"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func writeFixturePage(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func assertRowCount(t *testing.T, ctx context.Context, dsn, table string, want int) {
	t.Helper()
	conn, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close()

	var got int
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func assertTableAbsent(t *testing.T, ctx context.Context, dsn, table string) {
	t.Helper()
	conn, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close()

	var exists bool
	err = conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
	).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists, "table %q should not exist", table)
}
