//go:build integration

package admin

import (
	"context"
	"testing"

	"github.com/paperchat-ai/paperchat/internal/testutil"
	"github.com/stretchr/testify/require"
)

const migrationsURL = "file://../../../migrations"

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	require.NoError(t, runMigrations(pc.ConnectionString(), migrationsURL))

	// Second run finds no pending migrations and must still succeed.
	require.NoError(t, runMigrations(pc.ConnectionString(), migrationsURL))
}
