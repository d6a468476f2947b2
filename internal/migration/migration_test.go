package migration

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/subscription/domain"
	"github.com/smallbiznis/subshare/internal/subscription/repository"
	"github.com/smallbiznis/subshare/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMigrationsSQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	require.NoError(t, RunMigrations(sqlDB, "sqlite"))

	// Re-running must be a no-op, not an error.
	require.NoError(t, RunMigrations(sqlDB, "sqlite"))

	var count int64
	require.NoError(t, conn.Table("ledger_snapshots").Count(&count).Error)
	require.Zero(t, count)
}

func TestRunMigrationsBacksRepository(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, RunMigrations(sqlDB, "sqlite"))

	repo := repository.NewRepository(repository.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
	})

	ctx := context.Background()
	_, err = repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		return append(subs, domain.Subscription{ID: "svc-1", Name: "Netflix Premium"}), nil
	})
	require.NoError(t, err)

	subs, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "Netflix Premium", subs[0].Name)
}

func TestRunMigrationsUnsupportedType(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)

	err = RunMigrations(sqlDB, "oracle")
	require.ErrorContains(t, err, "unsupported migration database type")
}

func TestRunMigrationsNilHandle(t *testing.T) {
	require.Error(t, RunMigrations(nil, "sqlite"))
}
