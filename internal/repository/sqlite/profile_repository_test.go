package sqlite_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
	"github.com/enerscope/enerscope/internal/repository/sqlite"
	"github.com/enerscope/enerscope/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileRepo(t *testing.T) repository.SyncProfileRepository {
	t.Helper()
	database := testutil.NewTestDB(t)
	return sqlite.NewSyncProfileRepository(database.DB)
}

func TestSyncProfileRepository_GetOrCreate(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	start := ts(2025, time.May, 1, 0, 0)
	profile, err := repo.GetOrCreate(ctx, "electricity", start, "kWh")
	require.NoError(t, err)

	assert.NotZero(t, profile.ID)
	assert.Equal(t, "electricity", profile.Name)
	assert.True(t, profile.IsActive)
	assert.True(t, profile.StartDate.Equal(start))
	assert.Nil(t, profile.LastSynced)
	assert.Equal(t, "kWh", profile.BaseUnit)
}

func TestSyncProfileRepository_GetOrCreatePreservesStoredRow(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	original := ts(2025, time.May, 1, 0, 0)
	created, err := repo.GetOrCreate(ctx, "gas", original, "kWh")
	require.NoError(t, err)

	checkpoint := ts(2025, time.June, 10, 0, 0)
	require.NoError(t, repo.Update(ctx, created.ID, true, original, &checkpoint))

	// A later call with a different default start date must not clobber the
	// stored profile or its checkpoint.
	got, err := repo.GetOrCreate(ctx, "gas", ts(2025, time.June, 1, 0, 0), "kWh")
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.StartDate.Equal(original))
	require.NotNil(t, got.LastSynced)
	assert.True(t, got.LastSynced.Equal(checkpoint))
}

func TestSyncProfileRepository_Update(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	profile, err := repo.GetOrCreate(ctx, "electricity", ts(2025, time.May, 1, 0, 0), "kWh")
	require.NoError(t, err)

	checkpoint := ts(2025, time.June, 15, 0, 0)
	require.NoError(t, repo.Update(ctx, profile.ID, false, profile.StartDate, &checkpoint))

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.False(t, profiles[0].IsActive)
	require.NotNil(t, profiles[0].LastSynced)
	assert.True(t, profiles[0].LastSynced.Equal(checkpoint))
}

func TestSyncProfileRepository_UpdateUnknownID(t *testing.T) {
	repo := newProfileRepo(t)

	err := repo.Update(context.Background(), 9999, true, ts(2025, time.May, 1, 0, 0), nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestSyncProfileRepository_UpdateSettingsEarlierStartResetsCheckpoint(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	start := ts(2025, time.May, 1, 0, 0)
	profile, err := repo.GetOrCreate(ctx, "electricity", start, "kWh")
	require.NoError(t, err)

	checkpoint := ts(2025, time.June, 10, 0, 0)
	require.NoError(t, repo.Update(ctx, profile.ID, true, start, &checkpoint))

	// Asking for older history invalidates the checkpoint so the gap before
	// the old start date gets downloaded.
	require.NoError(t, repo.UpdateSettings(ctx, models.ProfileSettings{
		Name:      "electricity",
		IsActive:  true,
		StartDate: ts(2025, time.March, 1, 0, 0),
	}))

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.True(t, profiles[0].StartDate.Equal(ts(2025, time.March, 1, 0, 0)))
	assert.Nil(t, profiles[0].LastSynced)
}

func TestSyncProfileRepository_UpdateSettingsLaterStartKeepsCheckpoint(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	start := ts(2025, time.May, 1, 0, 0)
	profile, err := repo.GetOrCreate(ctx, "electricity", start, "kWh")
	require.NoError(t, err)

	checkpoint := ts(2025, time.June, 10, 0, 0)
	require.NoError(t, repo.Update(ctx, profile.ID, true, start, &checkpoint))

	require.NoError(t, repo.UpdateSettings(ctx, models.ProfileSettings{
		Name:      "electricity",
		IsActive:  false,
		StartDate: ts(2025, time.June, 1, 0, 0),
	}))

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.False(t, profiles[0].IsActive)
	assert.True(t, profiles[0].StartDate.Equal(ts(2025, time.June, 1, 0, 0)))
	require.NotNil(t, profiles[0].LastSynced)
	assert.True(t, profiles[0].LastSynced.Equal(checkpoint))
}

func TestSyncProfileRepository_UpdateSettingsEqualStartKeepsCheckpoint(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	start := ts(2025, time.May, 1, 0, 0)
	profile, err := repo.GetOrCreate(ctx, "gas", start, "kWh")
	require.NoError(t, err)

	checkpoint := ts(2025, time.June, 10, 0, 0)
	require.NoError(t, repo.Update(ctx, profile.ID, true, start, &checkpoint))

	require.NoError(t, repo.UpdateSettings(ctx, models.ProfileSettings{
		Name:      "gas",
		IsActive:  true,
		StartDate: start,
	}))

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.NotNil(t, profiles[0].LastSynced)
}

func TestSyncProfileRepository_UpdateSettingsUnknownName(t *testing.T) {
	repo := newProfileRepo(t)

	err := repo.UpdateSettings(context.Background(), models.ProfileSettings{
		Name:      "water",
		IsActive:  true,
		StartDate: ts(2025, time.May, 1, 0, 0),
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestSyncProfileRepository_ListOrdersByName(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, "gas", ts(2025, time.May, 1, 0, 0), "kWh")
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, "electricity", ts(2025, time.May, 1, 0, 0), "kWh")
	require.NoError(t, err)

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "electricity", profiles[0].Name)
	assert.Equal(t, "gas", profiles[1].Name)
}

func TestSyncProfileRepository_DeleteAll(t *testing.T) {
	repo := newProfileRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, "electricity", ts(2025, time.May, 1, 0, 0), "kWh")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(ctx))

	profiles, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
