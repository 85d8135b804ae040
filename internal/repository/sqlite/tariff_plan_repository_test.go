package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
	"github.com/enerscope/enerscope/internal/repository/sqlite"
	"github.com/enerscope/enerscope/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanRepo(t *testing.T) repository.TariffPlanRepository {
	t.Helper()
	database := testutil.NewTestDB(t)
	return sqlite.NewTariffPlanRepository(database.DB, models.UtilityElectricity)
}

func TestTariffPlanRepository_UpsertAndList(t *testing.T) {
	repo := newPlanRepo(t)
	ctx := context.Background()

	plans := []models.TariffPlan{
		{
			TariffID:      "tariff-b",
			Plan:          `{"standingCharge":50.0}`,
			EffectiveDate: ts(2025, time.June, 1, 0, 0),
			DisplayName:   "Flexible",
		},
		{
			TariffID:      "tariff-a",
			Plan:          `{"standingCharge":45.0}`,
			EffectiveDate: ts(2025, time.January, 1, 0, 0),
			DisplayName:   "Fixed 12M",
		},
	}
	require.NoError(t, repo.Upsert(ctx, plans))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by effective date.
	assert.Equal(t, "tariff-a", got[0].TariffID)
	assert.Equal(t, "Fixed 12M", got[0].DisplayName)
	assert.Equal(t, "tariff-b", got[1].TariffID)
}

func TestTariffPlanRepository_UpsertReplacesByTariffID(t *testing.T) {
	repo := newPlanRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.TariffPlan{{
		TariffID:      "tariff-a",
		Plan:          `{"rate":24.5}`,
		EffectiveDate: ts(2025, time.June, 1, 0, 0),
		DisplayName:   "Old Name",
	}}))
	require.NoError(t, repo.Upsert(ctx, []models.TariffPlan{{
		TariffID:      "tariff-a",
		Plan:          `{"rate":27.0}`,
		EffectiveDate: ts(2025, time.July, 1, 0, 0),
		DisplayName:   "New Name",
	}}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `{"rate":27.0}`, got[0].Plan)
	assert.Equal(t, "New Name", got[0].DisplayName)
}

func TestTariffPlanRepository_UpsertEmptyIsNoop(t *testing.T) {
	repo := newPlanRepo(t)
	require.NoError(t, repo.Upsert(context.Background(), nil))
}

func TestTariffPlanRepository_DeleteAll(t *testing.T) {
	repo := newPlanRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.TariffPlan{{
		TariffID:      "tariff-a",
		Plan:          "{}",
		EffectiveDate: ts(2025, time.June, 1, 0, 0),
		DisplayName:   "Any",
	}}))
	require.NoError(t, repo.DeleteAll(ctx))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
