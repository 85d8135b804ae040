package services_test

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"github.com/enerscope/enerscope/internal/events"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/secrets"
	"github.com/enerscope/enerscope/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecretStore(t *testing.T) *secrets.FileStore {
	t.Helper()
	return secrets.NewFileStore(t.TempDir())
}

type recordingSink struct {
	mu     stdsync.Mutex
	events []string
}

func (s *recordingSink) Emit(name string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestProfileService_UpdateSettings(t *testing.T) {
	repos := newTestRepos(t)
	sink := &recordingSink{}
	ctx := context.Background()

	_, err := repos.Profiles.GetOrCreate(ctx, "electricity", date(2025, time.May, 1), "kWh")
	require.NoError(t, err)

	svc := services.NewProfileService(repos, sink)
	err = svc.UpdateSettings(ctx, []models.ProfileSettings{{
		Name:      "electricity",
		IsActive:  false,
		StartDate: date(2025, time.April, 1),
	}})
	require.NoError(t, err)

	profiles, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.False(t, profiles[0].IsActive)

	assert.Equal(t, []string{events.SettingsUpdated}, sink.names())
}

func TestProfileService_UpdateSettingsValidation(t *testing.T) {
	repos := newTestRepos(t)
	svc := services.NewProfileService(repos, events.Discard{})
	ctx := context.Background()

	err := svc.UpdateSettings(ctx, []models.ProfileSettings{{
		Name:      "",
		IsActive:  true,
		StartDate: date(2025, time.May, 1),
	}})
	require.Error(t, err)

	err = svc.UpdateSettings(ctx, []models.ProfileSettings{{
		Name:     "electricity",
		IsActive: true,
	}})
	require.Error(t, err)
}

func TestResetService_ClearDataKeepsCredentials(t *testing.T) {
	repos := newTestRepos(t)
	sink := &recordingSink{}
	ctx := context.Background()

	store := newSecretStore(t)
	require.NoError(t, store.Set("n3rgy_api_key", "key-123"))

	require.NoError(t, repos.Consumption[models.UtilityElectricity].Insert(ctx, []models.ConsumptionRecord{
		{Timestamp: date(2025, time.June, 1), Value: 0.5},
	}))
	_, err := repos.Profiles.GetOrCreate(ctx, "electricity", date(2025, time.May, 1), "kWh")
	require.NoError(t, err)

	svc := services.NewResetService(repos, store, sink)
	require.NoError(t, svc.ClearData(ctx))

	records, err := repos.Consumption[models.UtilityElectricity].Raw(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, records)

	profiles, err := repos.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	_, ok, err := store.Get("n3rgy_api_key")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{events.SettingsUpdated}, sink.names())
}

func TestResetService_FullResetWipesCredentials(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	store := newSecretStore(t)
	require.NoError(t, store.Set("n3rgy_api_key", "key-123"))
	require.NoError(t, store.Set("glowmarkt_secret", `{"username":"u","password":"p"}`))

	svc := services.NewResetService(repos, store, events.Discard{})
	require.NoError(t, svc.FullReset(ctx))

	for _, name := range []string{"n3rgy_api_key", "glowmarkt_secret"} {
		_, ok, err := store.Get(name)
		require.NoError(t, err)
		assert.False(t, ok, "%s should be deleted", name)
	}
}
