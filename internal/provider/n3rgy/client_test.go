package n3rgy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/enerscope/enerscope/internal/provider/n3rgy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Window(t *testing.T) {
	client := n3rgy.New("key")
	assert.Equal(t, provider.FixedDayWindow(7), client.Window())
	assert.Equal(t, "n3rgy", client.Name())
}

func TestClient_WindowOverride(t *testing.T) {
	client := n3rgy.New("key", n3rgy.WithWindowDays(3))
	assert.Equal(t, provider.FixedDayWindow(3), client.Window())

	// Out-of-range overrides fall back to the default.
	client = n3rgy.New("key", n3rgy.WithWindowDays(11))
	assert.Equal(t, provider.FixedDayWindow(7), client.Window())
}

func TestClient_TestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"entries":["electricity"],"resource":"/"}`))
	}))
	defer server.Close()

	client := n3rgy.New("good-key", n3rgy.WithBaseURL(server.URL))
	assert.NoError(t, client.TestConnection(context.Background()))

	client = n3rgy.New("bad-key", n3rgy.WithBaseURL(server.URL))
	assert.Error(t, client.TestConnection(context.Background()))
}

func TestClient_HasConsumption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/", r.URL.Path)
		w.Write([]byte(`{"entries":["electricity"],"resource":"/"}`))
	}))
	defer server.Close()

	client := n3rgy.New("test-key", n3rgy.WithBaseURL(server.URL))

	assert.True(t, client.HasConsumption(context.Background(), models.UtilityElectricity))
	assert.False(t, client.HasConsumption(context.Background(), models.UtilityGas))
	assert.True(t, client.HasTariffHistory(context.Background(), models.UtilityElectricity))
}

func TestClient_HasConsumptionFailedProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := n3rgy.New("bad-key", n3rgy.WithBaseURL(server.URL))
	assert.False(t, client.HasConsumption(context.Background(), models.UtilityElectricity))
}

func TestClient_Consumption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/electricity/consumption/1", r.URL.Path)
		assert.Equal(t, "202506010000", r.URL.Query().Get("start"))
		assert.Equal(t, "202506080000", r.URL.Query().Get("end"))
		w.Write([]byte(`{
			"resource": "/electricity/consumption/1",
			"start": "202506010000",
			"end": "202506080000",
			"granularity": "halfhour",
			"values": [
				{"value": 0.043, "timestamp": "2025-06-01 00:00"},
				{"value": 0.117, "timestamp": "2025-06-01 00:30"}
			],
			"unit": "kWh"
		}`))
	}))
	defer server.Close()

	client := n3rgy.New("test-key", n3rgy.WithBaseURL(server.URL))

	records, err := client.Consumption(context.Background(), models.UtilityElectricity,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), records[0].Timestamp)
	assert.InDelta(t, 0.043, records[0].Value, 1e-9)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 30, 0, 0, time.UTC), records[1].Timestamp)
}

func TestClient_ConsumptionMissingStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := n3rgy.New("test-key", n3rgy.WithBaseURL(server.URL))

	_, err := client.Consumption(context.Background(), models.UtilityGas,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var missing *provider.MissingResourceError
	assert.ErrorAs(t, err, &missing)
	assert.True(t, provider.IsTerminal(err))
}

func TestClient_ConsumptionMalformedTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"values":[{"value":0.1,"timestamp":"June the first"}]}`))
	}))
	defer server.Close()

	client := n3rgy.New("test-key", n3rgy.WithBaseURL(server.URL))

	_, err := client.Consumption(context.Background(), models.UtilityElectricity,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var malformed *provider.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestClient_ConsumptionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broken"))
	}))
	defer server.Close()

	client := n3rgy.New("test-key", n3rgy.WithBaseURL(server.URL))

	_, err := client.Consumption(context.Background(), models.UtilityElectricity,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.False(t, provider.IsTerminal(err), "transient failures must stay retryable")
}

func TestClient_TariffHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gas/tariff/1", r.URL.Path)
		w.Write([]byte(`{
			"resource": "/gas/tariff/1",
			"values": [{
				"standingCharges": [
					{"startDate": "2025-06-01", "value": 29.6},
					{"startDate": "2025-06-02 00:00", "value": 29.6}
				],
				"prices": [
					{"timestamp": "2025-06-01 00:00", "value": 6.24},
					{"timestamp": "2025-06-01 00:30", "value": 6.24}
				]
			}]
		}`))
	}))
	defer server.Close()

	client := n3rgy.New("test-key", n3rgy.WithBaseURL(server.URL))

	data, err := client.TariffHistory(context.Background(), models.UtilityGas,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, data.StandingCharges, 2)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), data.StandingCharges[0].StartDate)
	assert.InDelta(t, 29.6, data.StandingCharges[0].Pence, 1e-9)

	require.Len(t, data.UnitPrices, 2)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 30, 0, 0, time.UTC), data.UnitPrices[1].EffectiveTime)
	assert.InDelta(t, 6.24, data.UnitPrices[1].Pence, 1e-9)

	assert.Empty(t, data.Plans, "the consumer API exposes no plan documents")
}
