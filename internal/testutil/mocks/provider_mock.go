package mocks

import (
	"context"
	"time"

	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/provider"
	"github.com/stretchr/testify/mock"
)

// MockDataProvider is a mock implementation of provider.DataProvider
type MockDataProvider struct {
	mock.Mock
}

func (m *MockDataProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDataProvider) Window() provider.WindowPolicy {
	args := m.Called()
	return args.Get(0).(provider.WindowPolicy)
}

func (m *MockDataProvider) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDataProvider) HasConsumption(ctx context.Context, utility models.Utility) bool {
	args := m.Called(ctx, utility)
	return args.Bool(0)
}

func (m *MockDataProvider) Consumption(ctx context.Context, utility models.Utility, start, end time.Time) ([]models.ConsumptionRecord, error) {
	args := m.Called(ctx, utility, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConsumptionRecord), args.Error(1)
}

func (m *MockDataProvider) HasTariffHistory(ctx context.Context, utility models.Utility) bool {
	args := m.Called(ctx, utility)
	return args.Bool(0)
}

func (m *MockDataProvider) TariffHistory(ctx context.Context, utility models.Utility, start, end time.Time) (*models.TariffData, error) {
	args := m.Called(ctx, utility, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TariffData), args.Error(1)
}
