package mocks

import (
	"context"

	"github.com/stretchr/testify/mock" // Mocking for tests.

	"github.com/mintel/elasticsearch-charm/internal/pkg/service"
)

// Manager is a mock type for the service.Manager type.
type Manager struct {
	mock.Mock
}

// Start provides a mock function with given fields: ctx, name
func (m *Manager) Start(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Stop provides a mock function with given fields: ctx, name
func (m *Manager) Stop(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Restart provides a mock function with given fields: ctx, name
func (m *Manager) Restart(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// Running provides a mock function with given fields: ctx, name
func (m *Manager) Running(ctx context.Context, name string) (bool, error) {
	ret := m.Called(ctx, name)
	return ret.Bool(0), ret.Error(1)
}

var _ service.Manager = (*Manager)(nil)
