package mocks

import (
	"context"

	"github.com/stretchr/testify/mock" // Mocking for tests.

	"github.com/mintel/elasticsearch-charm/internal/pkg/shell"
)

// Runner is a mock type for the shell.Runner type.
// Expectations receive the program arguments as a single []string.
type Runner struct {
	mock.Mock
}

// Run provides a mock function with given fields: ctx, name, args
func (m *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if args == nil {
		args = []string{}
	}
	ret := m.Called(ctx, name, args)

	var out []byte
	if rf, ok := ret.Get(0).(func(context.Context, string, []string) []byte); ok {
		out = rf(ctx, name, args)
	} else if ret.Get(0) != nil {
		out = ret.Get(0).([]byte)
	}
	return out, ret.Error(1)
}

var _ shell.Runner = (*Runner)(nil)
