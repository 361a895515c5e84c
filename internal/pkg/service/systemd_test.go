package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/dbus" // systemd D-Bus API.
	"github.com/stretchr/testify/assert"    // Test assertions e.g. equality.
	"github.com/stretchr/testify/mock"      // Mocking for tests.

	"github.com/mintel/elasticsearch-charm/internal/pkg/testutil" // Testing utilities.
)

// fakeConn is a mock DBusConn. Jobs report the result
// passed to Return as the job's third return value.
type fakeConn struct {
	mock.Mock
}

func (c *fakeConn) job(method, name, mode string, ch chan<- string) (int, error) {
	ret := c.MethodCalled(method, name, mode)
	if result := ret.String(2); result != "" {
		ch <- result
	}
	return ret.Int(0), ret.Error(1)
}

func (c *fakeConn) StartUnitContext(_ context.Context, name, mode string, ch chan<- string) (int, error) {
	return c.job("StartUnitContext", name, mode, ch)
}

func (c *fakeConn) StopUnitContext(_ context.Context, name, mode string, ch chan<- string) (int, error) {
	return c.job("StopUnitContext", name, mode, ch)
}

func (c *fakeConn) RestartUnitContext(_ context.Context, name, mode string, ch chan<- string) (int, error) {
	return c.job("RestartUnitContext", name, mode, ch)
}

func (c *fakeConn) ListUnitsByNamesContext(_ context.Context, units []string) ([]dbus.UnitStatus, error) {
	ret := c.Called(units)
	return ret.Get(0).([]dbus.UnitStatus), ret.Error(1)
}

func (c *fakeConn) Close() {}

func newTestSystemd(t *testing.T, conn *fakeConn) (*Systemd, func()) {
	logger, teardown := testutil.TestLogger(t)
	return NewSystemdWithDialer(logger, func(context.Context) (DBusConn, error) {
		return conn, nil
	}), teardown
}

func TestSystemd_Start(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		conn := &fakeConn{}
		conn.Test(t)
		conn.On("StartUnitContext", "elasticsearch.service", "replace").Return(1, nil, "done").Once()
		s, teardown := newTestSystemd(t, conn)
		defer teardown()

		assert.NoError(t, s.Start(context.Background(), "elasticsearch"))
		conn.AssertExpectations(t)
	})

	t.Run("failed", func(t *testing.T) {
		conn := &fakeConn{}
		conn.Test(t)
		conn.On("StartUnitContext", "elasticsearch.service", "replace").Return(1, nil, "failed").Once()
		s, teardown := newTestSystemd(t, conn)
		defer teardown()

		err := s.Start(context.Background(), "elasticsearch")
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), `"failed"`)
		}
		conn.AssertExpectations(t)
	})

	t.Run("request-error", func(t *testing.T) {
		conn := &fakeConn{}
		conn.Test(t)
		conn.On("StartUnitContext", "elasticsearch.service", "replace").Return(0, errors.New("no such unit"), "").Once()
		s, teardown := newTestSystemd(t, conn)
		defer teardown()

		assert.Error(t, s.Start(context.Background(), "elasticsearch"))
		conn.AssertExpectations(t)
	})

	t.Run("timeout", func(t *testing.T) {
		conn := &fakeConn{}
		conn.Test(t)
		// The job never finishes.
		conn.On("StartUnitContext", "elasticsearch.service", "replace").Return(1, nil, "").Once()
		s, teardown := newTestSystemd(t, conn)
		defer teardown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := s.Start(ctx, "elasticsearch")
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		conn.AssertExpectations(t)
	})
}

func TestSystemd_StopRestart(t *testing.T) {
	conn := &fakeConn{}
	conn.Test(t)
	conn.On("StopUnitContext", "nagios-nrpe-server.service", "replace").Return(1, nil, "done").Once()
	conn.On("RestartUnitContext", "nagios-nrpe-server.service", "replace").Return(2, nil, "done").Once()
	s, teardown := newTestSystemd(t, conn)
	defer teardown()

	u := NewUnit(s, "nagios-nrpe-server")
	assert.NoError(t, u.Stop(context.Background()))
	assert.NoError(t, u.Restart(context.Background()))
	conn.AssertExpectations(t)
}

func TestSystemd_Running(t *testing.T) {
	tests := []struct {
		name   string
		units  []dbus.UnitStatus
		expect bool
	}{
		{
			name:   "active",
			units:  []dbus.UnitStatus{{Name: "elasticsearch.service", LoadState: "loaded", ActiveState: "active"}},
			expect: true,
		},
		{
			name:   "inactive",
			units:  []dbus.UnitStatus{{Name: "elasticsearch.service", LoadState: "loaded", ActiveState: "inactive"}},
			expect: false,
		},
		{
			name:   "not-found",
			units:  []dbus.UnitStatus{{Name: "elasticsearch.service", LoadState: "not-found", ActiveState: "inactive"}},
			expect: false,
		},
		{
			name:   "missing",
			units:  []dbus.UnitStatus{},
			expect: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			conn.Test(t)
			conn.On("ListUnitsByNamesContext", []string{"elasticsearch.service"}).Return(tt.units, nil).Once()
			s, teardown := newTestSystemd(t, conn)
			defer teardown()

			running, err := NewUnit(s, "elasticsearch").Running(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, tt.expect, running)
			conn.AssertExpectations(t)
		})
	}
}

func TestUnitName(t *testing.T) {
	assert.Equal(t, "elasticsearch.service", unitName("elasticsearch"))
	assert.Equal(t, "srv-elasticsearch.mount", unitName("srv-elasticsearch.mount"))
}
