package charm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert" // Test assertions e.g. equality.
	"github.com/stretchr/testify/mock"   // Mocking for tests.

	"github.com/mintel/elasticsearch-charm/pkg/es/health" // Cluster health probing.
)

func TestCheckResult_String(t *testing.T) {
	assert.Equal(t, "OK - all good", CheckResult{ExitOK, "all good"}.String())
	assert.Equal(t, "CRITICAL - down", CheckResult{ExitCritical, "down"}.String())
	assert.Equal(t, "UNKNOWN - ?", CheckResult{42, "?"}.String())
}

func TestCharm_CheckHealth(t *testing.T) {
	t.Run("green", func(t *testing.T) {
		f, teardown := setup(t)
		defer teardown()
		f.prober.On("Check", mock.Anything).Return(health.Verdict{
			Healthy: true,
			Status:  health.StatusGreen,
			Reason:  `cluster status is "green"`,
		}).Once()

		res := f.charm.CheckHealth(context.Background())
		assert.Equal(t, ExitOK, res.Code)
		assert.Equal(t, `OK - cluster status is "green"`, res.String())
	})

	t.Run("unreachable", func(t *testing.T) {
		f, teardown := setup(t)
		defer teardown()
		f.prober.On("Check", mock.Anything).Return(health.Verdict{
			Status: health.StatusUnknown,
			Reason: "unreachable: connection refused",
		}).Once()

		res := f.charm.CheckHealth(context.Background())
		assert.Equal(t, ExitCritical, res.Code)
		assert.Equal(t, "CRITICAL - unreachable: connection refused", res.String())
	})
}

func TestCharm_CheckHealth_Deadline(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	start := time.Now()
	f.prober.On("Check", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && !deadline.After(start.Add(CheckTimeout+time.Second))
	})).Return(health.Verdict{
		Status: health.StatusUnknown,
		Reason: "unreachable: context deadline exceeded",
	}).Once()

	// The parent context has no deadline.
	res := f.charm.CheckHealth(context.Background())
	assert.Equal(t, ExitCritical, res.Code)
	f.assertExpectations(t)
}

func TestCharm_CheckService(t *testing.T) {
	tests := []struct {
		name    string
		running bool
		err     error
		want    int
	}{
		{"running", true, nil, ExitOK},
		{"stopped", false, nil, ExitCritical},
		{"error", false, errors.New("no dbus"), ExitUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, teardown := setup(t)
			defer teardown()
			hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
				_, ok := ctx.Deadline()
				return ok
			})
			f.services.On("Running", hasDeadline, DefaultServiceName).Return(tt.running, tt.err).Once()

			res := f.charm.CheckService(context.Background())
			assert.Equal(t, tt.want, res.Code)
			assert.Contains(t, res.Message, DefaultServiceName)
			f.assertExpectations(t)
		})
	}
}
