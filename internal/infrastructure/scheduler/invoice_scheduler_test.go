package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appbilling "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	periods []billing.Period
	err     error
}

func (g *fakeGenerator) GenerateScheduled(_ context.Context, period billing.Period) (*appbilling.GenerateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.periods = append(g.periods, period)
	if g.err != nil {
		return nil, g.err
	}
	return &appbilling.GenerateResult{Period: period, Created: 2}, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.periods)
}

func TestNewInvoiceScheduler(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := NewInvoiceScheduler(InvoiceSchedulerConfig{}, &fakeGenerator{}, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultGenerateCron, s.config.Spec)
		assert.Equal(t, time.UTC, s.config.Location)
		assert.Equal(t, defaultJobTimeout, s.config.JobTimeout)
	})

	t.Run("rejects malformed spec", func(t *testing.T) {
		_, err := NewInvoiceScheduler(InvoiceSchedulerConfig{Spec: "every tuesday"}, &fakeGenerator{}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestInvoiceScheduler_RunOnce(t *testing.T) {
	t.Run("uses the current month in the schedule location", func(t *testing.T) {
		gen := &fakeGenerator{}
		loc := time.FixedZone("UTC+10", 10*60*60)
		s, err := NewInvoiceScheduler(InvoiceSchedulerConfig{Location: loc}, gen, nil)
		require.NoError(t, err)
		// 2024-08-31 20:00 UTC is already September in UTC+10
		s.now = func() time.Time { return time.Date(2024, time.August, 31, 20, 0, 0, 0, time.UTC) }

		result, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		require.Len(t, gen.periods, 1)
		assert.Equal(t, "2024-09", gen.periods[0].String())
	})

	t.Run("propagates generator errors", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("db down")}
		s, err := NewInvoiceScheduler(InvoiceSchedulerConfig{}, gen, nil)
		require.NoError(t, err)

		_, err = s.RunOnce(context.Background())
		assert.EqualError(t, err, "db down")
	})
}

func TestInvoiceScheduler_StartStop(t *testing.T) {
	gen := &fakeGenerator{}
	s, err := NewInvoiceScheduler(InvoiceSchedulerConfig{Spec: "@every 1s"}, gen, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrAlreadyRunning)

	assert.Eventually(t, func() bool { return gen.calls() > 0 }, 5*time.Second, 50*time.Millisecond)
	assert.False(t, s.NextRun().IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
