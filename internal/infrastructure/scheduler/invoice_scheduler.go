// Package scheduler runs recurring background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	appbilling "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultGenerateCron runs generation five minutes past midnight on the first of every month
const DefaultGenerateCron = "5 0 1 * *"

const defaultJobTimeout = 10 * time.Minute

// InvoiceGenerator creates the invoices of a period for every active tenancy
type InvoiceGenerator interface {
	GenerateScheduled(ctx context.Context, period billing.Period) (*appbilling.GenerateResult, error)
}

// InvoiceSchedulerConfig holds the schedule of monthly invoice generation
type InvoiceSchedulerConfig struct {
	// Spec is a standard five-field cron expression evaluated in Location
	Spec       string
	Location   *time.Location
	JobTimeout time.Duration
}

// InvoiceScheduler generates each month's invoices on a cron schedule
type InvoiceScheduler struct {
	config    InvoiceSchedulerConfig
	generator InvoiceGenerator
	logger    *zap.Logger
	cron      *cron.Cron
	entryID   cron.EntryID
	now       func() time.Time

	mu      sync.Mutex
	running bool
}

// NewInvoiceScheduler validates the schedule and registers the generation job
func NewInvoiceScheduler(config InvoiceSchedulerConfig, generator InvoiceGenerator, logger *zap.Logger) (*InvoiceScheduler, error) {
	if config.Spec == "" {
		config.Spec = DefaultGenerateCron
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.JobTimeout == 0 {
		config.JobTimeout = defaultJobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &InvoiceScheduler{
		config:    config,
		generator: generator,
		logger:    logger,
		cron:      cron.New(cron.WithLocation(config.Location)),
		now:       time.Now,
	}
	id, err := s.cron.AddFunc(config.Spec, s.runJob)
	if err != nil {
		return nil, fmt.Errorf("%w: cron %q: %v", ErrInvalidConfig, config.Spec, err)
	}
	s.entryID = id
	return s, nil
}

// Start begins firing the schedule in the background
func (s *InvoiceScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.cron.Start()

	s.logger.Info("Invoice scheduler started",
		zap.String("spec", s.config.Spec),
		zap.String("location", s.config.Location.String()),
		zap.Time("next_run", s.NextRun()))
	return nil
}

// Stop halts the schedule and waits for a running job until ctx is done
func (s *InvoiceScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Invoice scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun returns when the generation job fires next. Zero before Start.
func (s *InvoiceScheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// RunOnce generates invoices for the period containing the current time
func (s *InvoiceScheduler) RunOnce(ctx context.Context) (*appbilling.GenerateResult, error) {
	period := billing.PeriodOf(s.now().In(s.config.Location))
	result, err := s.generator.GenerateScheduled(ctx, period)
	if err != nil {
		s.logger.Error("Scheduled invoice generation failed",
			zap.String("period", period.String()),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("Scheduled invoice generation finished",
		zap.String("period", period.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *InvoiceScheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.JobTimeout)
	defer cancel()
	_, _ = s.RunOnce(ctx)
}
