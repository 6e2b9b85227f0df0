package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/classbank/class_bank_app/internal/platform/config"
	"github.com/robfig/cron/v3"
)

// PriceTicker advances stock prices by one step.
type PriceTicker interface {
	TickPrices(ctx context.Context) error
}

// MaturitySettler pays out every matured term deposit.
type MaturitySettler interface {
	SettleAllMatured(ctx context.Context) (*domain.BatchResult, error)
}

// RecruitmentCloser flips funds past their recruitment deadline to ONGOING.
type RecruitmentCloser interface {
	CloseExpiredRecruitments(ctx context.Context) (*domain.BatchResult, error)
}

// Scheduler runs the periodic market tick and settlement sweeps.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New builds the scheduler from the configured cron specs. The sweeps are
// idempotent, so a missed or doubled run is harmless.
func New(cfg *config.Config, logger *slog.Logger, market PriceTicker, savings MaturitySettler, funds RecruitmentCloser) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, logger: logger}

	if _, err := c.AddFunc(cfg.PriceTickSpec, func() {
		ctx := s.jobContext("price_tick")
		if err := market.TickPrices(ctx); err != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Price tick failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid price tick spec %q: %w", cfg.PriceTickSpec, err)
	}

	if _, err := c.AddFunc(cfg.SettlementSweepSpec, func() {
		ctx := s.jobContext("savings_sweep")
		s.reportSweep(ctx, "savings maturity sweep")(savings.SettleAllMatured(ctx))
	}); err != nil {
		return nil, fmt.Errorf("invalid settlement sweep spec %q: %w", cfg.SettlementSweepSpec, err)
	}

	if _, err := c.AddFunc(cfg.SettlementSweepSpec, func() {
		ctx := s.jobContext("fund_recruitment_sweep")
		s.reportSweep(ctx, "fund recruitment sweep")(funds.CloseExpiredRecruitments(ctx))
	}); err != nil {
		return nil, fmt.Errorf("invalid settlement sweep spec %q: %w", cfg.SettlementSweepSpec, err)
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler starting", slog.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop halts scheduling and returns a context that is done once running jobs
// complete.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) jobContext(job string) context.Context {
	return middleware.WithLogger(context.Background(), s.logger.With(slog.String("job", job)))
}

func (s *Scheduler) reportSweep(ctx context.Context, name string) func(*domain.BatchResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	return func(result *domain.BatchResult, err error) {
		if err != nil {
			logger.Error("Sweep failed", slog.String("sweep", name), slog.String("error", err.Error()))
			return
		}
		logger.Info("Sweep completed",
			slog.String("sweep", name),
			slog.Int("succeeded", len(result.Succeeded)),
			slog.Int("failed", len(result.Failed)),
		)
	}
}
