package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/storefront/internal/catalog"
	"github.com/mamadbah2/storefront/internal/config"
)

// SweepResult lists the catalog entries that can no longer be sold.
type SweepResult struct {
	Expired    []string
	OutOfStock []string
}

// Scheduler periodically sweeps the catalog for expired and sold-out products.
type Scheduler struct {
	cron    *cron.Cron
	catalog *catalog.Catalog
	spec    string
	logger  *zap.Logger
	now     func() time.Time
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.SchedulerConfig, cat *catalog.Catalog, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		catalog: cat,
		spec:    cfg.ExpirySweepCron,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Start registers the sweep and starts the cron engine.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("expiry_sweep", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.runSweep); err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Sweep inspects every catalog product at now.
func (s *Scheduler) Sweep(now time.Time) SweepResult {
	var result SweepResult
	for _, product := range s.catalog.All() {
		if product.IsExpiredAt(now) {
			result.Expired = append(result.Expired, product.Name())
		}
		if product.Quantity() == 0 {
			result.OutOfStock = append(result.OutOfStock, product.Name())
		}
	}
	return result
}

func (s *Scheduler) runSweep() {
	result := s.Sweep(s.now())

	for _, name := range result.Expired {
		s.logger.Warn("product expired", zap.String("product", name))
	}
	for _, name := range result.OutOfStock {
		s.logger.Info("product out of stock", zap.String("product", name))
	}
	s.logger.Debug("expiry sweep finished", zap.Int("expired", len(result.Expired)), zap.Int("out_of_stock", len(result.OutOfStock)))
}
