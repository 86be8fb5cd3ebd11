package jobs

import (
	"context"
	"time"

	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

// PriceSyncJobName is the name of the warehouse price sync job
const PriceSyncJobName = "price_sync"

// PriceSyncer runs a catalog price synchronization against the data
// warehouse. This interface allows the job to call the service without
// holding a concrete reference.
type PriceSyncer interface {
	Sync(ctx context.Context) (*service.PriceSyncResult, error)
}

// PriceSyncJob pulls supplier prices from the data warehouse and applies
// them to the material and equipment catalogs.
type PriceSyncJob struct {
	syncService PriceSyncer
	logger      *zap.Logger
	timeout     time.Duration
}

// NewPriceSyncJob creates a new price sync job.
// The timeout controls how long one sync run is allowed to take.
func NewPriceSyncJob(syncService PriceSyncer, logger *zap.Logger, timeout time.Duration) *PriceSyncJob {
	return &PriceSyncJob{
		syncService: syncService,
		logger:      logger,
		timeout:     timeout,
	}
}

// Run executes the price sync job.
// This is called by the scheduler according to the cron expression.
func (j *PriceSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting warehouse price sync job")

	result, err := j.syncService.Sync(ctx)
	if err != nil {
		j.logger.Error("warehouse price sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("warehouse price sync job completed",
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("unmatched", result.Unmatched),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterPriceSyncJob registers the price sync job with the scheduler.
// The cronExpr should be a valid cron expression with seconds field
// (e.g., "0 30 5 * * *" for 05:30 every day).
func RegisterPriceSyncJob(scheduler *Scheduler, syncService PriceSyncer, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewPriceSyncJob(syncService, logger, timeout)
	return scheduler.AddJob(PriceSyncJobName, cronExpr, job.Run)
}
