package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QuoteExpiryJobName is the name of the quote expiry job
const QuoteExpiryJobName = "quote_expiry"

// QuoteExpirer marks sent quotes past their validity date as expired.
type QuoteExpirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// QuoteExpiryJob sweeps sent quotes whose validity date has passed.
type QuoteExpiryJob struct {
	quoteService QuoteExpirer
	logger       *zap.Logger
	timeout      time.Duration
}

func NewQuoteExpiryJob(quoteService QuoteExpirer, logger *zap.Logger, timeout time.Duration) *QuoteExpiryJob {
	return &QuoteExpiryJob{
		quoteService: quoteService,
		logger:       logger,
		timeout:      timeout,
	}
}

// Run executes the quote expiry sweep.
func (j *QuoteExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	expired, err := j.quoteService.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("quote expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if expired > 0 {
		j.logger.Info("quote expiry sweep completed",
			zap.Int("expired", expired),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterQuoteExpiryJob registers the quote expiry sweep with the scheduler.
func RegisterQuoteExpiryJob(scheduler *Scheduler, quoteService QuoteExpirer, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewQuoteExpiryJob(quoteService, logger, timeout)
	return scheduler.AddJob(QuoteExpiryJobName, cronExpr, job.Run)
}
