package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReconcileJobName is the scheduler name of the order total reconciliation
const ReconcileJobName = "order_reconcile"

// OrderReconciler repairs stored order totals that drifted from their items.
// It returns the number of orders repaired.
type OrderReconciler interface {
	ReconcileTotals(ctx context.Context) (int, error)
}

// ReconcileJob re-sums order totals of open opportunities on a schedule
type ReconcileJob struct {
	reconciler OrderReconciler
	logger     *zap.Logger
	timeout    time.Duration
}

func NewReconcileJob(reconciler OrderReconciler, logger *zap.Logger, timeout time.Duration) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run performs one bounded reconciliation pass. Errors are logged, never returned.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	repaired, err := j.reconciler.ReconcileTotals(ctx)
	if err != nil {
		j.logger.Error("order reconciliation failed",
			zap.Error(err),
			zap.Int("orders_repaired", repaired),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if repaired > 0 {
		j.logger.Warn("order totals repaired",
			zap.Int("orders_repaired", repaired),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("order reconciliation completed",
		zap.Int("orders_repaired", 0),
		zap.Duration("duration", time.Since(start)))
}

// RegisterReconcileJob adds the reconciliation job to the scheduler
func RegisterReconcileJob(scheduler *Scheduler, reconciler OrderReconciler, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewReconcileJob(reconciler, logger, timeout)
	return scheduler.AddJob(ReconcileJobName, cronExpr, job.Run)
}
