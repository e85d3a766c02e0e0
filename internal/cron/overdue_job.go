package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/debttrack/debttrack-backend/pkg/logger"
)

type overdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

// OverdueSweepJobParams configures the scheduled overdue stamping work.
type OverdueSweepJobParams struct {
	Logger *logger.Logger
	Debts  overdueSweeper
}

type overdueSweepJob struct {
	logg  *logger.Logger
	debts overdueSweeper
	now   func() time.Time
}

// NewOverdueSweepJob constructs the job that stamps past-due pending debts
// as OVERDUE.
func NewOverdueSweepJob(params OverdueSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Debts == nil {
		return nil, fmt.Errorf("debts service required")
	}
	return &overdueSweepJob{
		logg:  params.Logger,
		debts: params.Debts,
		now:   time.Now,
	}, nil
}

func (j *overdueSweepJob) Name() string { return "overdue-sweep" }

func (j *overdueSweepJob) Run(ctx context.Context) error {
	updated, err := j.debts.SweepOverdue(ctx, j.now().UTC())
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": updated})
	if err != nil {
		j.logg.Error(logCtx, "overdue sweep finished with errors", err)
		return fmt.Errorf("overdue sweep: %w", err)
	}
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}
