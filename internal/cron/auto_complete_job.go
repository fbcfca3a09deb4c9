package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	defaultAutoCompleteAfter = 7 * 24 * time.Hour
	defaultAutoCompleteBatch = 200
)

type orderCompleter interface {
	AutoComplete(ctx context.Context, shippedBefore time.Time, limit int) (int, error)
}

type AutoCompleteJobParams struct {
	Logger    *logger.Logger
	Orders    orderCompleter
	After     time.Duration
	BatchSize int
}

// NewAutoCompleteJob confirms delivery of orders left in SHIPPING longer than After.
func NewAutoCompleteJob(params AutoCompleteJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	after := params.After
	if after <= 0 {
		after = defaultAutoCompleteAfter
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultAutoCompleteBatch
	}
	return &autoCompleteJob{
		logg:   params.Logger,
		orders: params.Orders,
		after:  after,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type autoCompleteJob struct {
	logg   *logger.Logger
	orders orderCompleter
	after  time.Duration
	batch  int
	now    func() time.Time
}

func (j *autoCompleteJob) Name() string { return "order-auto-complete" }

func (j *autoCompleteJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.after)
	completed, err := j.orders.AutoComplete(ctx, cutoff, j.batch)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"completed": completed,
	})
	if err != nil {
		return fmt.Errorf("auto complete after %d orders: %w", completed, err)
	}
	j.logg.Info(logCtx, "shipped orders auto-completed")
	return nil
}
