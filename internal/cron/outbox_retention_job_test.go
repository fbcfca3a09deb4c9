package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestOutboxRetentionJobDeletesPublishedRows(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-outboxRetention); !repo.lastCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.lastCutoff)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected delete called once, got %d", repo.deleteCalls)
	}
	if repo.parkedCalls != 0 {
		t.Fatalf("parked rows should not be listed without max attempts")
	}
}

func TestOutboxRetentionJobListsParkedRows(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{parked: []models.OutboxEvent{{ID: uuid.New(), AttemptCount: 10}}}
	job := newOutboxRetentionJob(t, repo, 10)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.parkedCalls != 1 || repo.maxAttempts != 10 {
		t.Fatalf("expected parked lookup with max attempts 10, got calls=%d attempts=%d", repo.parkedCalls, repo.maxAttempts)
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{err: errors.New("boom")}
	job := newOutboxRetentionJob(t, repo, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo, maxAttempts int) *outboxRetentionJob {
	t.Helper()
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:      logger.Nop(),
		DB:          outboxRetentionTxRunner{},
		Repository:  repo,
		MaxAttempts: maxAttempts,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := jobIface.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeOutboxRetentionRepo struct {
	lastCutoff  time.Time
	deleteCalls int
	parkedCalls int
	maxAttempts int
	parked      []models.OutboxEvent
	err         error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(_ *gorm.DB, cutoff time.Time) (int64, error) {
	f.deleteCalls++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func (f *fakeOutboxRetentionRepo) ListParked(_ *gorm.DB, maxAttempts, _ int) ([]models.OutboxEvent, error) {
	f.parkedCalls++
	f.maxAttempts = maxAttempts
	return f.parked, nil
}

type outboxRetentionTxRunner struct{}

func (outboxRetentionTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
