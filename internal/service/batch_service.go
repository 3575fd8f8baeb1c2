package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"essay-hub/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchLimit   = 100
	defaultBatchWorkers = 4
)

// EssayReevaluator is the part of EssayService the batch job drives.
type EssayReevaluator interface {
	ReevaluateEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error)
}

// BatchResult counts what one EvaluatePending run did.
type BatchResult struct {
	Found     int
	Evaluated int
	Failed    int
}

// BatchService finishes essays left in the evaluating state, e.g. seeded
// essays or uploads interrupted before the evaluation was stored.
type BatchService interface {
	EvaluatePending(ctx context.Context, limit, workers int) (*BatchResult, error)
}

type batchService struct {
	essayRepo   domain.EssayRepository
	reevaluator EssayReevaluator
	logger      *zap.Logger
}

func NewBatchService(essayRepo domain.EssayRepository, reevaluator EssayReevaluator, logger *zap.Logger) BatchService {
	return &batchService{
		essayRepo:   essayRepo,
		reevaluator: reevaluator,
		logger:      logger,
	}
}

// EvaluatePending evaluates up to limit pending essays with at most workers in
// flight. A failed essay is logged and counted; it does not stop the run.
func (s *batchService) EvaluatePending(ctx context.Context, limit, workers int) (*BatchResult, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	start := time.Now()

	essays, err := s.essayRepo.ListEssaysByStatus(ctx, domain.EssayStatusEvaluating, limit)
	if err != nil {
		s.logger.Error("Failed to fetch pending essays", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch pending essays: %w", err)
	}
	s.logger.Info("Starting batch evaluation", zap.Int("pending", len(essays)), zap.Int("workers", workers))

	var evaluated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, essay := range essays {
		g.Go(func() error {
			if gctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			if _, err := s.reevaluator.ReevaluateEssay(gctx, essay.UserID, essay.ID); err != nil {
				failed.Add(1)
				s.logger.Warn("Essay evaluation failed",
					zap.String("essayID", essay.ID),
					zap.String("userID", essay.UserID),
					zap.Error(err))
				return nil
			}
			evaluated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{
		Found:     len(essays),
		Evaluated: int(evaluated.Load()),
		Failed:    int(failed.Load()),
	}
	s.logger.Info("Batch evaluation finished",
		zap.Int("found", result.Found),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)))
	return result, ctx.Err()
}
