package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"essay-hub/internal/cache"
	"essay-hub/internal/config"
	"essay-hub/internal/domain"
	"essay-hub/internal/evaluation"
	"essay-hub/internal/logger"
	"essay-hub/internal/metrics"
	"essay-hub/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	maxTitleLength   = 200
	maxEssayRunes    = 100000
	defaultTitle     = "Untitled Essay"
	englishLanguage  = "en"
	essayListDefault = 50
)

// StatementsResult is the atomic statement breakdown of one essay.
type StatementsResult struct {
	EssayID     string
	Statements  []domain.Statement
	Summary     *domain.StatementSummary
	GeneratedAt *time.Time
}

// EssayService uploads essays and runs the evaluation pipeline over them.
type EssayService interface {
	UploadEssay(ctx context.Context, userID, title, fileName, content string) (*domain.Essay, error)
	ReevaluateEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error)
	GetEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error)
	ListMyEssays(ctx context.Context, userID string, limit int) ([]*domain.Essay, error)
	DeleteEssay(ctx context.Context, userID, essayID string) error
	GetStatements(ctx context.Context, userID, essayID string) (*StatementsResult, error)
	RegenerateStatements(ctx context.Context, userID, essayID string) (*StatementsResult, error)
}

type essayServiceImpl struct {
	essayRepo domain.EssayRepository
	evaluator domain.EssayEvaluator
	grammar   domain.GrammarChecker // may be nil
	analyzer  domain.TextAnalyzer
	cache     domain.Cache // may be nil
	cfg       config.CacheConfig
	sfGroup   singleflight.Group
}

func NewEssayService(
	essayRepo domain.EssayRepository,
	evaluator domain.EssayEvaluator,
	grammar domain.GrammarChecker,
	analyzer domain.TextAnalyzer,
	cache domain.Cache,
	cfg config.CacheConfig,
) EssayService {
	return &essayServiceImpl{
		essayRepo: essayRepo,
		evaluator: evaluator,
		grammar:   grammar,
		analyzer:  analyzer,
		cache:     cache,
		cfg:       cfg,
	}
}

// UploadEssay stores the essay as evaluating, evaluates it, and stores the
// result as completed.
func (s *essayServiceImpl) UploadEssay(ctx context.Context, userID, title, fileName, content string) (*domain.Essay, error) {
	content = strings.TrimSpace(content)
	title = strings.TrimSpace(title)
	if title == "" && fileName != "" {
		title = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	}
	if title == "" {
		title = defaultTitle
	}

	var errs domain.ValidationErrors
	if content == "" {
		errs = append(errs, domain.NewMissingFieldError("content"))
	} else if n := utf8.RuneCountInString(content); n > maxEssayRunes {
		errs = append(errs, domain.NewOutOfRangeError("content", n, 1, maxEssayRunes))
	}
	if n := utf8.RuneCountInString(title); n > maxTitleLength {
		errs = append(errs, domain.NewOutOfRangeError("title", n, 1, maxTitleLength))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	essay := &domain.Essay{
		UserID:      userID,
		Title:       title,
		Content:     content,
		FileName:    fileName,
		ContentHash: util.ContentHash(content),
		Status:      domain.EssayStatusEvaluating,
		UploadDate:  time.Now(),
	}
	if err := s.essayRepo.CreateEssay(ctx, essay); err != nil {
		return nil, repoError("Failed to store essay", err)
	}
	logger.Get().Info("Essay uploaded", zap.String("essayID", essay.ID), zap.String("userID", userID), zap.Int("content_length", len(content)))

	if err := s.evaluateAndStore(ctx, essay, true); err != nil {
		return nil, err
	}
	return essay, nil
}

// ReevaluateEssay bypasses the evaluation cache and overwrites the stored result.
func (s *essayServiceImpl) ReevaluateEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
	essay, err := s.ownedEssay(ctx, userID, essayID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluateAndStore(ctx, essay, false); err != nil {
		return nil, err
	}
	return essay, nil
}

func (s *essayServiceImpl) GetEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
	return s.ownedEssay(ctx, userID, essayID)
}

func (s *essayServiceImpl) ListMyEssays(ctx context.Context, userID string, limit int) ([]*domain.Essay, error) {
	if limit <= 0 {
		limit = essayListDefault
	}
	essays, err := s.essayRepo.ListEssaysByUser(ctx, userID, pageLimit(limit))
	if err != nil {
		return nil, repoError("Failed to list essays", err)
	}
	return essays, nil
}

func (s *essayServiceImpl) DeleteEssay(ctx context.Context, userID, essayID string) error {
	if _, err := s.ownedEssay(ctx, userID, essayID); err != nil {
		return err
	}
	if err := s.essayRepo.DeleteEssay(ctx, essayID); err != nil {
		return repoError("Failed to delete essay", err)
	}
	logger.Get().Info("Essay deleted", zap.String("essayID", essayID), zap.String("userID", userID))
	return nil
}

// GetStatements generates the statements on first view.
func (s *essayServiceImpl) GetStatements(ctx context.Context, userID, essayID string) (*StatementsResult, error) {
	essay, err := s.ownedEssay(ctx, userID, essayID)
	if err != nil {
		return nil, err
	}
	if essay.StatementsGeneratedAt != nil {
		return &StatementsResult{
			EssayID:     essay.ID,
			Statements:  essay.Statements,
			Summary:     essay.StatementSummary,
			GeneratedAt: essay.StatementsGeneratedAt,
		}, nil
	}
	return s.generateStatements(ctx, essay, true)
}

func (s *essayServiceImpl) RegenerateStatements(ctx context.Context, userID, essayID string) (*StatementsResult, error) {
	essay, err := s.ownedEssay(ctx, userID, essayID)
	if err != nil {
		return nil, err
	}
	return s.generateStatements(ctx, essay, false)
}

func (s *essayServiceImpl) ownedEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
	essay, err := s.essayRepo.GetEssayByID(ctx, essayID)
	if err != nil {
		return nil, repoError("Failed to load essay", err)
	}
	if essay == nil {
		return nil, domain.NewEssayNotFoundError(essayID)
	}
	if essay.UserID != userID {
		return nil, domain.NewForbiddenError("You do not have access to this essay")
	}
	return essay, nil
}

func (s *essayServiceImpl) evaluateAndStore(ctx context.Context, essay *domain.Essay, useCache bool) error {
	eval, err := s.evaluate(ctx, essay.Title, essay.Content, useCache)
	if err != nil {
		return err
	}
	eval.EssayID = essay.ID

	if err := s.essayRepo.SaveEvaluation(ctx, essay.ID, eval); err != nil {
		return repoError("Failed to store evaluation", err)
	}
	evaluatedAt := eval.EvaluatedAt
	essay.Evaluation = eval
	essay.Status = domain.EssayStatusCompleted
	essay.EvaluatedAt = &evaluatedAt
	return nil
}

// evaluate returns a private copy of the evaluation so callers can stamp it
// without touching the shared singleflight result.
func (s *essayServiceImpl) evaluate(ctx context.Context, title, content string, useCache bool) (*domain.EssayEvaluation, error) {
	lang := s.analyzer.DetectLanguage(content)
	cacheKey := cache.EvaluationKey(util.ContentHash(content), util.ContentHash(title), lang.Code)

	if useCache {
		var cached domain.EssayEvaluation
		if s.getCached(ctx, cacheKey, "evaluation", &cached) {
			return &cached, nil
		}
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		eval := s.runEvaluation(ctx, title, content, lang)
		if eval.Source != domain.SourceFallback {
			s.setCached(ctx, cacheKey, eval, s.cfg.EvaluationTTL)
		}
		return eval, nil
	})
	if err != nil {
		return nil, err
	}
	shared, ok := res.(*domain.EssayEvaluation)
	if !ok {
		return nil, domain.NewInternalError("Unexpected evaluation result", fmt.Errorf("unexpected type %T", res))
	}
	eval := *shared
	return &eval, nil
}

// runEvaluation never fails. The LLM and LanguageTool calls run concurrently
// and each degrades on its own.
func (s *essayServiceImpl) runEvaluation(ctx context.Context, title, content string, lang domain.LanguageInfo) *domain.EssayEvaluation {
	l := logger.Get()
	start := time.Now()
	stats := s.analyzer.Analyze(content)

	var (
		eval  *domain.EssayEvaluation
		check *domain.GrammarCheck
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.evaluator.EvaluateEssay(gctx, title, content, &lang)
		if err != nil || result == nil {
			l.Error("Essay evaluator failed, using fallback evaluation", zap.Error(err))
			metrics.UpstreamFailures.WithLabelValues("llm").Inc()
			result = evaluation.Fallback()
		}
		eval = result
		return nil
	})
	if s.grammar != nil {
		g.Go(func() error {
			language := ""
			if lang.Code != englishLanguage {
				language = lang.Code
			}
			result, err := s.grammar.Check(gctx, content, language)
			if err != nil {
				l.Warn("Grammar check failed, continuing without it", zap.Error(err))
				metrics.UpstreamFailures.WithLabelValues("grammar").Inc()
				return nil
			}
			check = result
			return nil
		})
	}
	_ = g.Wait()

	eval.Stats = &stats
	eval.Language = &lang
	eval.GrammarCheck = check
	if eval.EvaluatedAt.IsZero() {
		eval.EvaluatedAt = time.Now()
	}
	source := string(eval.Source)
	metrics.EvaluationsTotal.WithLabelValues(source).Inc()
	metrics.EvaluationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	metrics.EvaluationScore.Observe(float64(eval.Score))
	l.Info("Essay evaluated",
		zap.Int("score", eval.Score),
		zap.String("source", source),
		zap.String("language", lang.Code),
		zap.Duration("elapsed", time.Since(start)))
	return eval
}

type statementsPayload struct {
	Statements []domain.Statement       `json:"statements"`
	Summary    *domain.StatementSummary `json:"summary"`
}

func (s *essayServiceImpl) generateStatements(ctx context.Context, essay *domain.Essay, useCache bool) (*StatementsResult, error) {
	cacheKey := cache.StatementsKey(essay.ContentHash)

	var payload *statementsPayload
	if useCache {
		var cached statementsPayload
		if s.getCached(ctx, cacheKey, "statements", &cached) {
			payload = &cached
		}
	}
	if payload == nil {
		res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
			p := s.buildStatements(ctx, essay.Content)
			s.setCached(ctx, cacheKey, p, s.cfg.StatementsTTL)
			return p, nil
		})
		if err != nil {
			return nil, err
		}
		shared, ok := res.(*statementsPayload)
		if !ok {
			return nil, domain.NewInternalError("Unexpected statements result", fmt.Errorf("unexpected type %T", res))
		}
		payload = shared
	}

	if err := s.essayRepo.SaveStatements(ctx, essay.ID, payload.Statements, payload.Summary); err != nil {
		return nil, repoError("Failed to store statements", err)
	}
	now := time.Now()
	return &StatementsResult{
		EssayID:     essay.ID,
		Statements:  payload.Statements,
		Summary:     payload.Summary,
		GeneratedAt: &now,
	}, nil
}

// buildStatements falls back to rule-based classification when the model
// call fails.
func (s *essayServiceImpl) buildStatements(ctx context.Context, content string) *statementsPayload {
	sentences := evaluation.CandidateSentences(s.analyzer.Segment(content))
	texts := make([]string, len(sentences))
	for i, sentence := range sentences {
		texts[i] = sentence.Text
	}

	classes, err := s.evaluator.ClassifyStatements(ctx, texts)
	if err != nil {
		logger.Get().Warn("Statement classification failed, using rules", zap.Error(err))
		metrics.UpstreamFailures.WithLabelValues("llm").Inc()
		classes = nil
	}

	statements := evaluation.BuildStatements(sentences, classes)
	return &statementsPayload{Statements: statements, Summary: evaluation.Summarize(statements)}
}

func (s *essayServiceImpl) getCached(ctx context.Context, key, cacheType string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Get().Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	return true
}

func (s *essayServiceImpl) setCached(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.Get().Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), ttl); err != nil {
		logger.Get().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
