package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"essay-hub/internal/config"
	"essay-hub/internal/domain"
	"essay-hub/internal/evaluation"
	"essay-hub/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const (
	maxPromptChars       = 12000
	maxStatementChars    = 150
	classifyTemperature  = 0.3
	defaultLLMTimeout    = 60 * time.Second
	defaultLanguageLabel = "English"
)

// TextGenerator is the slice of a langchaingo model used here. The ollama,
// openai and huggingface clients all satisfy it.
type TextGenerator interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// llmEssayEvaluator implements domain.EssayEvaluator
type llmEssayEvaluator struct {
	llm TextGenerator
	cfg config.LLMConfig
}

// NewLLMEssayEvaluator wires an injected model handle into the evaluator.
func NewLLMEssayEvaluator(llm TextGenerator, cfg config.LLMConfig) domain.EssayEvaluator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLLMTimeout
	}
	return &llmEssayEvaluator{llm: llm, cfg: cfg}
}

// EvaluateEssay never returns an upstream error. A failed call yields
// evaluation.Fallback().
func (e *llmEssayEvaluator) EvaluateEssay(ctx context.Context, title, content string, language *domain.LanguageInfo) (*domain.EssayEvaluation, error) {
	l := logger.Get()
	l.Info("Evaluating essay with LLM",
		zap.String("title", title),
		zap.Int("content_length", len(content)),
		zap.String("model", e.cfg.Model))

	opts := []llms.CallOption{llms.WithTemperature(e.cfg.Temperature)}
	if e.cfg.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	raw, err := e.callLLM(ctx, buildEvaluationPrompt(title, content, language), opts...)
	if err != nil {
		l.Error("LLM evaluation failed, using fallback evaluation", zap.Error(err), zap.String("title", title))
		return evaluation.Fallback(), nil
	}

	l.Debug("Raw LLM response received", zap.String("raw_response", raw))

	result := evaluation.Parse(raw)
	l.Info("Parsed LLM evaluation",
		zap.Int("score", result.Score),
		zap.String("source", string(result.Source)),
		zap.Int("grammar_errors", len(result.GrammarErrors)))
	return result, nil
}

// ClassifyStatements asks the model for one classification line per sentence.
func (e *llmEssayEvaluator) ClassifyStatements(ctx context.Context, sentences []string) (map[int]domain.StatementClass, error) {
	if len(sentences) == 0 {
		return map[int]domain.StatementClass{}, nil
	}

	raw, err := e.callLLM(ctx, buildClassificationPrompt(sentences), llms.WithTemperature(classifyTemperature))
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	classes := evaluation.ParseClassifications(raw)
	logger.Get().Debug("Statement classification parsed",
		zap.Int("sentences", len(sentences)),
		zap.Int("classified", len(classes)))
	return classes, nil
}

func (e *llmEssayEvaluator) callLLM(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	l := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	response, err := e.llm.Call(ctx, prompt, opts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Duration("timeout", e.cfg.Timeout))
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return "", errors.New("LLM returned an empty response")
	}

	l.Debug("LLM call finished", zap.Duration("elapsed", time.Since(start)))
	return response, nil
}

func buildEvaluationPrompt(title, content string, language *domain.LanguageInfo) string {
	langName := defaultLanguageLabel
	if language != nil && language.Name != "" {
		langName = language.Name
	}
	content = truncate(content, maxPromptChars)

	return fmt.Sprintf(`You are an expert academic essay evaluator. Evaluate the essay and respond with ONLY a JSON object in the following format:
{
    "score": 0,
    "ai_detection": "Human-written",
    "grammar_errors": [{"message": "error description", "context": "quoted text", "suggestion": "fix"}],
    "grammar_rating": "Good",
    "structure": "2-3 sentences",
    "content": "2-3 sentences",
    "coherence": "2-3 sentences",
    "suggestions": ["first", "second", "third", "fourth", "fifth"],
    "overall_feedback": "2-3 sentences"
}

Essay Title: %s

Essay Content:
%s

Rules:
1. score is an integer from 0 to 100
2. ai_detection is exactly one of: Human-written, Possibly AI-assisted, Likely AI-generated
3. grammar_errors lists 3-10 specific errors; use an empty list when there are none
4. grammar_rating is exactly one of: Excellent, Good, Fair, Poor
5. suggestions holds exactly five specific, actionable items
6. Write every text field in %s, the language of the essay`, title, content, langName)
}

func buildClassificationPrompt(sentences []string) string {
	var b strings.Builder
	for i, s := range sentences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncate(s, maxStatementChars))
	}

	return fmt.Sprintf(`You are an expert in academic argument analysis. Analyze these %d statements from an academic essay.

For EACH statement, provide:
- Type: claim, evidence, transition, or conclusion
- Strength: 0.0 to 1.0

Statements:
%s
Respond EXACTLY in this format (one per line):
1: type=claim | strength=0.8
2: type=evidence | strength=0.9

Continue for all %d statements.`, len(sentences), b.String(), len(sentences))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
