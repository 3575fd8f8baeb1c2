package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"essay-hub/internal/domain"
)

var (
	ErrNoJSONObject = errors.New("no JSON object in response")
	ErrMissingScore = errors.New("structured response has no score")
)

// structuredResponse mirrors the JSON object requested in the prompt.
type structuredResponse struct {
	Score           *flexibleScore    `json:"score"`
	AIDetection     string            `json:"ai_detection"`
	GrammarErrors   []structuredError `json:"grammar_errors"`
	GrammarRating   string            `json:"grammar_rating"`
	Structure       string            `json:"structure"`
	Content         string            `json:"content"`
	Coherence       string            `json:"coherence"`
	Suggestions     []string          `json:"suggestions"`
	OverallFeedback string            `json:"overall_feedback"`
}

type structuredError struct {
	Message      string   `json:"message"`
	Context      string   `json:"context"`
	Suggestion   string   `json:"suggestion"`
	Replacements []string `json:"replacements"`
}

// flexibleScore accepts 87, 87.5 and "87 out of 100".
type flexibleScore int

func (s *flexibleScore) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = flexibleScore(math.Round(math.Max(0, math.Min(100, f))))
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	n, ok := firstInt(str)
	if !ok {
		return fmt.Errorf("score: no number in %q", str)
	}
	*s = flexibleScore(clampScore(n))
	return nil
}

// ParseStructured decodes the JSON object between the first '{' and the last
// '}' and applies the same normalisation as ParseText.
func ParseStructured(raw string) (*domain.EssayEvaluation, error) {
	cleaned := StripThinking(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, ErrNoJSONObject
	}

	var resp structuredResponse
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("decode structured evaluation: %w", err)
	}
	if resp.Score == nil {
		return nil, ErrMissingScore
	}

	eval := defaults()
	eval.Source = domain.SourceStructured
	eval.Score = int(*resp.Score)
	if resp.AIDetection != "" {
		eval.AIDetection, eval.AIScore = mapAILabel(resp.AIDetection)
	}
	if resp.GrammarRating != "" {
		eval.GrammarRating = normalizeRating(resp.GrammarRating)
	}
	eval.Structure = orDefault(resp.Structure, DefaultStructure)
	eval.Content = orDefault(resp.Content, DefaultContent)
	eval.Coherence = orDefault(resp.Coherence, DefaultCoherence)
	eval.OverallFeedback = strings.TrimSpace(resp.OverallFeedback)

	eval.TotalGrammarErrors = len(resp.GrammarErrors)
	errs := resp.GrammarErrors
	if len(errs) > domain.MaxGrammarErrors {
		errs = errs[:domain.MaxGrammarErrors]
	}
	for _, e := range errs {
		msg := strings.TrimSpace(e.Message)
		if msg == "" || noErrorsPattern.MatchString(msg) {
			continue
		}
		ge := domain.GrammarError{Message: msg, Context: e.Context, Replacements: []string{}}
		if ge.Context == "" {
			if m := quotedPattern.FindStringSubmatch(msg); m != nil {
				ge.Context = m[1]
			}
		}
		switch {
		case len(e.Replacements) > 0:
			ge.Replacements = e.Replacements
		case strings.TrimSpace(e.Suggestion) != "":
			ge.Replacements = []string{strings.TrimSpace(e.Suggestion)}
		}
		eval.GrammarErrors = append(eval.GrammarErrors, ge)
	}

	for _, s := range resp.Suggestions {
		eval.Suggestions = appendSuggestion(eval.Suggestions, s)
		if len(eval.Suggestions) == domain.MaxSuggestions {
			break
		}
	}
	return eval, nil
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
