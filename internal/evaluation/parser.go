// Package evaluation turns raw text-generation output into a domain.EssayEvaluation.
//
// The model is asked for a JSON object. When it answers with the labelled
// section layout instead (SCORE:, AI DETECTION:, ...), ParseText recovers the
// same fields line by line.
package evaluation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"essay-hub/internal/domain"
)

const (
	DefaultStructure = "The essay demonstrates basic organizational structure with clear paragraphs."
	DefaultContent   = "The content addresses the topic with relevant points and examples."
	DefaultCoherence = "The ideas flow logically with appropriate transitions between sections."
	DefaultFeedback  = "Automated feedback is temporarily unavailable. The scores shown are neutral defaults."
)

type section int

const (
	sectionNone section = iota
	sectionGrammarErrors
	sectionStructure
	sectionContent
	sectionCoherence
	sectionSuggestions
	sectionFeedback
)

var (
	// The uppercase header may appear anywhere in the line: after a list
	// number, a lead-in word, '#' or markdown emphasis.
	headerPattern = regexp.MustCompile(`^.*?\b(SCORE|AI DETECTION|GRAMMAR ERRORS|GRAMMAR RATING|STRUCTURE|CONTENT QUALITY|CONTENT|COHERENCE|SUGGESTIONS|OVERALL FEEDBACK)[*_\s]*:[*_\s]*(.*)$`)

	firstIntPattern     = regexp.MustCompile(`\d+`)
	noErrorsPattern     = regexp.MustCompile(`(?i)^\W*no\b.*\b(errors?|issues?)\b`)
	errorBulletPattern  = regexp.MustCompile(`^[\s\-•*]*(\d+[.)])?\s*`)
	listMarkerPattern   = regexp.MustCompile(`^[\d.\-*)]+\s*`)
	quotedPattern       = regexp.MustCompile(`["“]([^"”]*)["”]`)
	suggestionPrefix    = regexp.MustCompile(`(?i)^suggestion\s*:\s*`)
	thinkBlockPattern   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	trailingEmphasisSet = "*_ "
)

// ParseText scans a labelled free-text response. Absent sections keep their
// neutral defaults; it never fails.
func ParseText(response string) *domain.EssayEvaluation {
	eval := defaults()
	eval.Source = domain.SourceText

	var (
		current                   = sectionNone
		rawErrors                 []string
		structure, content        []string
		coherence, feedback       []string
		suggestions               = []string{}
		ratingSeen, aiSeen, score bool
	)

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			rest := strings.TrimSpace(strings.TrimRight(m[2], trailingEmphasisSet))
			switch m[1] {
			case "SCORE":
				if !score {
					if n, ok := firstInt(rest); ok {
						eval.Score = clampScore(n)
						score = true
					}
				}
				current = sectionNone
			case "AI DETECTION":
				if !aiSeen {
					eval.AIDetection, eval.AIScore = mapAILabel(rest)
					aiSeen = true
				}
				current = sectionNone
			case "GRAMMAR ERRORS":
				if len(rest) > 10 {
					rawErrors = append(rawErrors, rest)
				}
				current = sectionGrammarErrors
			case "GRAMMAR RATING":
				if !ratingSeen {
					eval.GrammarRating = normalizeRating(rest)
					ratingSeen = true
				}
				current = sectionNone
			case "STRUCTURE":
				structure = appendNonEmpty(structure, rest)
				current = sectionStructure
			case "CONTENT QUALITY", "CONTENT":
				content = appendNonEmpty(content, rest)
				current = sectionContent
			case "COHERENCE":
				coherence = appendNonEmpty(coherence, rest)
				current = sectionCoherence
			case "SUGGESTIONS":
				suggestions = appendSuggestion(suggestions, rest)
				current = sectionSuggestions
			case "OVERALL FEEDBACK":
				feedback = appendNonEmpty(feedback, rest)
				current = sectionFeedback
			}
			continue
		}

		switch current {
		case sectionGrammarErrors:
			rawErrors = append(rawErrors, line)
		case sectionStructure:
			structure = append(structure, line)
		case sectionContent:
			content = append(content, line)
		case sectionCoherence:
			coherence = append(coherence, line)
		case sectionSuggestions:
			suggestions = appendSuggestion(suggestions, line)
		case sectionFeedback:
			feedback = append(feedback, line)
		}
	}

	eval.TotalGrammarErrors = len(rawErrors)
	eval.GrammarErrors = formatGrammarErrors(rawErrors)
	eval.Structure = joinOr(structure, DefaultStructure)
	eval.Content = joinOr(content, DefaultContent)
	eval.Coherence = joinOr(coherence, DefaultCoherence)
	eval.OverallFeedback = strings.Join(feedback, " ")
	if len(suggestions) > domain.MaxSuggestions {
		suggestions = suggestions[:domain.MaxSuggestions]
	}
	eval.Suggestions = suggestions
	return eval
}

// Parse tries the structured JSON form first and falls back to ParseText.
func Parse(raw string) *domain.EssayEvaluation {
	cleaned := StripThinking(raw)
	if eval, err := ParseStructured(cleaned); err == nil {
		return eval
	}
	return ParseText(cleaned)
}

// Fallback is the evaluation used when the upstream call fails outright.
func Fallback() *domain.EssayEvaluation {
	eval := defaults()
	eval.Structure = DefaultStructure
	eval.Content = DefaultContent
	eval.Coherence = DefaultCoherence
	eval.OverallFeedback = DefaultFeedback
	eval.Source = domain.SourceFallback
	return eval
}

// StripThinking removes <think> blocks some reasoning models prepend.
func StripThinking(raw string) string {
	return strings.TrimSpace(thinkBlockPattern.ReplaceAllString(raw, ""))
}

func defaults() *domain.EssayEvaluation {
	return &domain.EssayEvaluation{
		Score:         domain.DefaultScore,
		GrammarRating: domain.GrammarGood,
		AIDetection:   domain.AILabelHuman,
		AIScore:       0.95,
		Suggestions:   []string{},
		GrammarErrors: []domain.GrammarError{},
		EvaluatedAt:   time.Now(),
	}
}

func firstInt(s string) (int, bool) {
	m := firstIntPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		// more digits than an int holds
		return 100, true
	}
	return n, true
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func mapAILabel(text string) (domain.AILabel, float64) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "human"):
		return domain.AILabelHuman, 0.95
	case strings.Contains(t, "assisted"):
		return domain.AILabelAssisted, 0.5
	case strings.Contains(t, "generated"):
		return domain.AILabelGenerated, 0.1
	}
	return domain.AILabelHuman, 0.95
}

func normalizeRating(text string) domain.GrammarRating {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "excellent"):
		return domain.GrammarExcellent
	case strings.Contains(t, "good"):
		return domain.GrammarGood
	case strings.Contains(t, "fair"):
		return domain.GrammarFair
	case strings.Contains(t, "poor"):
		return domain.GrammarPoor
	}
	return domain.GrammarGood
}

// formatGrammarErrors keeps the first MaxGrammarErrors raw lines, drops
// "no errors found" style lines and splits the rest on the arrow delimiter.
func formatGrammarErrors(raw []string) []domain.GrammarError {
	if len(raw) > domain.MaxGrammarErrors {
		raw = raw[:domain.MaxGrammarErrors]
	}
	out := make([]domain.GrammarError, 0, len(raw))
	for _, line := range raw {
		if noErrorsPattern.MatchString(line) {
			continue
		}
		out = append(out, splitGrammarError(line))
	}
	return out
}

func splitGrammarError(line string) domain.GrammarError {
	clean := strings.TrimSpace(errorBulletPattern.ReplaceAllString(line, ""))

	message, suggestion := clean, ""
	if i := strings.Index(clean, "→"); i >= 0 {
		message, suggestion = clean[:i], clean[i+len("→"):]
	} else if i := strings.Index(clean, "->"); i >= 0 {
		message, suggestion = clean[:i], clean[i+len("->"):]
	}
	message = strings.TrimSpace(message)
	suggestion = strings.TrimSpace(suggestionPrefix.ReplaceAllString(strings.TrimSpace(suggestion), ""))

	ge := domain.GrammarError{Message: message, Replacements: []string{}}
	if m := quotedPattern.FindStringSubmatch(message); m != nil {
		ge.Context = m[1]
	}
	if suggestion != "" {
		ge.Replacements = []string{suggestion}
	}
	return ge
}

func appendSuggestion(list []string, line string) []string {
	cleaned := strings.TrimSpace(listMarkerPattern.ReplaceAllString(line, ""))
	if len(cleaned) <= 5 {
		return list
	}
	return append(list, cleaned)
}

func appendNonEmpty(list []string, s string) []string {
	if s == "" {
		return list
	}
	return append(list, s)
}

func joinOr(parts []string, fallback string) string {
	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return fallback
	}
	return joined
}
