package evaluation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"essay-hub/internal/domain"
)

const (
	minStatementWords = 3
	defaultStrength   = 0.5
	// entity links look this many statements ahead
	entityLinkWindow = 2
)

var (
	classificationLine = regexp.MustCompile(`(?im)^\s*(\d+)\s*[:.)]\s*type\s*=\s*([a-z]+)\s*\|\s*strength\s*=\s*([\d.]+)`)
	citationPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`\(\d{4}\)`),
		regexp.MustCompile(`\[\d+\]`),
		regexp.MustCompile(`\([^)]*et al[^)]*\)`),
	}
	discourseMarker = regexp.MustCompile(`(?i)\b(therefore|however|this|thus)\b`)

	conclusionCues = []string{"therefore", "thus", "in conclusion", "hence"}
	evidenceCues   = []string{"according to", "research shows", "study"}
	transitionCues = []string{"however", "moreover", "furthermore"}
)

// ParseClassifications reads "N: type=<t> | strength=<s>" lines. Unknown types
// and unparsable strengths are skipped so the caller falls back to rules.
func ParseClassifications(response string) map[int]domain.StatementClass {
	out := make(map[int]domain.StatementClass)
	for _, m := range classificationLine.FindAllStringSubmatch(StripThinking(response), -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		typ := domain.StatementType(strings.ToLower(m[2]))
		switch typ {
		case domain.StatementClaim, domain.StatementEvidence, domain.StatementTransition, domain.StatementConclusion:
		default:
			continue
		}
		strength, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		out[idx] = domain.StatementClass{Type: typ, Strength: math.Max(0, math.Min(1, strength))}
	}
	return out
}

// ClassifyByRule is used for sentences the model did not classify.
func ClassifyByRule(text string) domain.StatementType {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, conclusionCues):
		return domain.StatementConclusion
	case containsAny(lower, evidenceCues):
		return domain.StatementEvidence
	case containsAny(lower, transitionCues):
		return domain.StatementTransition
	}
	return domain.StatementClaim
}

// CandidateSentences keeps the sentences long enough to carry a statement.
func CandidateSentences(sentences []domain.Sentence) []domain.Sentence {
	out := make([]domain.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if len(strings.Fields(s.Text)) >= minStatementWords {
			out = append(out, s)
		}
	}
	return out
}

// BuildStatements turns candidate sentences into statements. classes is keyed
// by 1-based position in sentences.
func BuildStatements(sentences []domain.Sentence, classes map[int]domain.StatementClass) []domain.Statement {
	statements := make([]domain.Statement, 0, len(sentences))
	for i, s := range sentences {
		text := strings.TrimSpace(s.Text)
		st := domain.Statement{
			ID:          fmt.Sprintf("stmt_%d", i),
			Text:        text,
			Position:    i,
			WordCount:   len(strings.Fields(text)),
			HasCitation: HasCitation(text),
			Complexity:  Complexity(text),
			Entities:    s.Entities,
			Links:       []string{},
		}
		if st.Entities == nil {
			st.Entities = []domain.Entity{}
		}
		if c, ok := classes[i+1]; ok {
			st.Type, st.Strength = c.Type, c.Strength
		} else {
			st.Type, st.Strength = ClassifyByRule(text), defaultStrength
		}
		statements = append(statements, st)
	}
	linkStatements(statements)
	return statements
}

func HasCitation(text string) bool {
	for _, p := range citationPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Complexity is min(1, words/30 + avgWordLen/20) rounded to two places.
func Complexity(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	letters := 0
	for _, w := range words {
		letters += len([]rune(w))
	}
	avg := float64(letters) / float64(len(words))
	return round2(math.Min(1, float64(len(words))/30+avg/20))
}

func linkStatements(statements []domain.Statement) {
	for i := range statements {
		if i > 0 && discourseMarker.MatchString(statements[i].Text) {
			statements[i].Links = append(statements[i].Links, statements[i-1].ID)
		}
		if len(statements[i].Entities) == 0 {
			continue
		}
		own := make(map[string]struct{}, len(statements[i].Entities))
		for _, e := range statements[i].Entities {
			own[e.Text] = struct{}{}
		}
		for j := i + 1; j < len(statements) && j <= i+entityLinkWindow; j++ {
			for _, e := range statements[j].Entities {
				if _, shared := own[e.Text]; shared {
					statements[i].Links = append(statements[i].Links, statements[j].ID)
					break
				}
			}
		}
	}
}

// Summarize aggregates statement statistics. It returns nil for no statements.
func Summarize(statements []domain.Statement) *domain.StatementSummary {
	if len(statements) == 0 {
		return nil
	}
	summary := &domain.StatementSummary{
		Total:  len(statements),
		ByType: make(map[domain.StatementType]int),
	}
	var strength, complexity float64
	for _, st := range statements {
		summary.ByType[st.Type]++
		strength += st.Strength
		complexity += st.Complexity
		if st.HasCitation {
			summary.Citations++
		}
	}
	n := float64(len(statements))
	summary.AvgStrength = round2(strength / n)
	summary.AvgComplexity = round2(complexity / n)
	summary.CitationRate = round2(float64(summary.Citations) / n)
	return summary
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
