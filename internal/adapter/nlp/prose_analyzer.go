// Package nlp is the in-process text analysis pipeline: sentence
// segmentation, token and entity counts and language detection.
package nlp

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"essay-hub/internal/domain"
	"essay-hub/internal/logger"

	"github.com/abadojack/whatlanggo"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

const (
	defaultLanguageCode       = "en"
	defaultLanguageName       = "English"
	defaultLanguageConfidence = 0.8
	// shorter samples give whatlanggo too little signal
	minDetectRunes = 20
)

var naiveSentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]*`)

// ProseAnalyzer implements domain.TextAnalyzer.
type ProseAnalyzer struct{}

func NewProseAnalyzer() domain.TextAnalyzer {
	return &ProseAnalyzer{}
}

func (a *ProseAnalyzer) Analyze(text string) domain.LinguisticStats {
	if strings.TrimSpace(text) == "" {
		return domain.LinguisticStats{}
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Get().Warn("prose analysis failed, using whitespace statistics", zap.Error(err))
		sentences := naiveSentences(text)
		tokens := len(strings.Fields(text))
		return domain.LinguisticStats{
			Sentences:         len(sentences),
			Tokens:            tokens,
			AvgSentenceLength: avgLength(tokens, len(sentences)),
		}
	}

	tokens := 0
	for _, tok := range doc.Tokens() {
		if isWord(tok.Text) {
			tokens++
		}
	}
	sentences := len(doc.Sentences())
	return domain.LinguisticStats{
		Sentences:         sentences,
		Tokens:            tokens,
		Entities:          len(doc.Entities()),
		AvgSentenceLength: avgLength(tokens, sentences),
	}
}

// Segment splits text into sentences with character offsets. Entities found in
// the whole document are attached to each sentence that mentions them.
func (a *ProseAnalyzer) Segment(text string) []domain.Sentence {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Get().Warn("prose segmentation failed, splitting on punctuation", zap.Error(err))
		return locate(text, naiveSentences(text), nil)
	}

	raw := make([]string, 0, len(doc.Sentences()))
	for _, s := range doc.Sentences() {
		raw = append(raw, s.Text)
	}
	entities := make([]domain.Entity, 0, len(doc.Entities()))
	for _, e := range doc.Entities() {
		entities = append(entities, domain.Entity{Text: e.Text, Label: e.Label})
	}
	return locate(text, raw, entities)
}

// DetectLanguage falls back to English when detection is not possible.
func (a *ProseAnalyzer) DetectLanguage(text string) domain.LanguageInfo {
	fallback := domain.LanguageInfo{Code: defaultLanguageCode, Name: defaultLanguageName, Confidence: defaultLanguageConfidence}
	if len([]rune(strings.TrimSpace(text))) < minDetectRunes {
		return fallback
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return fallback
	}
	return domain.LanguageInfo{
		Code:       code,
		Name:       info.Lang.String(),
		Confidence: math.Round(info.Confidence*100) / 100,
	}
}

func locate(text string, sentences []string, entities []domain.Entity) []domain.Sentence {
	out := make([]domain.Sentence, 0, len(sentences))
	cursor := 0
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		start := cursor
		if i := strings.Index(text[cursor:], s); i >= 0 {
			start = cursor + i
		}
		end := start + len(s)
		if end > len(text) {
			end = len(text)
		}
		cursor = end

		sent := domain.Sentence{Text: s, Start: start, End: end, Entities: []domain.Entity{}}
		for _, e := range entities {
			if strings.Contains(s, e.Text) {
				sent.Entities = append(sent.Entities, e)
			}
		}
		out = append(out, sent)
	}
	return out
}

func naiveSentences(text string) []string {
	var out []string
	for _, s := range naiveSentenceSplit.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isWord(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func avgLength(tokens, sentences int) float64 {
	if sentences < 1 {
		sentences = 1
	}
	return math.Round(float64(tokens)/float64(sentences)*100) / 100
}
