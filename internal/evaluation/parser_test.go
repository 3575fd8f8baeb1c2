package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"essay-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullResponse = `SCORE: 82

AI DETECTION: Human-written

GRAMMAR ERRORS:
- Subject-verb agreement in "they was going" → Suggestion: they were going
- Missing comma in "However the results" -> Suggestion: However, the results
3. Run-on sentence near the conclusion

GRAMMAR RATING: Fair

STRUCTURE: Clear introduction and conclusion.
Body paragraphs could be better separated.

CONTENT QUALITY: Arguments are supported with examples.

COHERENCE: Transitions are mostly smooth.

SUGGESTIONS:
1. Add a counter-argument paragraph
2. Cite at least one external source
3. ok
- Vary sentence openings

OVERALL FEEDBACK: A solid essay.
Tighten the conclusion.`

func TestParseText_FullResponse(t *testing.T) {
	eval := ParseText(fullResponse)

	assert.Equal(t, domain.SourceText, eval.Source)
	assert.Equal(t, 82, eval.Score)
	assert.Equal(t, domain.AILabelHuman, eval.AIDetection)
	assert.Equal(t, 0.95, eval.AIScore)
	assert.Equal(t, domain.GrammarFair, eval.GrammarRating)
	assert.Equal(t, "Clear introduction and conclusion. Body paragraphs could be better separated.", eval.Structure)
	assert.Equal(t, "Arguments are supported with examples.", eval.Content)
	assert.Equal(t, "Transitions are mostly smooth.", eval.Coherence)
	assert.Equal(t, "A solid essay. Tighten the conclusion.", eval.OverallFeedback)
	assert.Equal(t, []string{
		"Add a counter-argument paragraph",
		"Cite at least one external source",
		"Vary sentence openings",
	}, eval.Suggestions)

	require.Len(t, eval.GrammarErrors, 3)
	assert.Equal(t, 3, eval.TotalGrammarErrors)
	assert.Equal(t, domain.GrammarError{
		Message:      `Subject-verb agreement in "they was going"`,
		Context:      "they was going",
		Replacements: []string{"they were going"},
	}, eval.GrammarErrors[0])
	assert.Equal(t, "However the results", eval.GrammarErrors[1].Context)
	assert.Equal(t, []string{"However, the results"}, eval.GrammarErrors[1].Replacements)
	assert.Equal(t, "Run-on sentence near the conclusion", eval.GrammarErrors[2].Message)
	assert.Empty(t, eval.GrammarErrors[2].Replacements)
}

func TestParseText_Score(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "first integer wins", input: "SCORE: 87 out of 100", expected: 87},
		{name: "clamped high", input: "SCORE: 150", expected: 100},
		{name: "markdown bold header", input: "**SCORE:** 64/100", expected: 64},
		{name: "heading marker", input: "## SCORE: 91", expected: 91},
		{name: "no number keeps default", input: "SCORE: excellent", expected: domain.DefaultScore},
		{name: "absent keeps default", input: "OVERALL FEEDBACK: fine", expected: domain.DefaultScore},
		{name: "huge number clamped", input: "SCORE: 99999999999999999999999", expected: 100},
		{name: "numbered list item", input: "1. SCORE: 87 out of 100", expected: 87},
		{name: "lead-in word", input: "Final SCORE: 87", expected: 87},
		{name: "lowercase word is not a header", input: "score: 40", expected: domain.DefaultScore},
		{name: "header inside a longer word", input: "SUBSCORE: 40", expected: domain.DefaultScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseText(tt.input).Score)
		})
	}
}

func TestParseText_AIDetection(t *testing.T) {
	tests := []struct {
		input string
		label domain.AILabel
		score float64
	}{
		{"AI DETECTION: Likely AI-generated, high confidence", domain.AILabelGenerated, 0.1},
		{"AI DETECTION: Possibly AI-assisted", domain.AILabelAssisted, 0.5},
		{"AI DETECTION: Human-written", domain.AILabelHuman, 0.95},
		{"AI DETECTION: unsure", domain.AILabelHuman, 0.95},
		{"3. AI DETECTION: Likely AI-generated", domain.AILabelGenerated, 0.1},
		{"**Final AI DETECTION:** Possibly AI-assisted", domain.AILabelAssisted, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			eval := ParseText(tt.input)
			assert.Equal(t, tt.label, eval.AIDetection)
			assert.Equal(t, tt.score, eval.AIScore)
		})
	}
}

func TestParseText_GrammarRating(t *testing.T) {
	tests := map[string]domain.GrammarRating{
		"GRAMMAR RATING: Excellent":        domain.GrammarExcellent,
		"GRAMMAR RATING: poor overall":     domain.GrammarPoor,
		"GRAMMAR RATING: Fair to middling": domain.GrammarFair,
		"GRAMMAR RATING: n/a":              domain.GrammarGood,
		"2. GRAMMAR RATING: Poor":          domain.GrammarPoor,
		"Overall GRAMMAR RATING: Fair":     domain.GrammarFair,
	}
	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, ParseText(input).GrammarRating)
		})
	}
}

func TestParseText_NoErrorsLineFiltered(t *testing.T) {
	input := "GRAMMAR ERRORS:\n- No significant errors found\nGRAMMAR RATING: Excellent"
	eval := ParseText(input)

	assert.Empty(t, eval.GrammarErrors)
	assert.Equal(t, 1, eval.TotalGrammarErrors)
	assert.Equal(t, domain.GrammarExcellent, eval.GrammarRating)
}

func TestParseText_NoErrorsFilterKeepsRealErrors(t *testing.T) {
	input := "GRAMMAR ERRORS:\n" +
		"- Pronoun error in \"him and me went\" → Suggestion: he and I went\n" +
		"- Missing comma in \"no, thanks\" → Suggestion: fix the punctuation error\n" +
		"- NO ERRORS otherwise"
	eval := ParseText(input)

	require.Len(t, eval.GrammarErrors, 2)
	assert.Equal(t, 3, eval.TotalGrammarErrors)
	assert.Equal(t, "him and me went", eval.GrammarErrors[0].Context)
	assert.Equal(t, "no, thanks", eval.GrammarErrors[1].Context)
}

func TestParse_NumberedSections(t *testing.T) {
	eval := Parse("1. SCORE: 87 out of 100\n2. GRAMMAR RATING: Poor\n3. AI DETECTION: Likely AI-generated")

	assert.Equal(t, domain.SourceText, eval.Source)
	assert.Equal(t, 87, eval.Score)
	assert.Equal(t, domain.GrammarPoor, eval.GrammarRating)
	assert.Equal(t, domain.AILabelGenerated, eval.AIDetection)
	assert.Equal(t, 0.1, eval.AIScore)
}

func TestParseText_HeaderRemainderAsError(t *testing.T) {
	eval := ParseText(`GRAMMAR ERRORS: Comma splice in "I came, I left"`)
	require.Len(t, eval.GrammarErrors, 1)
	assert.Equal(t, "I came, I left", eval.GrammarErrors[0].Context)

	short := ParseText("GRAMMAR ERRORS: none")
	assert.Empty(t, short.GrammarErrors)
	assert.Equal(t, 0, short.TotalGrammarErrors)
}

func TestParseText_Caps(t *testing.T) {
	var b strings.Builder
	b.WriteString("GRAMMAR ERRORS:\n")
	for i := 1; i <= 14; i++ {
		fmt.Fprintf(&b, "%d. Error number %d in \"phrase %d\"\n", i, i, i)
	}
	b.WriteString("SUGGESTIONS:\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "%d. Suggestion number %d\n", i, i)
	}

	eval := ParseText(b.String())
	assert.Len(t, eval.GrammarErrors, domain.MaxGrammarErrors)
	assert.Equal(t, 14, eval.TotalGrammarErrors)
	assert.Equal(t, "Error number 1 in \"phrase 1\"", eval.GrammarErrors[0].Message)
	assert.Len(t, eval.Suggestions, domain.MaxSuggestions)
	assert.Equal(t, "Suggestion number 5", eval.Suggestions[4])
}

func TestParseText_Defaults(t *testing.T) {
	eval := ParseText("the model rambled without any headers")

	assert.Equal(t, domain.DefaultScore, eval.Score)
	assert.Equal(t, domain.GrammarGood, eval.GrammarRating)
	assert.Equal(t, DefaultStructure, eval.Structure)
	assert.Equal(t, DefaultContent, eval.Content)
	assert.Equal(t, DefaultCoherence, eval.Coherence)
	assert.NotNil(t, eval.Suggestions)
	assert.NotNil(t, eval.GrammarErrors)

	body, err := json.Marshal(eval)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"suggestions":[]`)
}

func TestParseText_ContentHeaderVariants(t *testing.T) {
	assert.Equal(t, "Deep.", ParseText("CONTENT: Deep.").Content)
	assert.Equal(t, "Shallow.", ParseText("CONTENT QUALITY: Shallow.").Content)
}

func TestParse_PrefersStructured(t *testing.T) {
	raw := `<think>let me grade this</think>
Here you go:
{"score": 88, "ai_detection": "Possibly AI-assisted", "grammar_rating": "Excellent",
 "structure": "Good flow.", "suggestions": ["Add a stronger thesis"], "grammar_errors": []}`

	eval := Parse(raw)
	assert.Equal(t, domain.SourceStructured, eval.Source)
	assert.Equal(t, 88, eval.Score)
	assert.Equal(t, domain.AILabelAssisted, eval.AIDetection)
	assert.Equal(t, domain.GrammarExcellent, eval.GrammarRating)
	assert.Equal(t, "Good flow.", eval.Structure)
	assert.Equal(t, DefaultContent, eval.Content)
}

func TestParse_FallsBackToText(t *testing.T) {
	eval := Parse("SCORE: 70\nGRAMMAR RATING: Poor")
	assert.Equal(t, domain.SourceText, eval.Source)
	assert.Equal(t, 70, eval.Score)
	assert.Equal(t, domain.GrammarPoor, eval.GrammarRating)
}

func TestFallback(t *testing.T) {
	eval := Fallback()
	assert.Equal(t, domain.SourceFallback, eval.Source)
	assert.Equal(t, 75, eval.Score)
	assert.Equal(t, domain.GrammarGood, eval.GrammarRating)
	assert.Equal(t, DefaultFeedback, eval.OverallFeedback)
}
