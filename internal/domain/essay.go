package domain

import (
	"context"
	"time"
)

// EssayStatus tracks where an essay is in the evaluation pipeline.
type EssayStatus string

const (
	EssayStatusEvaluating EssayStatus = "evaluating"
	EssayStatusCompleted  EssayStatus = "completed"
)

// GrammarRating is the coarse grammar grade assigned by the evaluator.
type GrammarRating string

const (
	GrammarExcellent GrammarRating = "Excellent"
	GrammarGood      GrammarRating = "Good"
	GrammarFair      GrammarRating = "Fair"
	GrammarPoor      GrammarRating = "Poor"
)

// AILabel is the categorical judgement of who wrote the essay.
type AILabel string

const (
	AILabelHuman     AILabel = "Human-written"
	AILabelAssisted  AILabel = "Possibly AI-assisted"
	AILabelGenerated AILabel = "Likely AI-generated"
)

// EvaluationSource records which path produced an evaluation.
type EvaluationSource string

const (
	SourceStructured EvaluationSource = "structured"
	SourceText       EvaluationSource = "text"
	SourceFallback   EvaluationSource = "fallback"
)

const (
	MaxGrammarErrors = 10
	MaxSuggestions   = 5
	DefaultScore     = 75
)

// Essay is a user-submitted document.
type Essay struct {
	ID                    string
	UserID                string
	Title                 string
	Content               string
	FileName              string
	ContentHash           string
	Status                EssayStatus
	Evaluation            *EssayEvaluation
	Statements            []Statement
	StatementSummary      *StatementSummary
	StatementsGeneratedAt *time.Time
	UploadDate            time.Time
	EvaluatedAt           *time.Time
}

// IsEvaluated reports whether the essay carries a finished evaluation.
func (e *Essay) IsEvaluated() bool {
	return e.Status == EssayStatusCompleted && e.Evaluation != nil
}

// GrammarError is one grammar problem reported by the evaluator.
type GrammarError struct {
	Message      string   `json:"message"`
	Context      string   `json:"context"`
	Replacements []string `json:"replacements"`
}

// GrammarMatch is one match from the grammar checking service.
type GrammarMatch struct {
	Message      string   `json:"message"`
	Context      string   `json:"context"`
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Replacements []string `json:"replacements"`
}

type GrammarCheck struct {
	Total   int            `json:"total"`
	Matches []GrammarMatch `json:"matches"`
}

type LinguisticStats struct {
	Sentences         int     `json:"sentences"`
	Tokens            int     `json:"tokens"`
	Entities          int     `json:"entities"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

type LanguageInfo struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// EssayEvaluation is the structured feedback stored with an essay.
type EssayEvaluation struct {
	EssayID            string           `json:"essay_id,omitempty"`
	Score              int              `json:"score"`
	GrammarRating      GrammarRating    `json:"grammar_rating"`
	Structure          string           `json:"structure"`
	Content            string           `json:"content"`
	Coherence          string           `json:"coherence"`
	Suggestions        []string         `json:"suggestions"`
	AIDetection        AILabel          `json:"ai_detection"`
	AIScore            float64          `json:"ai_score"`
	GrammarErrors      []GrammarError   `json:"grammar_errors"`
	TotalGrammarErrors int              `json:"total_grammar_errors"`
	OverallFeedback    string           `json:"overall_feedback"`
	Stats              *LinguisticStats `json:"linguistic_stats,omitempty"`
	Language           *LanguageInfo    `json:"language,omitempty"`
	GrammarCheck       *GrammarCheck    `json:"grammar_check,omitempty"`
	Source             EvaluationSource `json:"source"`
	EvaluatedAt        time.Time        `json:"evaluated_at"`
}

// StatementType classifies the rhetorical role of a sentence.
type StatementType string

const (
	StatementClaim      StatementType = "claim"
	StatementEvidence   StatementType = "evidence"
	StatementTransition StatementType = "transition"
	StatementConclusion StatementType = "conclusion"
)

type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Sentence is a segment of essay text with its character offsets.
type Sentence struct {
	Text     string   `json:"text"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Entities []Entity `json:"entities"`
}

// Statement is an atomic sentence-level unit of an essay's argument.
type Statement struct {
	ID          string        `json:"id"`
	Text        string        `json:"text"`
	Position    int           `json:"position"`
	Type        StatementType `json:"type"`
	Strength    float64       `json:"strength"`
	Complexity  float64       `json:"complexity"`
	WordCount   int           `json:"word_count"`
	HasCitation bool          `json:"has_citation"`
	Entities    []Entity      `json:"entities"`
	Links       []string      `json:"links"`
}

type StatementSummary struct {
	Total         int                   `json:"total"`
	ByType        map[StatementType]int `json:"by_type"`
	AvgStrength   float64               `json:"avg_strength"`
	AvgComplexity float64               `json:"avg_complexity"`
	Citations     int                   `json:"citations"`
	CitationRate  float64               `json:"citation_rate"`
}

// EssayEvaluator produces feedback for an essay. Implementations never fail on
// upstream errors; they return neutral defaults instead.
type EssayEvaluator interface {
	EvaluateEssay(ctx context.Context, title, content string, language *LanguageInfo) (*EssayEvaluation, error)
	// ClassifyStatements returns one (type, strength) pair per sentence, keyed by
	// 1-based sentence index. Missing entries are classified by rule.
	ClassifyStatements(ctx context.Context, sentences []string) (map[int]StatementClass, error)
}

type StatementClass struct {
	Type     StatementType
	Strength float64
}

type GrammarChecker interface {
	Check(ctx context.Context, text, language string) (*GrammarCheck, error)
}

// TextAnalyzer is the local NLP pipeline.
type TextAnalyzer interface {
	Analyze(text string) LinguisticStats
	Segment(text string) []Sentence
	DetectLanguage(text string) LanguageInfo
}

type EssayRepository interface {
	CreateEssay(ctx context.Context, essay *Essay) error
	GetEssayByID(ctx context.Context, id string) (*Essay, error)
	ListEssaysByUser(ctx context.Context, userID string, limit int) ([]*Essay, error)
	ListEssaysByStatus(ctx context.Context, status EssayStatus, limit int) ([]*Essay, error)
	SaveEvaluation(ctx context.Context, essayID string, eval *EssayEvaluation) error
	SaveStatements(ctx context.Context, essayID string, statements []Statement, summary *StatementSummary) error
	DeleteEssay(ctx context.Context, id string) error
}
