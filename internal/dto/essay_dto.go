package dto

import (
	"time"

	"essay-hub/internal/domain"
)

// UploadEssayForm holds the non-file fields of POST /essays. Content is used
// when no file part is sent.
type UploadEssayForm struct {
	Title   string `form:"title" validate:"max=200"`
	Content string `form:"content"`
}

// EssayResponse is one essay with its evaluation.
type EssayResponse struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Content     string                  `json:"content,omitempty"`
	FileName    string                  `json:"file_name,omitempty"`
	Status      domain.EssayStatus      `json:"status"`
	Evaluation  *domain.EssayEvaluation `json:"evaluation,omitempty"`
	UploadDate  time.Time               `json:"upload_date"`
	EvaluatedAt *time.Time              `json:"evaluated_at,omitempty"`
}

// EssaySummaryResponse is an essay list entry.
type EssaySummaryResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Status     domain.EssayStatus `json:"status"`
	Score      *int               `json:"score,omitempty"`
	UploadDate time.Time          `json:"upload_date"`
}

type EssayListResponse struct {
	Essays []EssaySummaryResponse `json:"essays"`
}

type StatementsResponse struct {
	EssayID     string                   `json:"essay_id"`
	Statements  []domain.Statement       `json:"statements"`
	Summary     *domain.StatementSummary `json:"summary,omitempty"`
	GeneratedAt *time.Time               `json:"generated_at,omitempty"`
}

func NewEssayResponse(e *domain.Essay) EssayResponse {
	return EssayResponse{
		ID:          e.ID,
		Title:       e.Title,
		Content:     e.Content,
		FileName:    e.FileName,
		Status:      e.Status,
		Evaluation:  e.Evaluation,
		UploadDate:  e.UploadDate,
		EvaluatedAt: e.EvaluatedAt,
	}
}

func NewEssayListResponse(essays []*domain.Essay) EssayListResponse {
	out := EssayListResponse{Essays: make([]EssaySummaryResponse, 0, len(essays))}
	for _, e := range essays {
		item := EssaySummaryResponse{ID: e.ID, Title: e.Title, Status: e.Status, UploadDate: e.UploadDate}
		if e.Evaluation != nil {
			score := e.Evaluation.Score
			item.Score = &score
		}
		out.Essays = append(out.Essays, item)
	}
	return out
}
