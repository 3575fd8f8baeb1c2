package repository

import (
	"context"
	"fmt"
	"time"

	"essay-hub/internal/domain"
	"essay-hub/internal/repository/models"
	"essay-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const essayColumns = `id, user_id, title, content, file_name, content_hash, status, evaluation,
	statements, statement_summary, statements_generated_at, upload_date, evaluated_at`

// EssayDatabaseAdapter implements domain.EssayRepository using sqlx.DB
type EssayDatabaseAdapter struct {
	db *sqlx.DB
}

// NewEssayDatabaseAdapter creates a new instance of EssayDatabaseAdapter
func NewEssayDatabaseAdapter(db *sqlx.DB) domain.EssayRepository {
	return &EssayDatabaseAdapter{db: db}
}

func toDomainEssay(m *models.Essay) (*domain.Essay, error) {
	if m == nil {
		return nil, nil
	}
	essay := &domain.Essay{
		ID:                    m.ID,
		UserID:                m.UserID,
		Title:                 m.Title,
		Content:               m.Content,
		FileName:              m.FileName.String,
		ContentHash:           m.ContentHash,
		Status:                domain.EssayStatus(m.Status),
		StatementsGeneratedAt: util.NullTimeToPtr(m.StatementsGeneratedAt),
		UploadDate:            m.UploadDate,
		EvaluatedAt:           util.NullTimeToPtr(m.EvaluatedAt),
	}
	if m.Evaluation.Valid() {
		essay.Evaluation = &domain.EssayEvaluation{}
		if err := m.Evaluation.Unmarshal(essay.Evaluation); err != nil {
			return nil, fmt.Errorf("failed to decode evaluation of essay %s: %w", m.ID, err)
		}
	}
	if err := m.Statements.Unmarshal(&essay.Statements); err != nil {
		return nil, fmt.Errorf("failed to decode statements of essay %s: %w", m.ID, err)
	}
	if m.StatementSummary.Valid() {
		essay.StatementSummary = &domain.StatementSummary{}
		if err := m.StatementSummary.Unmarshal(essay.StatementSummary); err != nil {
			return nil, fmt.Errorf("failed to decode statement summary of essay %s: %w", m.ID, err)
		}
	}
	return essay, nil
}

// CreateEssay inserts the essay row. Evaluation and statements are written later.
func (a *EssayDatabaseAdapter) CreateEssay(ctx context.Context, essay *domain.Essay) error {
	if essay == nil {
		return fmt.Errorf("cannot save nil essay")
	}
	if essay.ID == "" {
		essay.ID = util.NewULID()
	}
	if essay.UploadDate.IsZero() {
		essay.UploadDate = time.Now()
	}
	if essay.Status == "" {
		essay.Status = domain.EssayStatusEvaluating
	}

	query := `INSERT INTO essays (id, user_id, title, content, file_name, content_hash, status, upload_date)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		essay.ID,
		essay.UserID,
		essay.Title,
		essay.Content,
		util.StringToNullString(essay.FileName),
		essay.ContentHash,
		string(essay.Status),
		essay.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save essay: %w", err)
	}
	return nil
}

func (a *EssayDatabaseAdapter) GetEssayByID(ctx context.Context, id string) (*domain.Essay, error) {
	var m models.Essay
	query := `SELECT ` + essayColumns + ` FROM essays WHERE id = :1`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, id); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get essay by ID %s: %w", id, err)
	}
	return toDomainEssay(&m)
}

// ListEssaysByUser returns the user's essays, newest first.
func (a *EssayDatabaseAdapter) ListEssaysByUser(ctx context.Context, userID string, limit int) ([]*domain.Essay, error) {
	var rows []models.Essay
	query := `SELECT ` + essayColumns + ` FROM essays
	          WHERE user_id = :1
	          ORDER BY upload_date DESC
	          FETCH FIRST :2 ROWS ONLY`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list essays for user %s: %w", userID, err)
	}
	return toDomainEssays(rows)
}

// ListEssaysByStatus returns the oldest essays in the given status first.
func (a *EssayDatabaseAdapter) ListEssaysByStatus(ctx context.Context, status domain.EssayStatus, limit int) ([]*domain.Essay, error) {
	var rows []models.Essay
	query := `SELECT ` + essayColumns + ` FROM essays
	          WHERE status = :1
	          ORDER BY upload_date ASC
	          FETCH FIRST :2 ROWS ONLY`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, string(status), limit); err != nil {
		return nil, fmt.Errorf("failed to list %s essays: %w", status, err)
	}
	return toDomainEssays(rows)
}

func toDomainEssays(rows []models.Essay) ([]*domain.Essay, error) {
	essays := make([]*domain.Essay, 0, len(rows))
	for i := range rows {
		essay, err := toDomainEssay(&rows[i])
		if err != nil {
			return nil, err
		}
		essays = append(essays, essay)
	}
	return essays, nil
}

// SaveEvaluation stores the evaluation document and marks the essay completed.
func (a *EssayDatabaseAdapter) SaveEvaluation(ctx context.Context, essayID string, eval *domain.EssayEvaluation) error {
	doc, err := models.MarshalJSONText(eval)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}
	evaluatedAt := time.Now()
	if eval != nil && !eval.EvaluatedAt.IsZero() {
		evaluatedAt = eval.EvaluatedAt
	}

	query := `UPDATE essays SET evaluation = :1, status = :2, evaluated_at = :3 WHERE id = :4`
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, doc, string(domain.EssayStatusCompleted), evaluatedAt, essayID)
	if err != nil {
		return fmt.Errorf("failed to save evaluation for essay %s: %w", essayID, err)
	}
	return requireAffected(result, domain.NewEssayNotFoundError(essayID))
}

func (a *EssayDatabaseAdapter) SaveStatements(ctx context.Context, essayID string, statements []domain.Statement, summary *domain.StatementSummary) error {
	stmtDoc, err := models.MarshalJSONText(statements)
	if err != nil {
		return fmt.Errorf("failed to encode statements: %w", err)
	}
	summaryDoc, err := models.MarshalJSONText(summary)
	if err != nil {
		return fmt.Errorf("failed to encode statement summary: %w", err)
	}

	query := `UPDATE essays SET statements = :1, statement_summary = :2, statements_generated_at = :3 WHERE id = :4`
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, stmtDoc, summaryDoc, time.Now(), essayID)
	if err != nil {
		return fmt.Errorf("failed to save statements for essay %s: %w", essayID, err)
	}
	return requireAffected(result, domain.NewEssayNotFoundError(essayID))
}

// DeleteEssay removes the essay. Posts referencing it go with it (ON DELETE CASCADE).
func (a *EssayDatabaseAdapter) DeleteEssay(ctx context.Context, id string) error {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, `DELETE FROM essays WHERE id = :1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete essay %s: %w", id, err)
	}
	return requireAffected(result, domain.NewEssayNotFoundError(id))
}
