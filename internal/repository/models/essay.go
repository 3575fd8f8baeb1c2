package models

import (
	"database/sql"
	"time"
)

// Essay represents a row of the essays table. The evaluation and statement
// columns are CLOBs holding JSON documents.
type Essay struct {
	ID                    string         `db:"ID"`
	UserID                string         `db:"USER_ID"`
	Title                 string         `db:"TITLE"`
	Content               string         `db:"CONTENT"`
	FileName              sql.NullString `db:"FILE_NAME"`
	ContentHash           string         `db:"CONTENT_HASH"`
	Status                string         `db:"STATUS"`
	Evaluation            JSONText       `db:"EVALUATION"`
	Statements            JSONText       `db:"STATEMENTS"`
	StatementSummary      JSONText       `db:"STATEMENT_SUMMARY"`
	StatementsGeneratedAt sql.NullTime   `db:"STATEMENTS_GENERATED_AT"`
	UploadDate            time.Time      `db:"UPLOAD_DATE"`
	EvaluatedAt           sql.NullTime   `db:"EVALUATED_AT"`
}

func (Essay) TableName() string {
	return "ESSAYS"
}
