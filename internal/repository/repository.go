package repository

import (
	"context"
	"database/sql" // Required for sql.Result
	"errors"
	"fmt"
	"strings"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// isUniqueViolation reports an Oracle unique constraint failure (ORA-00001).
// Both go-ora and godror surface the code in the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}

// isNoRows is the not-found check shared by the Get* methods.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// requireAffected returns notFound when an UPDATE or DELETE touched no rows.
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
