package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"essay-hub/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	migrationSuffix = ".up.sql"
	// ORA-00955: name is already used by an existing object
	oraNameInUse = "ORA-00955"
)

const createVersionTable = `CREATE TABLE schema_migrations (
	version    VARCHAR2(255) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
)`

// Migration is one *.up.sql file.
type Migration struct {
	Version    string
	Statements []string
}

// LoadMigrations reads every *.up.sql file in dir, ordered by file name.
func LoadMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory %s: %w", dir, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), migrationSuffix) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version:    strings.TrimSuffix(entry.Name(), migrationSuffix),
			Statements: SplitStatements(string(content)),
		})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// SplitStatements breaks a script on semicolons that end a line. Oracle drivers
// execute one statement per call and reject the trailing semicolon. Lines
// starting with "--" are dropped.
func SplitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			current.WriteString(strings.TrimSuffix(trimmed, ";"))
			statements = append(statements, current.String())
			current.Reset()
			continue
		}
		current.WriteString(trimmed)
		current.WriteString("\n")
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

// RunMigrations applies the migrations in dir that schema_migrations does not
// list yet. It returns the versions it applied.
func RunMigrations(ctx context.Context, db *sqlx.DB, dir string) ([]string, error) {
	l := logger.Get()

	if _, err := db.ExecContext(ctx, createVersionTable); err != nil && !strings.Contains(err.Error(), oraNameInUse) {
		return nil, fmt.Errorf("could not create schema_migrations: %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("could not read schema_migrations: %w", err)
	}
	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	migrations, err := LoadMigrations(dir)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range migrations {
		if _, ok := done[m.Version]; ok {
			continue
		}
		for i, stmt := range m.Statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return ran, fmt.Errorf("migration %s statement %d failed: %w", m.Version, i+1, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (:1, :2)`, m.Version, time.Now()); err != nil {
			return ran, fmt.Errorf("could not record migration %s: %w", m.Version, err)
		}
		l.Info("Executed migration", zap.String("version", m.Version), zap.Int("statements", len(m.Statements)))
		ran = append(ran, m.Version)
	}

	l.Info("Migrations completed", zap.Int("applied", len(ran)))
	return ran, nil
}
