package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"essay-hub/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestSplitStatements(t *testing.T) {
	script := `-- users
CREATE TABLE users (
    id VARCHAR2(26) PRIMARY KEY
);

CREATE INDEX idx_users_email ON users (email);
-- trailing statement without semicolon
CREATE INDEX idx_users_name ON users (name)`

	got := SplitStatements(script)
	require.Len(t, got, 3)
	assert.Equal(t, "CREATE TABLE users (\nid VARCHAR2(26) PRIMARY KEY\n)", got[0])
	assert.Equal(t, "CREATE INDEX idx_users_email ON users (email)", got[1])
	assert.Equal(t, "CREATE INDEX idx_users_name ON users (name)", got[2])
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "0002_posts.up.sql", "CREATE TABLE posts (id NUMBER);")
	writeMigration(t, dir, "0001_users.up.sql", "CREATE TABLE users (id NUMBER);")
	writeMigration(t, dir, "0001_users.down.sql", "DROP TABLE users;")
	writeMigration(t, dir, "README.md", "not sql")

	migrations, err := LoadMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_users", migrations[0].Version)
	assert.Equal(t, "0002_posts", migrations[1].Version)
	assert.Equal(t, []string{"CREATE TABLE posts (id NUMBER)"}, migrations[1].Statements)

	_, err = LoadMigrations(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRunMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "0001_users.up.sql", "CREATE TABLE users (id NUMBER);")
	writeMigration(t, dir, "0002_posts.up.sql", "CREATE TABLE posts (id NUMBER);\nCREATE INDEX idx_posts ON posts (id);")

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE schema_migrations")).
		WillReturnError(errors.New("ORA-00955: name is already used by an existing object"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_users"))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE posts (id NUMBER)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx_posts ON posts (id)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs("0002_posts", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ran, err := RunMigrations(context.Background(), db, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_posts"}, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_StatementFailure(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "0001_users.up.sql", "CREATE TABLE users (id NUMBER);")

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE users")).WillReturnError(errors.New("ORA-01031: insufficient privileges"))

	ran, err := RunMigrations(context.Background(), db, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_users")
	assert.Empty(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, DriverGodror, DriverName(config.DBConfig{Driver: "godror"}))
	assert.Equal(t, DriverGoOra, DriverName(config.DBConfig{Driver: "oracle"}))
	assert.Equal(t, DriverGoOra, DriverName(config.DBConfig{}))
}
