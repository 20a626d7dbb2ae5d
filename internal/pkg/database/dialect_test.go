package database_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/database/dbtest"
)

func TestDialect_Rebind(t *testing.T) {
	query := `UPDATE components SET quantity = $1, version = $2 WHERE id = $3 AND version = $4`

	assert.Equal(t, query, database.Postgres.Rebind(query))
	assert.Equal(t, `UPDATE components SET quantity = ?, version = ? WHERE id = ? AND version = ?`, database.SQLite.Rebind(query))
}

func TestDialect_ForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", database.Postgres.ForUpdate(true))
	assert.Equal(t, "", database.Postgres.ForUpdate(false))
	assert.Equal(t, "", database.SQLite.ForUpdate(true))
}

func TestInPlaceholders(t *testing.T) {
	assert.Equal(t, "$2, $3, $4", database.InPlaceholders(2, 3))
}

func TestClassify(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	err := database.Classify("Falha ao aprovar", serialization)

	var persistErr *apperror.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.True(t, persistErr.Retryable())

	checkViolation := &pgconn.PgError{Code: "23514"}
	err = database.Classify("Falha ao debitar", checkViolation)
	require.True(t, errors.As(err, &persistErr))
	assert.False(t, persistErr.Retryable())

	typed := apperror.NewNotFoundError("req")
	assert.Same(t, typed, database.Classify("x", typed))
	assert.NoError(t, database.Classify("x", nil))
}

func TestSQLiteTestDB_AppliesSchema(t *testing.T) {
	db := dbtest.New(t)

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('components', 'requests', 'request_items', 'usage_records')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, "sqlite", db.Dialect.Name)
}
