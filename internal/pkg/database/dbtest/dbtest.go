// Package dbtest fornece bancos SQLite descartáveis para os testes dos repositórios e serviços.
package dbtest

import (
	"path/filepath"
	"testing"

	"stockroom/internal/pkg/database"
)

// New cria um banco SQLite novo, em arquivo temporário, com o schema aplicado.
// Um arquivo (e não ":memory:") é usado para que todas as conexões do pool
// enxerguem o mesmo banco, o que permite testar transações concorrentes.
func New(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "stockroom_test.db"))
	if err != nil {
		t.Fatalf("abrindo banco de teste: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
