package database

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// sqliteParams configura cada conexão do pool: espera por locks, chaves estrangeiras
// (cascata do histórico de uso), formato de data ordenável e BEGIN IMMEDIATE
// para que cada transação de estoque obtenha o lock de escrita logo no início.
var sqliteParams = url.Values{
	"_pragma":      {"busy_timeout(5000)", "foreign_keys(1)"},
	"_time_format": {"sqlite"},
	"_txlock":      {"immediate"},
}

// NewSQLiteDB abre um banco SQLite em path e garante o schema.
func NewSQLiteDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?"+sqliteParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir o banco SQLite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no SQLite: %w", err)
	}

	if err := EnsureSQLiteSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, Dialect: SQLite}, nil
}

// sqliteSchema espelha as migrações de sql/ para o SQLite.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS components (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    quantity      INTEGER NOT NULL CHECK (quantity >= 0),
    unit          TEXT NOT NULL,
    min_stock     INTEGER NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
    location      TEXT NOT NULL DEFAULT '',
    supplier      TEXT NOT NULL DEFAULT '',
    image_ref     TEXT NOT NULL DEFAULT '',
    category_name TEXT NOT NULL DEFAULT '',
    consumable    BOOLEAN NOT NULL DEFAULT 0,
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS requests (
    id              TEXT PRIMARY KEY,
    personnel_name  TEXT NOT NULL,
    personnel_email TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'RETURNED')),
    face_image_ref  TEXT NOT NULL DEFAULT '',
    requested_at    DATETIME NOT NULL,
    approved_at     DATETIME,
    returned_at     DATETIME,
    updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);

CREATE TABLE IF NOT EXISTS request_items (
    id           TEXT PRIMARY KEY,
    request_id   TEXT NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
    component_id TEXT NOT NULL REFERENCES components(id) ON DELETE RESTRICT,
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    description  TEXT NOT NULL DEFAULT '',
    position     INTEGER NOT NULL,
    consumable   BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_request_items_request ON request_items(request_id);
CREATE INDEX IF NOT EXISTS idx_request_items_component ON request_items(component_id);

CREATE TABLE IF NOT EXISTS usage_records (
    id           TEXT PRIMARY KEY,
    component_id TEXT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
    request_id   TEXT NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL,
    type         TEXT NOT NULL CHECK (type IN ('add', 'remove')),
    project      TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_records_component ON usage_records(component_id);
CREATE INDEX IF NOT EXISTS idx_usage_records_created ON usage_records(created_at);
`

// EnsureSQLiteSchema cria todas as tabelas e índices que ainda não existem.
func EnsureSQLiteSchema(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("falha ao criar o schema SQLite: %w", err)
	}
	return nil
}
