package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	// pgx via database/sql em tempo de execução
	_ "github.com/jackc/pgx/v5/stdlib"
	// lib/pq para o goose (cmd/migrate)
	_ "github.com/lib/pq"
)

// NewPgxDB abre o pool de conexões do serviço usando o driver pgx.
// Retorna o *DB já com o dialeto PostgreSQL (FOR UPDATE, READ COMMITTED).
func NewPgxDB(dataSourceName string) (*DB, error) {
	db, err := openAndPing("pgx", dataSourceName)
	if err != nil {
		return nil, err
	}
	return &DB{DB: db, Dialect: Postgres}, nil
}

// NewPostgresDB inicializa o pool com o driver lib/pq.
// Usado pelo runner de migrações, que entrega *sql.DB diretamente ao goose.
func NewPostgresDB(dataSourceName string) (*sql.DB, error) {
	return openAndPing("postgres", dataSourceName)
}

func openAndPing(driver, dataSourceName string) (*sql.DB, error) {
	// 1. Abrir a Conexão (Sem tentar ainda usar o pool)
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	// 2. Testar a Conexão Imediatamente
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	// 3. Configuração do Connection Pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	log.Printf("✅ Pool de Conexões PostgreSQL (%s) configurado e pronto.", driver)

	return db, nil
}
