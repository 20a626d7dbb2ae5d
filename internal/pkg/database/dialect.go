package database

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// Dialect concentra as diferenças de SQL entre PostgreSQL e SQLite.
// As queries dos repositórios são escritas com placeholders $N, sempre em ordem
// crescente e sem repetição, para que o Rebind para "?" seja seguro.
type Dialect struct {
	Name       string
	rebind     bool
	lockClause string
	txOptions  *sql.TxOptions
}

var (
	// Postgres bloqueia linhas com FOR UPDATE; em READ COMMITTED a leitura após a espera
	// enxerga o valor recém-commitado pela transação concorrente.
	Postgres = Dialect{
		Name:       "postgres",
		lockClause: " FOR UPDATE",
		txOptions:  &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}

	// SQLite serializa escritores com BEGIN IMMEDIATE (_txlock=immediate na DSN).
	SQLite = Dialect{
		Name:   "sqlite",
		rebind: true,
	}
)

var placeholderRe = regexp.MustCompile(`\$\d+`)

// Rebind adapta os placeholders da query ao dialeto.
func (d Dialect) Rebind(query string) string {
	if !d.rebind {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

// ForUpdate devolve a cláusula de bloqueio de linha, quando o dialeto a suporta.
func (d Dialect) ForUpdate(lock bool) string {
	if !lock {
		return ""
	}
	return d.lockClause
}

// TxOptions devolve as opções de transação do dialeto.
func (d Dialect) TxOptions() *sql.TxOptions {
	return d.txOptions
}

// DB é o pool de conexões acompanhado do dialeto usado para gerar as queries.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// InPlaceholders gera "$start, $start+1, ..." para cláusulas IN com n valores.
func InPlaceholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
