package usagerepo

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/rowscan"
)

// UsageRepository implementa a interface domain.UsageRepository.
// Os registros são gravados apenas via LedgerTx.InsertUsage; aqui só há leitura.
type UsageRepository struct {
	DB        *database.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUsageRepository cria uma nova instância do UsageRepository, injetando o DB.
func NewUsageRepository(db *database.DB, dbTimeout time.Duration, logger logger.Logger) *UsageRepository {
	return &UsageRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindAll devolve o histórico de uso com o nome do componente, mais recentes primeiro.
// Com Limit <= 0, todos os registros são devolvidos (usado na exportação).
func (r *UsageRepository) FindAll(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRecord, error) {
	r.logger.Debug("Iniciando FindAll do histórico de uso.", map[string]interface{}{"component_id": filter.ComponentID, "limit": filter.Limit, "offset": filter.Offset})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + rowscan.UsageColumns + `
        FROM usage_records u
        JOIN components c ON c.id = u.component_id`

	var args []interface{}
	if filter.ComponentID != "" {
		args = append(args, filter.ComponentID)
		query += ` WHERE u.component_id = $1`
	}
	query += ` ORDER BY u.created_at DESC, u.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.DB.QueryContext(ctxTimeout, r.DB.Dialect.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Falha ao consultar histórico de uso.", err)
		return nil, database.Classify("Falha ao consultar histórico de uso", err)
	}
	defer rows.Close()

	records := []domain.UsageRecord{}
	for rows.Next() {
		u, err := rowscan.Usage(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear registro de uso.", err)
			return nil, database.Classify("Falha ao mapear histórico de uso", err)
		}
		records = append(records, u)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify("Erro após iteração do histórico de uso", err)
	}

	r.logger.Info("Histórico de uso consultado com sucesso.", map[string]interface{}{"total_records": len(records)})
	return records, nil
}
