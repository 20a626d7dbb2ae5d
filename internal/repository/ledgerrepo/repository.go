package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/rowscan"
)

// LedgerRepository implementa domain.TxManager sobre database/sql.
// Cada chamada a WithinTx é uma transação com bloqueio de linha: FOR UPDATE no
// PostgreSQL e BEGIN IMMEDIATE no SQLite.
type LedgerRepository struct {
	DB        *database.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewLedgerRepository cria e retorna uma nova instância do Repositório do razão de estoque.
func NewLedgerRepository(db *database.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *LedgerRepository {
	return &LedgerRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// WithinTx executa fn em uma transação. Qualquer erro devolvido por fn (ou pelo commit)
// descarta todas as escritas. Após o commit, as entradas de cache dos componentes
// alterados são invalidadas.
func (r *LedgerRepository) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	sqlTx, err := r.DB.BeginTx(ctxTimeout, r.DB.Dialect.TxOptions())
	if err != nil {
		r.logger.Error("Falha ao iniciar transação do razão de estoque.", err)
		return database.Classify("Falha ao iniciar transação", err)
	}
	defer sqlTx.Rollback() // Rollback em caso de erro; no-op após o commit

	tx := &ledgerTx{
		tx:      sqlTx,
		dialect: r.DB.Dialect,
		logger:  r.logger,
		touched: make(map[string]struct{}),
	}

	if err := fn(tx); err != nil {
		r.logger.Debug("Transação do razão de estoque descartada.", map[string]interface{}{"reason": err.Error()})
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação do razão de estoque.", err)
		return database.Classify("Falha ao commitar transação", err)
	}

	r.invalidate(ctx, tx.touchedIDs())
	return nil
}

// invalidate remove do cache os componentes alterados. Falhas do cache não afetam a transação.
func (r *LedgerRepository) invalidate(ctx context.Context, ids []string) {
	if len(ids) == 0 || r.Cache == nil {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.ComponentKey(id))
	}
	if err := r.Cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Falha ao invalidar cache de componentes.", map[string]interface{}{"component_ids": ids, "error": err.Error()})
	}
}

// ledgerTx implementa domain.LedgerTx sobre uma *sql.Tx.
type ledgerTx struct {
	tx      *sql.Tx
	dialect database.Dialect
	logger  logger.Logger
	touched map[string]struct{}
}

func (t *ledgerTx) touchedIDs() []string {
	ids := make([]string, 0, len(t.touched))
	for id := range t.touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetComponents carrega os componentes em ordem de ID, a mesma ordem em que os locks são obtidos.
func (t *ledgerTx) GetComponents(ctx context.Context, ids []string, forUpdate bool) (map[string]domain.Component, error) {
	unique := uniqueSorted(ids)
	components := make(map[string]domain.Component, len(unique))
	if len(unique) == 0 {
		return components, nil
	}

	query := t.dialect.Rebind(`
        SELECT ` + rowscan.ComponentColumns + `
        FROM components
        WHERE id IN (` + database.InPlaceholders(1, len(unique)) + `)
        ORDER BY id` + t.dialect.ForUpdate(forUpdate))

	args := make([]interface{}, len(unique))
	for i, id := range unique {
		args[i] = id
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		t.logger.Error("Falha ao buscar componentes na transação.", err)
		return nil, database.Classify("Falha ao buscar componentes", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := rowscan.Component(rows)
		if err != nil {
			return nil, database.Classify("Falha ao ler componente", err)
		}
		components[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify("Falha ao iterar componentes", err)
	}

	t.logger.Debug("Componentes carregados na transação.", map[string]interface{}{"requested": len(unique), "found": len(components), "for_update": forUpdate})
	return components, nil
}

func (t *ledgerTx) InsertComponent(ctx context.Context, c domain.Component) error {
	query := t.dialect.Rebind(`
        INSERT INTO components (` + rowscan.ComponentColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`)

	_, err := t.tx.ExecContext(ctx, query,
		c.ID, c.Name, c.Quantity, c.Unit, c.MinStock, c.Location, c.Supplier,
		c.ImageRef, c.CategoryName, c.Consumable, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.logger.Error("Falha ao inserir componente.", err)
		return database.Classify("Falha ao inserir componente", err)
	}
	return nil
}

// UpdateComponentQuantity aplica a nova quantidade com controle de concorrência otimista (OCC).
func (t *ledgerTx) UpdateComponentQuantity(ctx context.Context, c domain.Component, newQuantity int) (domain.Component, error) {
	if newQuantity < 0 {
		t.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{"component_id": c.ID, "current_quantity": c.Quantity, "new_quantity": newQuantity})
		return domain.Component{}, apperror.NewInsufficientStockError(c.ID, c.Name, c.Quantity-newQuantity, c.Quantity)
	}

	now := time.Now().UTC()
	query := t.dialect.Rebind(`
        UPDATE components
        SET quantity = $1, version = $2, updated_at = $3
        WHERE id = $4 AND version = $5`)

	result, err := t.tx.ExecContext(ctx, query,
		newQuantity,
		c.Version+1, // Incrementa a versão
		now,
		c.ID,
		c.Version, // Checa a versão antiga para OCC
	)
	if err != nil {
		t.logger.Error("Falha ao atualizar quantidade do componente.", err)
		return domain.Component{}, database.Classify("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Component{}, database.Classify("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		t.logger.Warn("Falha no controle de concorrência otimista (OCC). Versão do registro desatualizada.", map[string]interface{}{
			"component_id":     c.ID,
			"expected_version": c.Version,
		})
		return domain.Component{}, apperror.NewConflictError(fmt.Sprintf("O componente %s foi modificado por outra operação. Tente novamente.", c.ID))
	}

	c.Quantity = newQuantity
	c.Version++
	c.UpdatedAt = now
	t.touched[c.ID] = struct{}{}
	return c, nil
}

func (t *ledgerTx) GetRequest(ctx context.Context, id string, forUpdate bool) (domain.Request, error) {
	query := t.dialect.Rebind(`
        SELECT ` + rowscan.RequestColumns + `
        FROM requests
        WHERE id = $1` + t.dialect.ForUpdate(forUpdate))

	req, err := rowscan.Request(t.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, apperror.NewNotFoundError(fmt.Sprintf("Requisição %s não existe.", id))
	}
	if err != nil {
		t.logger.Error("Falha ao buscar requisição na transação.", err)
		return domain.Request{}, database.Classify("Falha ao buscar requisição", err)
	}

	itemsQuery := t.dialect.Rebind(`
        SELECT ` + rowscan.RequestItemColumns + `
        FROM request_items ri
        JOIN components c ON c.id = ri.component_id
        WHERE ri.request_id = $1
        ORDER BY ri.position`)

	rows, err := t.tx.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return domain.Request{}, database.Classify("Falha ao buscar itens da requisição", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := rowscan.RequestItem(rows)
		if err != nil {
			return domain.Request{}, database.Classify("Falha ao ler item da requisição", err)
		}
		req.Items = append(req.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Request{}, database.Classify("Falha ao iterar itens da requisição", err)
	}

	return req, nil
}

func (t *ledgerTx) InsertRequest(ctx context.Context, req domain.Request) error {
	query := t.dialect.Rebind(`
        INSERT INTO requests (` + rowscan.RequestColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)

	_, err := t.tx.ExecContext(ctx, query,
		req.ID, req.PersonnelName, req.PersonnelEmail, string(req.Status), req.FaceImageRef,
		req.RequestedAt, req.ApprovedAt, req.ReturnedAt, req.UpdatedAt,
	)
	if err != nil {
		t.logger.Error("Falha ao inserir requisição.", err)
		return database.Classify("Falha ao inserir requisição", err)
	}

	return t.insertItems(ctx, req.ID, req.Items)
}

func (t *ledgerTx) UpdateRequest(ctx context.Context, req domain.Request) error {
	query := t.dialect.Rebind(`
        UPDATE requests
        SET personnel_name = $1, personnel_email = $2, status = $3, face_image_ref = $4,
            approved_at = $5, returned_at = $6, updated_at = $7
        WHERE id = $8`)

	result, err := t.tx.ExecContext(ctx, query,
		req.PersonnelName, req.PersonnelEmail, string(req.Status), req.FaceImageRef,
		req.ApprovedAt, req.ReturnedAt, req.UpdatedAt, req.ID,
	)
	if err != nil {
		t.logger.Error("Falha ao atualizar requisição.", err)
		return database.Classify("Falha ao atualizar requisição", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return database.Classify("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Requisição %s não existe.", req.ID))
	}
	return nil
}

func (t *ledgerTx) ReplaceRequestItems(ctx context.Context, requestID string, items []domain.RequestItem) error {
	if _, err := t.tx.ExecContext(ctx, t.dialect.Rebind(`DELETE FROM request_items WHERE request_id = $1`), requestID); err != nil {
		t.logger.Error("Falha ao remover itens da requisição.", err)
		return database.Classify("Falha ao remover itens da requisição", err)
	}
	return t.insertItems(ctx, requestID, items)
}

func (t *ledgerTx) insertItems(ctx context.Context, requestID string, items []domain.RequestItem) error {
	query := t.dialect.Rebind(`
        INSERT INTO request_items (id, request_id, component_id, quantity, description, consumable, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`)

	for i, item := range items {
		if _, err := t.tx.ExecContext(ctx, query, item.ID, requestID, item.ComponentID, item.Quantity, item.Description, item.Consumable, i); err != nil {
			t.logger.Error("Falha ao inserir item da requisição.", err)
			return database.Classify("Falha ao inserir item da requisição", err)
		}
	}
	return nil
}

func (t *ledgerTx) InsertUsage(ctx context.Context, u domain.UsageRecord) error {
	query := t.dialect.Rebind(`
        INSERT INTO usage_records (id, component_id, request_id, quantity, type, project, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)

	_, err := t.tx.ExecContext(ctx, query,
		u.ID, u.ComponentID, u.RequestID, u.Quantity, string(u.Type), u.Project, u.Notes, u.CreatedAt,
	)
	if err != nil {
		t.logger.Error("Falha ao registrar histórico de uso.", err)
		return database.Classify("Falha ao registrar histórico de uso", err)
	}
	return nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
