// Package rowscan reúne as listas de colunas e o mapeamento linha -> entidade
// compartilhados pelos repositórios SQL.
package rowscan

import (
	"database/sql"
	"time"

	"stockroom/internal/domain"
)

// Scanner é satisfeito por *sql.Row e *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

const ComponentColumns = `id, name, quantity, unit, min_stock, location, supplier, image_ref, category_name, consumable, version, created_at, updated_at`

// Component mapeia uma linha de ComponentColumns.
func Component(s Scanner) (domain.Component, error) {
	var c domain.Component
	err := s.Scan(
		&c.ID, &c.Name, &c.Quantity, &c.Unit, &c.MinStock, &c.Location, &c.Supplier,
		&c.ImageRef, &c.CategoryName, &c.Consumable, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const RequestColumns = `id, personnel_name, personnel_email, status, face_image_ref, requested_at, approved_at, returned_at, updated_at`

// Request mapeia uma linha de RequestColumns (sem os itens).
func Request(s Scanner) (domain.Request, error) {
	var (
		r          domain.Request
		status     string
		approvedAt sql.NullTime
		returnedAt sql.NullTime
	)
	err := s.Scan(
		&r.ID, &r.PersonnelName, &r.PersonnelEmail, &status, &r.FaceImageRef,
		&r.RequestedAt, &approvedAt, &returnedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.Request{}, err
	}
	r.Status = domain.RequestStatus(status)
	r.ApprovedAt = nullTime(approvedAt)
	r.ReturnedAt = nullTime(returnedAt)
	r.Items = []domain.RequestItem{}
	return r, nil
}

// RequestItemColumns exige o JOIN "request_items ri JOIN components c ON c.id = ri.component_id".
// ri.consumable é o valor gravado no item (fixado na aprovação), não o atual do componente.
const RequestItemColumns = `ri.id, ri.request_id, ri.component_id, c.name, ri.quantity, ri.description, ri.consumable`

// RequestItem mapeia uma linha de RequestItemColumns.
func RequestItem(s Scanner) (domain.RequestItem, error) {
	var item domain.RequestItem
	err := s.Scan(
		&item.ID, &item.RequestID, &item.ComponentID, &item.ComponentName,
		&item.Quantity, &item.Description, &item.Consumable,
	)
	return item, err
}

// UsageColumns exige o JOIN "usage_records u JOIN components c ON c.id = u.component_id".
const UsageColumns = `u.id, u.component_id, c.name, u.request_id, u.quantity, u.type, u.project, u.notes, u.created_at`

// Usage mapeia uma linha de UsageColumns.
func Usage(s Scanner) (domain.UsageRecord, error) {
	var (
		u         domain.UsageRecord
		usageType string
	)
	err := s.Scan(
		&u.ID, &u.ComponentID, &u.ComponentName, &u.RequestID,
		&u.Quantity, &usageType, &u.Project, &u.Notes, &u.CreatedAt,
	)
	u.Type = domain.UsageType(usageType)
	return u, err
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
