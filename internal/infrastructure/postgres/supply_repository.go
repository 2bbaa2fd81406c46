package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.SupplyRepository = (*SupplyRepo)(nil)

const supplyColumns = `id, tenant_id, supplier_id, supply_date, purchase_order_ref, delivery_note_number,
	invoice_number, is_credit_note, notes, total_amount, status, validated_at, validated_by,
	created_at, created_by, updated_at, updated_by`

// SupplyRepo aprovisionamientos (cabecera + líneas) sobre PostgreSQL.
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

// Create inserta cabecera y líneas.
func (r *SupplyRepo) Create(ctx context.Context, s *entity.Supply) error {
	_, err := r.q.Exec(ctx, `INSERT INTO supplies (`+supplyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		s.ID, s.TenantID, s.SupplierID, s.SupplyDate, s.PurchaseOrderRef, s.DeliveryNoteNumber,
		s.InvoiceNumber, s.IsCreditNote, s.Notes, s.TotalAmount, s.Status, s.ValidatedAt, s.ValidatedBy,
		s.CreatedAt, s.CreatedBy, s.UpdatedAt, s.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supply: %w", err)
	}
	return r.insertItems(ctx, s)
}

// GetByID obtiene el aprovisionamiento con sus líneas. nil, nil si no existe.
func (r *SupplyRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Supply, error) {
	return r.get(ctx, `SELECT `+supplyColumns+` FROM supplies WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
func (r *SupplyRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Supply, error) {
	return r.get(ctx, `SELECT `+supplyColumns+` FROM supplies WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *SupplyRepo) get(ctx context.Context, query, tenantID, id string) (*entity.Supply, error) {
	s, err := scanSupply(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}
	if s.Items, err = r.loadItems(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// Save reescribe cabecera y líneas.
func (r *SupplyRepo) Save(ctx context.Context, s *entity.Supply) error {
	tag, err := r.q.Exec(ctx, `UPDATE supplies SET supplier_id = $3, supply_date = $4, purchase_order_ref = $5,
		delivery_note_number = $6, invoice_number = $7, is_credit_note = $8, notes = $9, total_amount = $10,
		status = $11, validated_at = $12, validated_by = $13, updated_at = $14, updated_by = $15
		WHERE tenant_id = $1 AND id = $2`,
		s.TenantID, s.ID, s.SupplierID, s.SupplyDate, s.PurchaseOrderRef, s.DeliveryNoteNumber,
		s.InvoiceNumber, s.IsCreditNote, s.Notes, s.TotalAmount, s.Status, s.ValidatedAt, s.ValidatedBy,
		s.UpdatedAt, s.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM supply_items WHERE supply_id = $1`, s.ID); err != nil {
		return fmt.Errorf("delete supply items: %w", err)
	}
	return r.insertItems(ctx, s)
}

// Delete elimina el aprovisionamiento (las líneas caen por ON DELETE CASCADE).
func (r *SupplyRepo) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM supplies WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List aprovisionamientos más recientes primero; status vacío no filtra.
func (r *SupplyRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.Supply, error) {
	rows, err := r.q.Query(ctx, `SELECT `+supplyColumns+` FROM supplies
		WHERE tenant_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	var out []*entity.Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if s.Items, err = r.loadItems(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SupplyRepo) insertItems(ctx context.Context, s *entity.Supply) error {
	for pos, it := range s.Items {
		_, err := r.q.Exec(ctx, `INSERT INTO supply_items
			(id, supply_id, position, product_id, product_name, quantity, unit_price, lot_expiration)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, s.ID, pos, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.LotExpiration)
		if err != nil {
			return fmt.Errorf("insert supply item: %w", err)
		}
	}
	return nil
}

func (r *SupplyRepo) loadItems(ctx context.Context, supplyID string) ([]entity.SupplyItem, error) {
	rows, err := r.q.Query(ctx, `SELECT id, product_id, product_name, quantity, unit_price, lot_expiration
		FROM supply_items WHERE supply_id = $1 ORDER BY position`, supplyID)
	if err != nil {
		return nil, fmt.Errorf("list supply items: %w", err)
	}
	defer rows.Close()
	var items []entity.SupplyItem
	for rows.Next() {
		var it entity.SupplyItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LotExpiration); err != nil {
			return nil, fmt.Errorf("scan supply item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanSupply(row pgx.Row) (*entity.Supply, error) {
	var s entity.Supply
	err := row.Scan(&s.ID, &s.TenantID, &s.SupplierID, &s.SupplyDate, &s.PurchaseOrderRef,
		&s.DeliveryNoteNumber, &s.InvoiceNumber, &s.IsCreditNote, &s.Notes, &s.TotalAmount, &s.Status,
		&s.ValidatedAt, &s.ValidatedBy, &s.CreatedAt, &s.CreatedBy, &s.UpdatedAt, &s.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
