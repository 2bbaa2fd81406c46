package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, tenant_id, number, customer_id, total, payment_method, actor, actor_label,
	created_at, deleted_at, deleted_by`

// SaleRepo ventas sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta y sus líneas.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.TenantID, s.Number, s.CustomerID, s.Total, s.PaymentMethod, s.Actor, s.ActorLabel,
		s.CreatedAt, s.DeletedAt, s.DeletedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for pos, it := range s.Items {
		_, err := r.q.Exec(ctx, `INSERT INTO sale_items (sale_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`, s.ID, pos, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas. nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate bloquea la venta hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *SaleRepo) get(ctx context.Context, query, tenantID, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if s.Items, err = r.loadItems(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// MarkDeleted baja lógica de la venta.
func (r *SaleRepo) MarkDeleted(ctx context.Context, tenantID, id, actor string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sales SET deleted_at = $3, deleted_by = $4 WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`,
		tenantID, id, at, actor)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1
		ORDER BY created_at DESC, number DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
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

// NextNumber incrementa y devuelve el consecutivo de la serie. La fila queda bloqueada
// hasta el fin de la transacción, de modo que los números no se repiten.
func (r *SaleRepo) NextNumber(ctx context.Context, tenantID, series string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `INSERT INTO ledger_sequences (tenant_id, series, value) VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, series) DO UPDATE SET value = ledger_sequences.value + 1
		RETURNING value`, tenantID, series).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next number %s: %w", series, err)
	}
	return n, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, product_name, quantity, unit_price
		FROM sale_items WHERE sale_id = $1 ORDER BY position`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var items []entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.TenantID, &s.Number, &s.CustomerID, &s.Total, &s.PaymentMethod,
		&s.Actor, &s.ActorLabel, &s.CreatedAt, &s.DeletedAt, &s.DeletedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
