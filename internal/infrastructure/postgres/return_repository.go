package postgres

import (
	"context"
	"fmt"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `r.id, r.tenant_id, r.number, r.sale_id, s.number, r.total_refund, r.reason,
	r.actor, r.actor_label, r.created_at`

// ReturnRepo devoluciones sobre PostgreSQL.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create inserta la devolución y sus líneas.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.SaleReturn) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sale_returns (id, tenant_id, number, sale_id, total_refund, reason, actor, actor_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ret.ID, ret.TenantID, ret.Number, ret.SaleID, ret.TotalRefund, ret.Reason, ret.Actor, ret.ActorLabel, ret.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale return: %w", err)
	}
	for pos, it := range ret.Items {
		_, err := r.q.Exec(ctx, `INSERT INTO return_items (return_id, position, product_id, product_name, quantity, unit_price, refund)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ret.ID, pos, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Refund)
		if err != nil {
			return fmt.Errorf("insert return item: %w", err)
		}
	}
	return nil
}

// ListBySale devoluciones de una venta en orden cronológico.
func (r *ReturnRepo) ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.SaleReturn, error) {
	return r.list(ctx, `SELECT `+returnColumns+` FROM sale_returns r JOIN sales s ON s.id = r.sale_id
		WHERE r.tenant_id = $1 AND r.sale_id = $2 ORDER BY r.created_at`, tenantID, saleID)
}

// List devoluciones de la agencia, más recientes primero.
func (r *ReturnRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.SaleReturn, error) {
	return r.list(ctx, `SELECT `+returnColumns+` FROM sale_returns r JOIN sales s ON s.id = r.sale_id
		WHERE r.tenant_id = $1 ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
}

func (r *ReturnRepo) list(ctx context.Context, query string, args ...any) ([]*entity.SaleReturn, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sale returns: %w", err)
	}
	var out []*entity.SaleReturn
	for rows.Next() {
		var ret entity.SaleReturn
		if err := rows.Scan(&ret.ID, &ret.TenantID, &ret.Number, &ret.SaleID, &ret.SaleNumber,
			&ret.TotalRefund, &ret.Reason, &ret.Actor, &ret.ActorLabel, &ret.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale return: %w", err)
		}
		out = append(out, &ret)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, ret := range out {
		if ret.Items, err = r.loadItems(ctx, ret.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *ReturnRepo) loadItems(ctx context.Context, returnID string) ([]entity.ReturnItem, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, product_name, quantity, unit_price, refund
		FROM return_items WHERE return_id = $1 ORDER BY position`, returnID)
	if err != nil {
		return nil, fmt.Errorf("list return items: %w", err)
	}
	defer rows.Close()
	var items []entity.ReturnItem
	for rows.Next() {
		var it entity.ReturnItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Refund); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
