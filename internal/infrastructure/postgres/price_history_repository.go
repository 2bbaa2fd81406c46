package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.PriceHistoryRepository = (*PriceHistoryRepo)(nil)

const priceColumns = `id, tenant_id, product_id, purchase_price, selling_price, purchase_price_before,
	selling_price_before, change_type, effective_at, lot_expiration, reference_type, reference_id,
	actor, actor_label, notes, created_at`

// PriceHistoryRepo historial de precios sobre PostgreSQL (solo INSERT).
type PriceHistoryRepo struct {
	q Querier
}

// NewPriceHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceHistoryRepository(q Querier) *PriceHistoryRepo {
	return &PriceHistoryRepo{q: q}
}

// Append inserta una entrada.
func (r *PriceHistoryRepo) Append(ctx context.Context, p *entity.PriceChange) error {
	_, err := r.q.Exec(ctx, `INSERT INTO price_history (`+priceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.TenantID, p.ProductID, p.PurchasePrice, p.SellingPrice, p.PurchasePriceBefore,
		p.SellingPriceBefore, string(p.ChangeType), p.EffectiveAt, p.LotExpiration, p.ReferenceType,
		p.ReferenceID, p.Actor, p.ActorLabel, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append price change: %w", err)
	}
	return nil
}

// List entradas del filtro, más recientes primero.
func (r *PriceHistoryRepo) List(ctx context.Context, f entity.PriceFilter) ([]*entity.PriceChange, error) {
	where := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.ChangeType != "" {
		args = append(args, string(f.ChangeType))
		where = append(where, fmt.Sprintf("change_type = $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + priceColumns + ` FROM price_history WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()
	var out []*entity.PriceChange
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price change: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count cantidad de entradas del producto.
func (r *PriceHistoryRepo) Count(ctx context.Context, tenantID, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM price_history WHERE tenant_id = $1 AND product_id = $2`,
		tenantID, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count price history: %w", err)
	}
	return n, nil
}

// Last entrada más reciente del producto; nil si no hay.
func (r *PriceHistoryRepo) Last(ctx context.Context, tenantID, productID string) (*entity.PriceChange, error) {
	p, err := scanPrice(r.q.QueryRow(ctx,
		`SELECT `+priceColumns+` FROM price_history WHERE tenant_id = $1 AND product_id = $2
		 ORDER BY created_at DESC, seq DESC LIMIT 1`, tenantID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last price change: %w", err)
	}
	return p, nil
}

func scanPrice(row pgx.Row) (*entity.PriceChange, error) {
	var (
		p   entity.PriceChange
		typ string
	)
	err := row.Scan(&p.ID, &p.TenantID, &p.ProductID, &p.PurchasePrice, &p.SellingPrice,
		&p.PurchasePriceBefore, &p.SellingPriceBefore, &typ, &p.EffectiveAt, &p.LotExpiration,
		&p.ReferenceType, &p.ReferenceID, &p.Actor, &p.ActorLabel, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ChangeType = entity.PriceChangeType(typ)
	return &p, nil
}
