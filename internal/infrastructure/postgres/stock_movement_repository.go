package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, tenant_id, product_id, movement_type, quantity_delta, stock_before, stock_after,
	unit_cost, reference_type, reference_id, actor, actor_label, notes, created_at`

// StockMovementRepo diario de stock sobre PostgreSQL. La tabla solo recibe INSERT; un trigger
// rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta una entrada.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	var unitCost decimal.NullDecimal
	if m.UnitCost != nil {
		unitCost = decimal.NewNullDecimal(*m.UnitCost)
	}
	_, err := r.q.Exec(ctx, `INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.ID, m.TenantID, m.ProductID, string(m.Type), m.Quantity, m.StockBefore, m.StockAfter,
		unitCost, m.ReferenceType, m.ReferenceID, m.Actor, m.ActorLabel, m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// List entradas del filtro en orden cronológico ascendente, paginadas.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.iterate(ctx, f, true, func(m *entity.StockMovement) error {
		out = append(out, m)
		return nil
	})
	return out, err
}

// Stream recorre todas las entradas del filtro sin paginar.
func (r *StockMovementRepo) Stream(ctx context.Context, f entity.MovementFilter, fn func(*entity.StockMovement) error) error {
	return r.iterate(ctx, f, false, fn)
}

func (r *StockMovementRepo) iterate(ctx context.Context, f entity.MovementFilter, paged bool, fn func(*entity.StockMovement) error) error {
	where := []string{"tenant_id = $1"}
	args := []any{f.TenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Type != "" {
		add("movement_type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at, seq`
	if paged {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query stock movements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return fmt.Errorf("scan stock movement: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m        entity.StockMovement
		typ      string
		unitCost decimal.NullDecimal
	)
	err := row.Scan(&m.ID, &m.TenantID, &m.ProductID, &typ, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&unitCost, &m.ReferenceType, &m.ReferenceID, &m.Actor, &m.ActorLabel, &m.Notes, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	if unitCost.Valid {
		c := unitCost.Decimal
		m.UnitCost = &c
	}
	return &m, nil
}
