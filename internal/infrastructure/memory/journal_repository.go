package memory

import (
	"context"
	"time"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var (
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.PriceHistoryRepository  = (*priceRepo)(nil)
)

var now = time.Now

// movementRepo diario de stock: el slice crece solo por el final.
type movementRepo struct {
	s    *Store
	undo *undoLog
}

func (r *movementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.movements = append(r.s.movements, &c)
	n := len(r.s.movements) - 1
	r.undo.push(func() { r.s.movements = r.s.movements[:n] })
	return nil
}

func (r *movementRepo) matching(f entity.MovementFilter) []*entity.StockMovement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for _, m := range r.s.movements {
		if m.TenantID != f.TenantID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	return out
}

func (r *movementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	return paginate(r.matching(f), f.Limit, f.Offset), nil
}

func (r *movementRepo) Stream(ctx context.Context, f entity.MovementFilter, fn func(*entity.StockMovement) error) error {
	for _, m := range r.matching(f) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// priceRepo historial de precios; List devuelve lo más reciente primero.
type priceRepo struct {
	s    *Store
	undo *undoLog
}

func (r *priceRepo) Append(_ context.Context, p *entity.PriceChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.prices = append(r.s.prices, &c)
	n := len(r.s.prices) - 1
	r.undo.push(func() { r.s.prices = r.s.prices[:n] })
	return nil
}

func (r *priceRepo) matching(tenantID, productID string, changeType entity.PriceChangeType) []*entity.PriceChange {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.PriceChange, 0)
	for i := len(r.s.prices) - 1; i >= 0; i-- {
		p := r.s.prices[i]
		if p.TenantID != tenantID {
			continue
		}
		if productID != "" && p.ProductID != productID {
			continue
		}
		if changeType != "" && p.ChangeType != changeType {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out
}

func (r *priceRepo) List(_ context.Context, f entity.PriceFilter) ([]*entity.PriceChange, error) {
	return paginate(r.matching(f.TenantID, f.ProductID, f.ChangeType), f.Limit, f.Offset), nil
}

func (r *priceRepo) Count(_ context.Context, tenantID, productID string) (int, error) {
	return len(r.matching(tenantID, productID, "")), nil
}

func (r *priceRepo) Last(_ context.Context, tenantID, productID string) (*entity.PriceChange, error) {
	all := r.matching(tenantID, productID, "")
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}
