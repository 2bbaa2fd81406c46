package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	s    *Store
	undo *undoLog
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func (r *productRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(product.TenantID, product.ID)
	if _, ok := r.s.products[k]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[k] = cloneProduct(product)
	r.undo.push(func() { delete(r.s.products, k) })
	return nil
}

func (r *productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[key(tenantID, id)]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

// GetForUpdate dentro de Run la serialización de transacciones ya garantiza exclusividad.
func (r *productRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *productRepo) UpdateStock(_ context.Context, tenantID, id string, stock int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	prev, prevAt := p.Stock, p.UpdatedAt
	p.Stock = stock
	p.UpdatedAt = now()
	r.undo.push(func() { p.Stock, p.UpdatedAt = prev, prevAt })
	return nil
}

func (r *productRepo) UpdatePrices(_ context.Context, tenantID, id string, purchase, selling decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	prevP, prevS, prevAt := p.PurchasePrice, p.SellingPrice, p.UpdatedAt
	p.PurchasePrice, p.SellingPrice = purchase, selling
	p.UpdatedAt = now()
	r.undo.push(func() { p.PurchasePrice, p.SellingPrice, p.UpdatedAt = prevP, prevS, prevAt })
	return nil
}

func (r *productRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	return paginate(r.filter(tenantID, func(*entity.Product) bool { return true }), limit, offset), nil
}

func (r *productRepo) ListLowStock(_ context.Context, tenantID string, threshold int64) ([]*entity.Product, error) {
	return r.filter(tenantID, func(p *entity.Product) bool { return p.IsLowStock(threshold) }), nil
}

// filter productos de la agencia ordenados por nombre.
func (r *productRepo) filter(tenantID string, keep func(*entity.Product) bool) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if p.TenantID == tenantID && keep(p) {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
