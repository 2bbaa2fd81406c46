package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var (
	_ repository.SaleRepository   = (*saleRepo)(nil)
	_ repository.ReturnRepository = (*returnRepo)(nil)
)

type saleRepo struct {
	s    *Store
	undo *undoLog
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = append([]entity.SaleItem(nil), s.Items...)
	if s.DeletedAt != nil {
		at := *s.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(sale.TenantID, sale.ID)
	if _, ok := r.s.sales[k]; ok {
		return domain.ErrDuplicate
	}
	r.s.sales[k] = cloneSale(sale)
	r.undo.push(func() { delete(r.s.sales, k) })
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.sales[key(tenantID, id)]
	if !ok {
		return nil, nil
	}
	return cloneSale(s), nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *saleRepo) MarkDeleted(_ context.Context, tenantID, id, actor string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	s.DeletedAt = &at
	s.DeletedBy = actor
	r.undo.push(func() { s.DeletedAt, s.DeletedBy = nil, "" })
	return nil
}

func (r *saleRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	out := make([]*entity.Sale, 0)
	for _, s := range r.s.sales {
		if s.TenantID == tenantID {
			out = append(out, cloneSale(s))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Number > out[j].Number
	})
	return paginate(out, limit, offset), nil
}

func (r *saleRepo) NextNumber(_ context.Context, tenantID, series string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, series)
	r.s.sequences[k]++
	r.undo.push(func() { r.s.sequences[k]-- })
	return r.s.sequences[k], nil
}

type returnRepo struct {
	s    *Store
	undo *undoLog
}

func cloneReturn(r *entity.SaleReturn) *entity.SaleReturn {
	c := *r
	c.Items = append([]entity.ReturnItem(nil), r.Items...)
	return &c
}

func (r *returnRepo) Create(_ context.Context, ret *entity.SaleReturn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.returns = append(r.s.returns, cloneReturn(ret))
	n := len(r.s.returns) - 1
	r.undo.push(func() { r.s.returns = r.s.returns[:n] })
	return nil
}

func (r *returnRepo) ListBySale(_ context.Context, tenantID, saleID string) ([]*entity.SaleReturn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.SaleReturn, 0)
	for _, ret := range r.s.returns {
		if ret.TenantID == tenantID && ret.SaleID == saleID {
			out = append(out, cloneReturn(ret))
		}
	}
	return out, nil
}

func (r *returnRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*entity.SaleReturn, error) {
	r.s.mu.RLock()
	out := make([]*entity.SaleReturn, 0)
	for i := len(r.s.returns) - 1; i >= 0; i-- {
		if r.s.returns[i].TenantID == tenantID {
			out = append(out, cloneReturn(r.s.returns[i]))
		}
	}
	r.s.mu.RUnlock()
	return paginate(out, limit, offset), nil
}
