package memory

import (
	"context"
	"sort"

	"github.com/dynsoft/pharma-ledger/internal/domain"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.SupplyRepository = (*supplyRepo)(nil)

type supplyRepo struct {
	s    *Store
	undo *undoLog
}

func cloneSupply(s *entity.Supply) *entity.Supply {
	c := *s
	c.Items = append([]entity.SupplyItem(nil), s.Items...)
	if s.ValidatedAt != nil {
		at := *s.ValidatedAt
		c.ValidatedAt = &at
	}
	return &c
}

func (r *supplyRepo) Create(_ context.Context, supply *entity.Supply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(supply.TenantID, supply.ID)
	if _, ok := r.s.supplies[k]; ok {
		return domain.ErrDuplicate
	}
	r.s.supplies[k] = cloneSupply(supply)
	r.undo.push(func() { delete(r.s.supplies, k) })
	return nil
}

func (r *supplyRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Supply, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.supplies[key(tenantID, id)]
	if !ok {
		return nil, nil
	}
	return cloneSupply(s), nil
}

func (r *supplyRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Supply, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *supplyRepo) Save(_ context.Context, supply *entity.Supply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(supply.TenantID, supply.ID)
	prev, ok := r.s.supplies[k]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.supplies[k] = cloneSupply(supply)
	r.undo.push(func() { r.s.supplies[k] = prev })
	return nil
}

func (r *supplyRepo) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	prev, ok := r.s.supplies[k]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.s.supplies, k)
	r.undo.push(func() { r.s.supplies[k] = prev })
	return nil
}

func (r *supplyRepo) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.Supply, error) {
	r.s.mu.RLock()
	out := make([]*entity.Supply, 0)
	for _, s := range r.s.supplies {
		if s.TenantID == tenantID && (status == "" || s.Status == status) {
			out = append(out, cloneSupply(s))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}
