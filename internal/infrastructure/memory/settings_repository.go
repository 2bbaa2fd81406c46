package memory

import (
	"context"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ repository.SettingsRepository = (*settingsRepo)(nil)

type settingsRepo struct {
	s *Store
}

func (r *settingsRepo) Get(_ context.Context, tenantID string) (*entity.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if st, ok := r.s.settings[tenantID]; ok {
		c := *st
		return &c, nil
	}
	return entity.DefaultSettings(tenantID), nil
}

func (r *settingsRepo) Upsert(_ context.Context, settings *entity.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *settings
	r.s.settings[settings.TenantID] = &c
	return nil
}
