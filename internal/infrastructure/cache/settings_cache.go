package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/pkg/config"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

var _ repository.SettingsRepository = (*SettingsCache)(nil)

const settingsKeyPrefix = "ledger:settings:"

// SettingsCache decorador de SettingsRepository con Redis. Si Redis no responde se lee del
// repositorio subyacente; un error de caché nunca bloquea una operación del ledger.
type SettingsCache struct {
	next   repository.SettingsRepository
	client redis.UniversalClient
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewSettingsCache envuelve next con la caché.
func NewSettingsCache(next repository.SettingsRepository, client redis.UniversalClient, ttl time.Duration, log *logger.Logger) *SettingsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsCache{next: next, client: client, ttl: ttl, log: log.Component("settings_cache")}
}

// Get lee de Redis; en miss o error consulta el repositorio y repuebla la clave.
func (c *SettingsCache) Get(ctx context.Context, tenantID string) (*entity.Settings, error) {
	key := settingsKeyPrefix + tenantID
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var s entity.Settings
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return &s, nil
		}
		c.log.Warn().Str("tenant_id", tenantID).Msg("entrada de caché ilegible, se descarta")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("redis no disponible, lectura directa")
	}

	s, err := c.next.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

// Upsert escribe en el repositorio e invalida la clave.
func (c *SettingsCache) Upsert(ctx context.Context, s *entity.Settings) error {
	if err := c.next.Upsert(ctx, s); err != nil {
		return err
	}
	if err := c.client.Del(ctx, settingsKeyPrefix+s.TenantID).Err(); err != nil {
		c.log.Warn().Err(err).Str("tenant_id", s.TenantID).Msg("no se pudo invalidar la caché")
	}
	return nil
}

func (c *SettingsCache) store(ctx context.Context, s *entity.Settings) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, settingsKeyPrefix+s.TenantID, raw, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("tenant_id", s.TenantID).Msg("no se pudo poblar la caché")
	}
}
