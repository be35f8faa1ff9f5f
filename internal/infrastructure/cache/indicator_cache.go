package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
)

var _ inventory.SnapshotCache = (*IndicatorCache)(nil)

const (
	versionKey  = "stock:cache:version"
	bumpChannel = "stock.bump"
)

// IndicatorCache caché Redis versionada para derivaciones de stock. Las claves llevan la versión
// vigente; Bump la incrementa y deja huérfano todo lo anterior (expira por TTL).
// Un *IndicatorCache nil o sin cliente delega siempre en el loader.
type IndicatorCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewIndicatorCache construye la caché.
func NewIndicatorCache(client *redis.Client, ttl time.Duration) *IndicatorCache {
	return &IndicatorCache{client: client, ttl: ttl}
}

// Version devuelve la versión vigente, inicializándola si falta.
func (c *IndicatorCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX: dos réplicas arrancando a la vez no se pisan
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// FetchJSON devuelve el valor cacheado en key (versionada) o lo calcula con loader y lo guarda.
func (c *IndicatorCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c == nil || c.client == nil {
		return loadInto(ctx, dest, loader)
	}

	ver, err := c.Version(ctx)
	if err != nil {
		return err
	}
	versioned := key + ":v" + strconv.FormatInt(ver, 10)

	payload, err := c.client.Get(ctx, versioned).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, versioned, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida todo lo cacheado y publica la nueva versión.
func (c *IndicatorCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

func loadInto(ctx context.Context, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
