package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AvailabilityCache guarda a grade de slots de um profissional/dia
// por alguns segundos. Toda escrita de agendamento invalida a chave
// do dia; falha de cache nunca falha a operação.
type AvailabilityCache struct {
	rdb *redis.Client
	log *zap.Logger
	ttl time.Duration
}

func NewAvailabilityCache(addr string, log *zap.Logger) *AvailabilityCache {
	if addr == "" {
		return nil
	}

	return &AvailabilityCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: log,
		ttl: 60 * time.Second,
	}
}

func key(employeeID uint, day string) string {
	return fmt.Sprintf("availability:%d:%s", employeeID, day)
}

func (c *AvailabilityCache) Get(ctx context.Context, employeeID uint, day string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, key(employeeID, day)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("availability cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (c *AvailabilityCache) Set(ctx context.Context, employeeID uint, day string, payload []byte) {
	if c == nil {
		return
	}

	if err := c.rdb.Set(ctx, key(employeeID, day), payload, c.ttl).Err(); err != nil {
		c.log.Debug("availability cache write failed", zap.Error(err))
	}
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, employeeID uint, day string) {
	if c == nil {
		return
	}

	if err := c.rdb.Del(ctx, key(employeeID, day)).Err(); err != nil {
		c.log.Debug("availability cache invalidation failed", zap.Error(err))
	}
}
