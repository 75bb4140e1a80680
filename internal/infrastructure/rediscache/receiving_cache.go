package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
)

// ReceivingStatusReader lo implementa purchasing.PurchaseOrderUseCase.
type ReceivingStatusReader interface {
	ReceivingStatus(ctx context.Context, organizationID, orderID string) (*dto.ReceivingStatusDTO, error)
}

// ReceivingStatusCache cachea el estado de recepción por orden. Publisher borra la clave
// al publicar purchase.received; el TTL acota lo obsoleto si el evento se pierde.
// Un fallo de Redis nunca falla la lectura: se cae a la fuente.
type ReceivingStatusCache struct {
	next   ReceivingStatusReader
	client commander
	ttl    time.Duration
	log    zerolog.Logger
}

// NewReceivingStatusCache envuelve next.
func NewReceivingStatusCache(next ReceivingStatusReader, client commander, ttl time.Duration, log zerolog.Logger) *ReceivingStatusCache {
	return &ReceivingStatusCache{next: next, client: client, ttl: ttl, log: log}
}

// ReceivingStatus lee de Redis y si no está, de next (y guarda el resultado).
func (c *ReceivingStatusCache) ReceivingStatus(ctx context.Context, organizationID, orderID string) (*dto.ReceivingStatusDTO, error) {
	key := receivingKey(organizationID, orderID)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached dto.ReceivingStatusDTO
		if jerr := json.Unmarshal([]byte(val), &cached); jerr == nil {
			return &cached, nil
		}
		c.log.Warn().Str("key", key).Msg("valor cacheado ilegible; se descarta")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("redis GET falló; se lee de la base")
	}

	out, err := c.next.ReceivingStatus(ctx, organizationID, orderID)
	if err != nil {
		return nil, err
	}
	if b, jerr := json.Marshal(out); jerr == nil {
		if serr := c.client.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Str("key", key).Msg("redis SET falló")
		}
	}
	return out, nil
}
