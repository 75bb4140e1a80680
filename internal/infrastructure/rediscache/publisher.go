package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jhoicas/farmacia-api/internal/application/events"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher reenvía eventos de dominio a un canal Redis (<prefijo>:<tópico>) e invalida
// las claves cacheadas que el evento deja obsoletas.
type Publisher struct {
	client commander
	prefix string
}

// NewPublisher construye el publicador. prefix suele ser cfg.Redis.Channel.
func NewPublisher(client commander, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Channel nombre del canal para un tópico.
func (p *Publisher) Channel(topic string) string {
	if p.prefix == "" {
		return topic
	}
	return p.prefix + ":" + topic
}

// Encode serializa el evento tal como viaja por el canal.
func Encode(e events.Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("serializar evento %s: %w", e.Topic, err)
	}
	return b, nil
}

// Publish invalida la caché y publica. Todo tópico de compras deja obsoleto el estado
// de recepción cacheado de la orden. Devuelve el primer error de Redis.
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	if slices.Contains(events.PurchaseTopics, e.Topic) {
		if err := p.client.Del(ctx, receivingKey(e.OrganizationID, e.ResourceID)).Err(); err != nil {
			return fmt.Errorf("invalidar %s: %w", receivingKey(e.OrganizationID, e.ResourceID), err)
		}
	}
	payload, err := Encode(e)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.Channel(e.Topic), payload).Err(); err != nil {
		return fmt.Errorf("publicar en %s: %w", p.Channel(e.Topic), err)
	}
	return nil
}
