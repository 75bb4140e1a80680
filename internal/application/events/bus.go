// Package events define el contrato publicar/suscribir con el que los casos de uso
// notifican cambios (p. ej. una orden recibida) a quien necesite refrescar vistas o cachés.
package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Tópicos publicados por la aplicación.
const (
	TopicPurchaseReceived  = "purchase.received"
	TopicPurchaseOrdered   = "purchase.ordered"
	TopicPurchaseCancelled = "purchase.cancelled"
)

// PurchaseTopics tópicos que cambian el estado de una orden de compra.
var PurchaseTopics = []string{TopicPurchaseReceived, TopicPurchaseOrdered, TopicPurchaseCancelled}

// Event notificación de un cambio ya confirmado en base de datos.
type Event struct {
	Topic          string    `json:"topic"`
	OrganizationID string    `json:"organization_id"`
	ResourceID     string    `json:"resource_id"`
	OccurredAt     time.Time `json:"occurred_at"`
	Payload        any       `json:"payload,omitempty"`
}

// PurchaseReceivedPayload datos del evento purchase.received.
type PurchaseReceivedPayload struct {
	Status        string   `json:"status"`
	ReceivedItems int      `json:"received_items"`
	FullyReceived bool     `json:"fully_received"`
	MedicineIDs   []string `json:"medicine_ids"`
	UserID        string   `json:"user_id"`
}

// PurchaseStatusPayload datos de purchase.ordered y purchase.cancelled.
type PurchaseStatusPayload struct {
	Status string `json:"status"`
}

// Publisher publica eventos. Lo implementan Bus y los adaptadores externos (Redis).
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler procesa un evento; su error se agrega al resultado de Publish.
type Handler func(ctx context.Context, event Event) error

// Bus canal publicar/suscribir en proceso. Seguro para uso concurrente.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

// NewBus construye un bus vacío.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[uint64]Handler)}
}

// Subscribe registra h para topic y devuelve la función que lo da de baja.
// Llamar la función más de una vez no tiene efecto.
func (b *Bus) Subscribe(topic string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]Handler)
	}
	b.subs[topic][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
		})
	}
}

// Publish entrega event a los suscriptores del tópico, en orden de suscripción y de forma síncrona.
// Un suscriptor que falla no impide la entrega a los demás.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subs[event.Topic]))
	for id := range b.subs[event.Topic] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[event.Topic][id])
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribers número de suscriptores de topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Forward suscribe al bus un Publisher externo para topic (p. ej. Redis).
func (b *Bus) Forward(topic string, p Publisher) (unsubscribe func()) {
	return b.Subscribe(topic, func(ctx context.Context, event Event) error {
		return p.Publish(ctx, event)
	})
}
