package ports

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Tipos de evento emitidos por los casos de uso.
const (
	EventStockLow         = "stock.low"
	EventSaleCreated      = "sale.created"
	EventReconciliation   = "stock.reconciliation_required"
	EventReturnRecorded   = "return.recorded"
	EventExchangeRecorded = "exchange.recorded"
)

// Event aviso operativo para el equipo (alertas de stock, ventas, incidencias).
type Event struct {
	Type       string         `json:"type"`
	EntityID   string         `json:"entity_id"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notifier sumidero de eventos. Es "fire-and-forget": un error se registra en log,
// nunca invalida la operación de negocio que lo emitió.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// NoopNotifier descarta los eventos (sin Redis configurado y en tests).
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Event) error { return nil }

const publishTimeout = 2 * time.Second

// Publish envía e en segundo plano y vuelve enseguida: usa un contexto desligado de la
// petición con un plazo corto y solo registra el error.
func Publish(ctx context.Context, n Notifier, log zerolog.Logger, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()
		if err := n.Notify(nctx, e); err != nil {
			log.Warn().Err(err).Str("event", e.Type).Str("entity_id", e.EntityID).Msg("no se pudo publicar el evento")
		}
	}()
}
