package ports_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/StockPOS-api/internal/application/ports"
)

// slowNotifier simula un Redis caído: retiene cada evento hasta que se libera.
type slowNotifier struct {
	got     chan ports.Event
	ctxErr  chan error
	release chan struct{}
}

func (n *slowNotifier) Notify(ctx context.Context, e ports.Event) error {
	n.ctxErr <- ctx.Err()
	n.got <- e
	select {
	case <-n.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPublish_NoBloqueaAlLlamador(t *testing.T) {
	n := &slowNotifier{got: make(chan ports.Event, 1), ctxErr: make(chan error, 1), release: make(chan struct{})}
	defer close(n.release)

	// la petición ya terminó: el evento igual debe salir
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	ports.Publish(ctx, n, zerolog.Nop(), ports.Event{Type: ports.EventSaleCreated, EntityID: "s-1"})
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	select {
	case err := <-n.ctxErr:
		assert.NoError(t, err, "contexto desligado de la petición")
	case <-time.After(2 * time.Second):
		t.Fatal("el evento no se entregó")
	}
	e := <-n.got
	assert.Equal(t, "s-1", e.EntityID)
	require.False(t, e.OccurredAt.IsZero())
}

func TestNoopNotifier(t *testing.T) {
	assert.NoError(t, ports.NoopNotifier{}.Notify(context.Background(), ports.Event{}))
}
