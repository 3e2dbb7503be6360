package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/StockPOS-api/internal/application/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

// Notifier publica los eventos como JSON en un canal pub/sub.
type Notifier struct {
	rdb     redis.UniversalClient
	channel string
}

func NewNotifier(rdb redis.UniversalClient, channel string) *Notifier {
	return &Notifier{rdb: rdb, channel: channel}
}

func (n *Notifier) Notify(ctx context.Context, e ports.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redisx: serializar evento: %w", err)
	}
	return n.rdb.Publish(ctx, n.channel, payload).Err()
}
