package storage

import (
	"context"
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const panelLivePrefix = "wext:panel:live:"

var _ PanelFeed = (*RedisPanelFeed)(nil)

// RedisPanelFeed relays panel changes over redis pub/sub so every server
// instance sees changes made through any other.
type RedisPanelFeed struct {
	client *redis.Client
}

func NewRedisPanelFeed(client *redis.Client) *RedisPanelFeed {
	return &RedisPanelFeed{client: client}
}

func (f *RedisPanelFeed) liveKey(sessionID string) string {
	return panelLivePrefix + sessionID
}

func (f *RedisPanelFeed) Publish(ctx context.Context, e PanelEvent) error {
	data, err := go_json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal panel event: %w", err)
	}

	if err := f.client.Publish(ctx, f.liveKey(e.SessionID), string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish panel event: %w", err)
	}
	return nil
}

func (f *RedisPanelFeed) Subscribe(ctx context.Context, sessionID string) (<-chan PanelEvent, func(), error) {
	pubsub := f.client.Subscribe(ctx, f.liveKey(sessionID))

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	events := make(chan PanelEvent)
	stop := context.AfterFunc(ctx, func() { _ = pubsub.Close() })

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var e PanelEvent
			if err := go_json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				continue
			}

			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		stop()
		_ = pubsub.Close()
	}

	return events, unsubscribe, nil
}
