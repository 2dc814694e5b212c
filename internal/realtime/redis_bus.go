package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisBus fans changes out through a Redis channel so that every API
// instance refreshes its stores. Delivery to local subscribers happens on
// the forwarder goroutine, in publish order.
type RedisBus struct {
	log     *zap.Logger
	rdb     *redis.Client
	channel string
	local   *LocalBus
	sub     *redis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRedisBus subscribes to channel and starts forwarding.
func NewRedisBus(ctx context.Context, rdb *redis.Client, channel string, log *zap.Logger) (*RedisBus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel == "" {
		return nil, fmt.Errorf("redis channel required")
	}

	sub := rdb.Subscribe(ctx, channel)
	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	fctx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		log:     log.With(zap.String("channel", channel)),
		rdb:     rdb,
		channel: channel,
		local:   NewLocalBus(),
		sub:     sub,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.forward(fctx)
	return b, nil
}

func (b *RedisBus) forward(ctx context.Context) {
	defer close(b.done)
	ch := b.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok || m == nil {
				return
			}
			var change Change
			if err := json.Unmarshal([]byte(m.Payload), &change); err != nil {
				b.log.Warn("bad realtime payload", zap.Error(err))
				continue
			}
			b.local.dispatch(change)
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, change Change) error {
	raw, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *RedisBus) Subscribe(fn func(Change)) (func(), error) {
	return b.local.Subscribe(fn)
}

func (b *RedisBus) Close() error {
	b.cancel()
	err := b.sub.Close()
	<-b.done
	_ = b.local.Close()
	return err
}
