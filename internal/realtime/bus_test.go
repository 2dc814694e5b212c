package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"promptvault-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) record(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func (r *recorder) snapshot() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestLocalBus(t *testing.T) {
	bus := NewLocalBus()
	var a, b recorder

	unsubA, err := bus.Subscribe(a.record)
	require.NoError(t, err)
	_, err = bus.Subscribe(b.record)
	require.NoError(t, err)

	change := Change{UserID: 1, Collection: models.CollectionTags, Op: OpCreate, IDs: []uint{3}}
	require.NoError(t, bus.Publish(context.Background(), change))
	assert.Equal(t, []Change{change}, a.snapshot())
	assert.Equal(t, []Change{change}, b.snapshot())

	unsubA()
	unsubA()
	require.NoError(t, bus.Publish(context.Background(), change))
	assert.Equal(t, 1, a.len())
	assert.Equal(t, 2, b.len())

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Publish(context.Background(), change))
	assert.Equal(t, 2, b.len())
}

func TestRedisBusDeliversAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	newBus := func() *RedisBus {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		bus, err := NewRedisBus(ctx, rdb, "changes-test", zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = bus.Close() })
		return bus
	}

	publisher := newBus()
	listener := newBus()

	var got recorder
	_, err := listener.Subscribe(got.record)
	require.NoError(t, err)

	change := Change{UserID: 9, Collection: models.CollectionPrompts, Op: OpUpdate, IDs: []uint{1, 2}}
	require.NoError(t, publisher.Publish(ctx, change))

	require.Eventually(t, func() bool { return got.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, change, got.snapshot()[0])
}

func TestNewRedisBusValidation(t *testing.T) {
	_, err := NewRedisBus(context.Background(), nil, "x", zap.NewNop())
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	_, err = NewRedisBus(context.Background(), rdb, "", zap.NewNop())
	assert.Error(t, err)
}
