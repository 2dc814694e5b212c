package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// owned is implemented by every per-user model.
type owned interface {
	OwnerID() uint
}

// findOwned loads the record with id and checks that it belongs to userID.
func findOwned[T owned](ctx context.Context, db *gorm.DB, userID, id uint) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %T %d", ErrNotFound, v, id)
		}
		return nil, err
	}
	if v.OwnerID() != userID {
		return nil, fmt.Errorf("%w: %T %d", ErrPermissionDenied, v, id)
	}
	return &v, nil
}

// listOwned loads every record of the user ordered by id.
func listOwned[T any](ctx context.Context, db *gorm.DB, userID uint) ([]T, error) {
	items := []T{}
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// publish announces a committed write. Failures are logged, the write
// itself already succeeded.
func publish(ctx context.Context, bus realtime.Bus, log *zap.Logger, userID uint, c models.Collection, op realtime.Op, ids ...uint) {
	if bus == nil {
		return
	}
	change := realtime.Change{UserID: userID, Collection: c, Op: op, IDs: ids}
	if err := bus.Publish(ctx, change); err != nil {
		log.Warn("publish change failed",
			zap.Uint("user_id", userID),
			zap.String("collection", string(c)),
			zap.Error(err))
	}
}

// subscribeCollection pushes the user's collection to onChange right away
// and again after every change published for it. Reloads are serialized.
func subscribeCollection[T any](bus realtime.Bus, log *zap.Logger, c models.Collection, userID uint, load func(uint) ([]T, error), onChange func([]T)) (func(), error) {
	var (
		mu     sync.Mutex
		closed bool
	)
	reload := func() error {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return nil
		}
		items, err := load(userID)
		if err != nil {
			return err
		}
		onChange(items)
		return nil
	}

	unsubscribe, err := bus.Subscribe(func(change realtime.Change) {
		if change.UserID != userID || change.Collection != c {
			return
		}
		if err := reload(); err != nil {
			log.Error("reload collection failed",
				zap.Uint("user_id", userID),
				zap.String("collection", string(c)),
				zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	if err := reload(); err != nil {
		unsubscribe()
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			closed = true
			mu.Unlock()
			unsubscribe()
		})
	}, nil
}
