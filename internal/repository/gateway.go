package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrConnection reports that no connection or transaction could be obtained from the store.
	ErrConnection = errors.New("store connection failed")
	// ErrStorage reports that the store rejected a statement or its commit.
	ErrStorage = errors.New("store operation failed")
)

// gateway runs each repository call as exactly one transaction on a
// connection borrowed from the injected pool. The connection is returned on
// every exit path, including panics.
type gateway struct {
	db *gorm.DB
}

func (g gateway) withTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) (err error) {
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnection, op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: commit %s: %w", ErrStorage, op, err)
	}
	return nil
}
