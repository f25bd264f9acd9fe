// Package store owns the shared database handle: transaction scoping, commit hooks and
// translation of driver errors into the application error taxonomy.
package store

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	tx    *gorm.DB
	hooks []func()
}

// TxManager runs units of work inside a single database transaction carried on the context.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) DB() *gorm.DB {
	return m.db
}

// WithinTransaction runs fn in a transaction. A nested call joins the outer transaction.
// Hooks registered with AfterCommit run only once the outermost transaction has committed.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}

	for _, hook := range state.hooks {
		hook()
	}
	return nil
}

// Conn returns the transaction bound to ctx, or db scoped to ctx when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && state.tx != nil {
		return state.tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// AfterCommit defers fn until the surrounding transaction commits. It is dropped on rollback
// and runs immediately when ctx carries no transaction.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.hooks = append(state.hooks, fn)
		return
	}
	fn()
}
