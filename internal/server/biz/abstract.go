package biz

import (
	"context"

	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
)

type AbstractService struct {
	db *gorm.DB
}

func (a *AbstractService) dbFromContext(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx.WithContext(ctx)
	}

	return a.db.WithContext(ctx)
}

// RunInTransaction executes fn inside a transaction, reusing an enclosing
// one when the context already carries it. The transaction handle travels
// in the context so nested service calls join the same commit.
func (a *AbstractService) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := txFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxContext(ctx, tx))
	})
}

// txKey is an unexported key type to prevent external forgery.
type txKey struct{}

func newTxContext(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// authorize evaluates the policy table for the current identity. A deny
// maps to the error taxonomy: undefined actions are method-not-allowed,
// anonymous writes are unauthenticated, everything else is forbidden.
func (a *AbstractService) authorize(ctx context.Context, res authz.Resource, act authz.Action, ownerID *uint) error {
	id := authz.IdentityFromContext(ctx)

	if !authz.Defined(res, act) {
		return ErrMethodNotAllowed
	}

	if authz.Can(id, res, act, ownerID) {
		return nil
	}

	if !id.Authenticated() {
		return ErrUnauthenticated
	}

	return ErrPermissionDenied
}
