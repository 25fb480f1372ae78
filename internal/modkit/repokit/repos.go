// Package repokit holds the small surface SQL repositories depend on
package repokit

import (
	"context"

	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/store"
)

type (
	// Queryer is the read and write surface for SQL repos
	Queryer = store.RowQuerier

	// TxRunner runs a function inside a transaction
	TxRunner = store.TxRunner
)

// TxAttempts bounds how often WithTx runs fn when the database reports contention
const TxAttempts = 3

// WithTx runs fn inside a transaction on tx, starting over on serialization
// failures and deadlocks
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	if tx == nil {
		return perr.New(perr.ErrorCodeUnavailable, "repokit: no database configured")
	}
	var err error
	for range TxAttempts {
		if err = tx.Tx(ctx, fn); !perr.IsRetryable(err) {
			return err
		}
	}
	return err
}
