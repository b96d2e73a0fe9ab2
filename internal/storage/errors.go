package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carson-networks/ledger-server/internal/apperr"
)

// Postgres error codes the store treats specially.
const (
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// balanceCheck is the name Postgres gives the inline CHECK (balance >= 0) on accounts.
const balanceCheck = "accounts_balance_check"

// StoreError classifies a backend error. Errors that already carry a kind pass through untouched,
// a violated balance check becomes InsufficientFunds and any other check violation InvalidArgument.
// Everything else is StoreUnavailable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != "" {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation:
			if pgErr.ConstraintName == balanceCheck {
				return apperr.Wrap(apperr.InsufficientFunds, op, err)
			}
			return apperr.Wrap(apperr.InvalidArgument, op+": "+pgErr.ConstraintName, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return apperr.Wrap(apperr.StoreUnavailable, op+": conflicting unit", err)
		case pgLockNotAvailable, pgQueryCanceled:
			return apperr.Wrap(apperr.StoreUnavailable, op+": timed out waiting for lock", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.StoreUnavailable, op+": timed out", err)
	}

	return apperr.Wrap(apperr.StoreUnavailable, op, err)
}
