package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the artifact store can hit
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgRightTruncation     = "22001"
	pgInvalidText         = "22P02"
	pgInvalidJSON         = "22032"

	pgSerializationFailure = "40001"
	pgDeadlock             = "40P01"
	pgLockNotAvailable     = "55P03"
	pgReadOnlyTx           = "25006"
	pgCannotConnectNow     = "57P03"
	pgUndefinedTable       = "42P01"
)

var pgCodes = map[string]ErrorCode{
	pgUniqueViolation:      ErrorCodeDuplicateKey,
	pgForeignKeyViolation:  ErrorCodeInvalidArgument,
	pgRightTruncation:      ErrorCodeInvalidArgument,
	pgInvalidText:          ErrorCodeInvalidArgument,
	pgNotNullViolation:     ErrorCodeValidation,
	pgCheckViolation:       ErrorCodeValidation,
	pgInvalidJSON:          ErrorCodeArtifactCorrupt,
	pgReadOnlyTx:           ErrorCodeUnavailable,
	pgCannotConnectNow:     ErrorCodeUnavailable,
	pgUndefinedTable:       ErrorCodeUnavailable,
	pgSerializationFailure: ErrorCodeDB,
	pgDeadlock:             ErrorCodeDB,
	pgLockNotAvailable:     ErrorCodeDB,
}

// PgError returns the *pgconn.PgError behind err, if any
func PgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// FromPostgres wraps err under msg with a code derived from its SQLSTATE and,
// when the server names one, the offending column. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok && e.orig == nil {
		// already classified by us, e.g. ErrNotFound or a codec failure
		return Wrap(err, e.code, msg)
	}
	pe, ok := PgError(err)
	if !ok {
		if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
			return Wrap(err, ErrorCodeUnavailable, msg)
		}
		return Wrap(err, ErrorCodeDB, msg)
	}
	code, known := pgCodes[pe.Code]
	if !known {
		code = ErrorCodeDB
	}
	out := Wrap(err, code, msg)
	if f := pgField(pe); f != "" {
		out = WithField(out, f)
	}
	return out
}

// pgField prefers the column name, then the constraint name between the table
// prefix and the suffix (model_artifacts_macro_f1_check -> macro_f1)
func pgField(pe *pgconn.PgError) string {
	if c := strings.TrimSpace(pe.ColumnName); c != "" {
		return c
	}
	name := strings.TrimPrefix(pe.ConstraintName, pe.TableName+"_")
	i := strings.LastIndex(name, "_")
	if pe.TableName == "" || i <= 0 {
		return ""
	}
	return name[:i]
}

// IsRetryable reports contention failures a fresh transaction may get past.
// Cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := PgError(err); ok {
		switch pe.Code {
		case pgSerializationFailure, pgDeadlock, pgLockNotAvailable:
			return true
		}
		return false
	}
	s := strings.ToLower(Root(err).Error())
	return strings.Contains(s, "commit unexpectedly resulted in rollback") ||
		strings.Contains(s, "could not serialize access")
}
