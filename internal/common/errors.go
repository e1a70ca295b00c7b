// Package common defines shared constants and sentinel errors used across
// tenantdb components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrorDuplicate = errors.New("duplicate entity")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Pool lifecycle errors.
	ErrorConnectivity  = errors.New("database unreachable")
	ErrorPoolExhausted = errors.New("connection pool exhausted")
	ErrorPoolClosed    = errors.New("pool is closed")

	// Scope lifecycle errors.
	ErrorScopeClosed  = errors.New("scope is closed")
	ErrorTxInProgress = errors.New("transaction already in progress")
	ErrorNoTx         = errors.New("no transaction in progress")
)
