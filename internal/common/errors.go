// Package common defines shared constants and sentinel errors used across
// the competition core and the transport layer. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidState   = errors.New("invalid state")

	// Stats provider errors. Unavailable is transient (skip and retry next
	// cycle); protocol means the provider answered with something we could
	// not use for this user.
	ErrProviderUnavailable = errors.New("stats provider unavailable")
	ErrProviderProtocol    = errors.New("stats provider protocol error")

	// Roster errors.
	ErrHardwareInUse = errors.New("hardware is used by an active user")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
