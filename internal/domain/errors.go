package domain

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrProviderError = fmt.Errorf("provider error")
)

// Sentinel errors for the domain layer.
var (
	ErrToolNotFound  = fmt.Errorf("tool not found")
	ErrToolDuplicate = fmt.Errorf("tool already registered")
	ErrConfigLoad    = fmt.Errorf("failed to load configuration")
	ErrEncryption    = fmt.Errorf("encryption operation failed")
	ErrDecryption    = fmt.Errorf("decryption failed")

	// Provider responses. These never reach tool callers as errors; the
	// search client turns them into degradation messages.
	ErrRateLimit   = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid = fmt.Errorf("authentication failed")
	ErrTransport   = fmt.Errorf("transport failure")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Registry.Get")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for logs.
type ErrorCode string

const (
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
	CodeToolNotFound  ErrorCode = "TOOL_NOT_FOUND"
	CodeToolDuplicate ErrorCode = "TOOL_DUPLICATE"
	CodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	CodeEncryption    ErrorCode = "ENCRYPTION"
	CodeDecryption    ErrorCode = "DECRYPTION"
	CodeRateLimit     ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid   ErrorCode = "AUTH_INVALID"
	CodeTransport     ErrorCode = "TRANSPORT"
)

// sentinelCodes is checked in order; more specific sentinels come first.
var sentinelCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrToolNotFound, CodeToolNotFound},
	{ErrToolDuplicate, CodeToolDuplicate},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrEncryption, CodeEncryption},
	{ErrDecryption, CodeDecryption},
	{ErrRateLimit, CodeRateLimit},
	{ErrAuthInvalid, CodeAuthInvalid},
	{ErrTimeout, CodeTimeout},
	{ErrTransport, CodeTransport},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrProviderError, CodeProviderError},
}

// ErrorCodeOf returns the ErrorCode for err, or CodeUnknown.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return sc.code
		}
	}
	return CodeUnknown
}
