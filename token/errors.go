package token

import "errors"

var (
	// ErrValidation reports a value-object construction invariant violation
	// (blank token, blank subject, empty claims, malformed pair). These are
	// caller errors and are never retried.
	ErrValidation = errors.New("invalid token value")
	// ErrTokenMalformed is the codec's decode-boundary error: structurally
	// invalid input, a bad signature, or an expired token. The underlying
	// cause is attached as text for logs.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrInvalidToken is the verifier's uniform wrapper for any decode-stage
	// failure. Callers must treat "malformed" and "expired" identically.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnexpectedTokenType reports a token whose signature checked out but
	// whose header type or token_use claim does not match what the caller
	// asked to verify.
	ErrUnexpectedTokenType = errors.New("unexpected token type")
	// ErrAuthenticationNotFound reports a cryptographically valid,
	// correctly-typed token that is absent from the liveness index: revoked,
	// superseded by a refresh, or never issued by this deployment.
	ErrAuthenticationNotFound = errors.New("authentication not found")
)
