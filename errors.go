package goTokens

import (
	"errors"

	"github.com/MrEthical07/goTokens/token"
)

var (
	// ErrInvalidCredentials is returned by Authenticate for unknown users and
	// password mismatches alike, so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is the UserLookup collaborator's miss sentinel.
	ErrUserNotFound = errors.New("user not found")
	// ErrEngineNotReady is returned by Build when required collaborators are
	// missing.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Verification sentinels, re-exported from the token package so callers can
// match engine errors without importing it.
var (
	ErrInvalidToken           = token.ErrInvalidToken
	ErrUnexpectedTokenType    = token.ErrUnexpectedTokenType
	ErrAuthenticationNotFound = token.ErrAuthenticationNotFound
)
