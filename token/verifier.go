package token

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ActiveTokenChecker answers whether a namespaced token key is still indexed
// as a live session. Implemented by the session package's Redis liveness
// store.
type ActiveTokenChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Verifier runs the three-step verification pipeline over one encoded token:
//
//	decode -> type check -> liveness check
//
// The order is fixed. Local cryptographic work happens before any external
// I/O, and the type check gates the store lookup so tokens of the wrong kind
// never cost a round-trip. Each step short-circuits with its own error kind;
// all three surface to transport layers as a plain "unauthorized" while
// staying distinguishable for logs and metrics.
type Verifier struct {
	codec  *Codec
	active ActiveTokenChecker
	logger *zap.Logger
}

// NewVerifier wires a verifier. The logger may be nil; decode causes are then
// dropped instead of logged.
func NewVerifier(codec *Codec, active ActiveTokenChecker, logger *zap.Logger) (*Verifier, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: verifier requires a codec", ErrValidation)
	}
	if active == nil {
		return nil, fmt.Errorf("%w: verifier requires a liveness checker", ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{codec: codec, active: active, logger: logger}, nil
}

// VerifyAccessToken runs the pipeline expecting an access token.
func (v *Verifier) VerifyAccessToken(ctx context.Context, encoded EncodedToken) (*Token, error) {
	return v.verify(ctx, AccessToken, encoded)
}

// VerifyRefreshToken runs the pipeline expecting a refresh token.
func (v *Verifier) VerifyRefreshToken(ctx context.Context, encoded EncodedToken) (*Token, error) {
	return v.verify(ctx, RefreshToken, encoded)
}

func (v *Verifier) verify(ctx context.Context, want Type, encoded EncodedToken) (*Token, error) {
	decoded, err := v.codec.Decode(encoded)
	if err != nil {
		// The cause (malformed vs expired vs bad signature) is log-only.
		// Callers see one undifferentiated invalid-token failure.
		v.logger.Debug("token rejected at decode", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if decoded.Type != want || decoded.Claims.Use() != want.Use() {
		return nil, fmt.Errorf("%w: want %s, header says %s, token_use says %s",
			ErrUnexpectedTokenType, want.Use(), decoded.Type.Use(), decoded.Claims.Use())
	}

	alive, err := v.active.Exists(ctx, want.StorageKey(encoded))
	if err != nil {
		// Store connectivity is a service problem, not an authentication
		// verdict. Propagate unwrapped.
		return nil, err
	}
	if !alive {
		return nil, ErrAuthenticationNotFound
	}

	return decoded, nil
}
