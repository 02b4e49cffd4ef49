package session

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goTokens/token"
)

// ErrNotFound is returned when a session cannot be resolved: never persisted,
// revoked, expired and swept, or (for ReplacePair) already consumed by a
// concurrent refresh.
var ErrNotFound = errors.New("authentication session not found")

// ErrStoreUnavailable wraps store connectivity failures. These surface as
// service-unavailable, never as authentication failures, and are not retried
// here.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the persistent session collaborator.
//
// ReplacePair is the concurrency-critical operation: it atomically swaps a
// session's token pair conditional on currentRefresh still being the
// session's refresh token. A refresh token is single-use: when two refreshes
// race, exactly one ReplacePair succeeds and the loser observes ErrNotFound.
// Implementations must provide this at the store level (unique constraint,
// row lock, or compare-and-swap), not via in-process locking.
type Store interface {
	// Save persists a new session and assigns its id, moving the aggregate
	// into the authenticated state.
	Save(ctx context.Context, auth *Authentication) error
	FindByAccessToken(ctx context.Context, access token.EncodedToken) (*Authentication, error)
	FindByRefreshToken(ctx context.Context, refresh token.EncodedToken) (*Authentication, error)
	FindAllByUserID(ctx context.Context, userID string) ([]*Authentication, error)
	// ReplacePair swaps the pair of the session currently holding
	// currentRefresh for next, returning the updated session and the
	// superseded access token (the caller still needs it to clear the
	// liveness index).
	ReplacePair(ctx context.Context, currentRefresh token.EncodedToken, next token.Pair) (*Authentication, token.EncodedToken, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAllByUserID(ctx context.Context, userID string) error
	// DeleteAllExpiredBefore removes sessions whose refresh token expired
	// before the cutoff, returning how many were removed.
	DeleteAllExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Liveness is the fast-access token index. Keys are namespaced by token type
// ("access:{token}" / "refresh:{token}", see token.Type.StorageKey); values
// are irrelevant, only key existence matters.
type Liveness interface {
	Put(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}
