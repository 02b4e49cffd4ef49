package session

import (
	"fmt"
	"time"

	"github.com/MrEthical07/goTokens/token"
)

// Authentication is one authentication session: a user id plus its live
// token pair. It has two lifecycle states. Freshly issued instances are
// unauthenticated, materialized for issuance with no identity yet. A store's
// Save assigns the persistence id, after which the instance is authenticated
// and gains identity.
//
// RefreshTokens is the only permitted mutation; everything else is fixed at
// construction.
type Authentication struct {
	id     string
	userID string
	pair   token.Pair
}

// NewAuthentication materializes an unauthenticated session for a user.
func NewAuthentication(userID string, pair token.Pair) (*Authentication, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: blank user id", token.ErrValidation)
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return &Authentication{userID: userID, pair: pair}, nil
}

// restore rebuilds an authenticated instance from persisted state. Only
// stores in this package use it.
func restore(id, userID string, pair token.Pair) *Authentication {
	return &Authentication{id: id, userID: userID, pair: pair}
}

// ID returns the persistence id and whether one has been assigned.
func (a *Authentication) ID() (string, bool) {
	return a.id, a.id != ""
}

// UserID returns the owning user's id.
func (a *Authentication) UserID() string { return a.userID }

// Pair returns the session's current token pair.
func (a *Authentication) Pair() token.Pair { return a.pair }

// ExpiresAt is the instant the session dies for good: its refresh token's
// expiration. The cleanup sweep keys off this.
func (a *Authentication) ExpiresAt() time.Time {
	return a.pair.Refresh.ExpiresAt
}

// RefreshTokens replaces the token pair in place. Used exclusively by the
// refresh flow.
func (a *Authentication) RefreshTokens(next token.Pair) error {
	if err := next.Validate(); err != nil {
		return err
	}
	a.pair = next
	return nil
}

// Equal defines identity strictly by persisted id: true only when both sides
// carry the same assigned id. Any comparison involving an unauthenticated
// instance is false, including a self-comparison: transient sessions have
// no identity to compare.
func (a *Authentication) Equal(other *Authentication) bool {
	if a == nil || other == nil {
		return false
	}
	if a.id == "" || other.id == "" {
		return false
	}
	return a.id == other.id
}

func (a *Authentication) clone() *Authentication {
	cp := *a
	return &cp
}
