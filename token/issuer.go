package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Issuer mints access/refresh token pairs for a subject and role, applying
// the two configured expiration policies. The access TTL is expected to be
// shorter than the refresh TTL; that is an operational assumption, not a
// check enforced here.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer validates the TTLs and binds the issuer to a codec. TTLs below
// one second are rejected: timestamps truncate to whole seconds on the wire,
// so a shorter TTL would collapse to a zero lifetime.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: issuer requires a codec", ErrValidation)
	}
	if accessTTL < time.Second || refreshTTL < time.Second {
		return nil, fmt.Errorf("%w: token TTLs must be at least one second", ErrValidation)
	}
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// IssuePair issues one access token and one refresh token for the subject,
// stamped with the same issuance instant. Each token carries the role claim
// and a token_use claim matching its header type, so verification can demand
// agreement between the two markers.
func (i *Issuer) IssuePair(subject Subject, role Role) (Pair, error) {
	issuedAt := i.now().Truncate(time.Second)

	access, err := i.issue(AccessToken, subject, role, issuedAt, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.issue(RefreshToken, subject, role, issuedAt, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return NewPair(access, refresh)
}

func (i *Issuer) issue(typ Type, subject Subject, role Role, issuedAt time.Time, ttl time.Duration) (*Token, error) {
	// The jti keeps tokens unique even when two pairs for the same subject
	// are minted within the same wire-precision second.
	claims, err := NewClaims(map[string]string{
		ClaimTokenUse: typ.Use(),
		ClaimRole:     role.String(),
		ClaimID:       uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	expiresAt := issuedAt.Add(ttl).Truncate(time.Second)
	encoded, err := i.codec.Issue(typ, subject, claims, issuedAt, expiresAt)
	if err != nil {
		return nil, err
	}

	return &Token{
		Encoded:   encoded,
		Type:      typ,
		Subject:   subject,
		Claims:    claims,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
