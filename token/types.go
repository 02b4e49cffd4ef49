package token

import (
	"fmt"
	"strings"
	"time"
)

// Reserved claim names every issued token carries in addition to the
// registered sub/iat/exp claims.
const (
	ClaimTokenUse = "token_use"
	ClaimRole     = "role"
	ClaimID       = "jti"
)

// Role is the authenticated principal's role. The set is exhaustive.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a claim value onto a [Role], rejecting anything outside the
// known set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

func (r Role) String() string { return string(r) }

// Type distinguishes access tokens from refresh tokens. Each type owns two
// independent wire markers, the JOSE header type and the token_use claim,
// and both must agree during verification.
type Type int

const (
	AccessToken Type = iota
	RefreshToken
)

const (
	headerTypeAccess  = "at+jwt"
	headerTypeRefresh = "rt+jwt"
	useAccess         = "access"
	useRefresh        = "refresh"
)

// Header returns the JOSE "typ" header value for the type.
func (t Type) Header() string {
	if t == RefreshToken {
		return headerTypeRefresh
	}
	return headerTypeAccess
}

// Use returns the token_use claim value for the type.
func (t Type) Use() string {
	if t == RefreshToken {
		return useRefresh
	}
	return useAccess
}

// StorageKey returns the namespaced liveness-store key for an encoded token
// of this type: "access:{token}" or "refresh:{token}".
func (t Type) StorageKey(encoded EncodedToken) string {
	return t.Use() + ":" + encoded.String()
}

func (t Type) String() string { return t.Use() }

// TypeFromHeader resolves a JOSE "typ" header back to a [Type].
func TypeFromHeader(header string) (Type, error) {
	switch header {
	case headerTypeAccess:
		return AccessToken, nil
	case headerTypeRefresh:
		return RefreshToken, nil
	default:
		return 0, fmt.Errorf("%w: unknown token header type %q", ErrValidation, header)
	}
}

// EncodedToken is the opaque compact JWS string. It is never parsed outside
// the codec.
type EncodedToken string

// NewEncodedToken rejects blank input.
func NewEncodedToken(s string) (EncodedToken, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: blank encoded token", ErrValidation)
	}
	return EncodedToken(s), nil
}

func (e EncodedToken) String() string { return string(e) }

// Subject is the authenticated principal identifier, typically a username.
type Subject string

// NewSubject rejects blank input.
func NewSubject(s string) (Subject, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: blank subject", ErrValidation)
	}
	return Subject(s), nil
}

func (s Subject) String() string { return string(s) }

// Claims is the custom claim set carried in a token payload alongside the
// registered claims. It always contains the reserved token_use and role
// claims.
type Claims map[string]string

// NewClaims copies and validates a claim set: it must be non-empty, carry
// both reserved claims, and stay clear of the registered claim names the
// codec manages itself.
func NewClaims(values map[string]string) (Claims, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty claims", ErrValidation)
	}
	for _, reserved := range []string{"sub", "iat", "exp"} {
		if _, ok := values[reserved]; ok {
			return nil, fmt.Errorf("%w: claim %q is managed by the codec", ErrValidation, reserved)
		}
	}
	if values[ClaimTokenUse] == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrValidation, ClaimTokenUse)
	}
	if values[ClaimRole] == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrValidation, ClaimRole)
	}

	claims := make(Claims, len(values))
	for k, v := range values {
		claims[k] = v
	}
	return claims, nil
}

// Use returns the token_use claim value.
func (c Claims) Use() string { return c[ClaimTokenUse] }

// Role parses the role claim.
func (c Claims) Role() (Role, error) { return ParseRole(c[ClaimRole]) }

// Token is a decoded JWT: the encoded material plus everything verified out
// of it. Instances come only out of [Codec.Issue]-driven issuance,
// [Codec.Decode], or [Rebuild] when a store reconstitutes persisted rows.
type Token struct {
	Encoded   EncodedToken
	Type      Type
	Subject   Subject
	Claims    Claims
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Rebuild reconstructs a decoded token from persisted parts without going
// through the codec. The claim set is regenerated from the type and role.
func Rebuild(typ Type, encoded EncodedToken, subject Subject, role Role, issuedAt, expiresAt time.Time) (*Token, error) {
	claims, err := NewClaims(map[string]string{
		ClaimTokenUse: typ.Use(),
		ClaimRole:     role.String(),
	})
	if err != nil {
		return nil, err
	}
	tok := &Token{
		Encoded:   encoded,
		Type:      typ,
		Subject:   subject,
		Claims:    claims,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	if err := tok.validate(); err != nil {
		return nil, err
	}
	return tok, nil
}

func (t *Token) validate() error {
	if t.Encoded == "" {
		return fmt.Errorf("%w: token without encoded material", ErrValidation)
	}
	if t.Subject == "" {
		return fmt.Errorf("%w: token without subject", ErrValidation)
	}
	if len(t.Claims) == 0 {
		return fmt.Errorf("%w: token without claims", ErrValidation)
	}
	if t.IssuedAt.IsZero() || t.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: token without timestamps", ErrValidation)
	}
	return nil
}

// Pair is one authentication session's live token material.
type Pair struct {
	Access  *Token
	Refresh *Token
}

// NewPair validates that both tokens are present and correctly typed.
func NewPair(access, refresh *Token) (Pair, error) {
	p := Pair{Access: access, Refresh: refresh}
	if err := p.Validate(); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// Validate checks the pair invariants: both sides non-nil and of the type
// their slot demands.
func (p Pair) Validate() error {
	if p.Access == nil || p.Refresh == nil {
		return fmt.Errorf("%w: pair requires both tokens", ErrValidation)
	}
	if p.Access.Type != AccessToken {
		return fmt.Errorf("%w: access slot holds a %s token", ErrValidation, p.Access.Type)
	}
	if p.Refresh.Type != RefreshToken {
		return fmt.Errorf("%w: refresh slot holds a %s token", ErrValidation, p.Refresh.Type)
	}
	return nil
}
