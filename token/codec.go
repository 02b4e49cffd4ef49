package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the HMAC-SHA variant used to sign tokens.
type SigningMethod string

const (
	MethodHS256 SigningMethod = "HS256"
	MethodHS384 SigningMethod = "HS384"
	MethodHS512 SigningMethod = "HS512"
)

// Codec signs claims into compact JWS strings and verifies them back. It is
// stateless: the secret and method are fixed at construction, so key rotation
// is a matter of running two codecs side by side.
//
// Timestamps are truncated to whole seconds on the wire. Expiration is exact:
// a token whose exp equals "now" is already expired, and no clock-skew leeway
// is applied here.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewCodec builds a codec around a raw symmetric secret. The secret must be
// non-empty; the method defaults to HS256 when left blank.
func NewCodec(secret []byte, method SigningMethod) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", ErrValidation)
	}
	var alg jwt.SigningMethod
	switch method {
	case "", MethodHS256:
		alg = jwt.SigningMethodHS256
	case MethodHS384:
		alg = jwt.SigningMethodHS384
	case MethodHS512:
		alg = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: unsupported signing method %q", ErrValidation, method)
	}
	return &Codec{secret: secret, method: alg, now: time.Now}, nil
}

// Issue signs a token of the given type. The header carries the type's
// "typ" marker, the payload carries sub/iat/exp plus the supplied claims.
// Expiration is whatever the caller derived; this layer does not compute it.
func (c *Codec) Issue(typ Type, subject Subject, claims Claims, issuedAt, expiresAt time.Time) (EncodedToken, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: blank subject", ErrValidation)
	}
	if len(claims) == 0 {
		return "", fmt.Errorf("%w: empty claims", ErrValidation)
	}
	if issuedAt.IsZero() || expiresAt.IsZero() {
		return "", fmt.Errorf("%w: zero timestamp", ErrValidation)
	}
	if !expiresAt.After(issuedAt) {
		return "", fmt.Errorf("%w: expiration not after issuance", ErrValidation)
	}

	payload := jwt.MapClaims{
		"sub": subject.String(),
		"iat": jwt.NewNumericDate(issuedAt),
		"exp": jwt.NewNumericDate(expiresAt),
	}
	for name, value := range claims {
		payload[name] = value
	}

	tok := jwt.NewWithClaims(c.method, payload)
	tok.Header["typ"] = typ.Header()

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return NewEncodedToken(signed)
}

// Decode parses and verifies a compact JWS in one step: signature, structure,
// and expiration. Any failure wraps [ErrTokenMalformed] with the cause kept
// as text. On success the typed token is reconstructed from header and
// payload; a payload missing token_use or role is a decode failure too.
func (c *Codec) Decode(encoded EncodedToken) (*Token, error) {
	if encoded == "" {
		return nil, fmt.Errorf("%w: blank encoded token", ErrTokenMalformed)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	parsed, err := parser.ParseWithClaims(encoded.String(), jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, jwt.ErrTokenInvalidClaims)
	}

	header, _ := parsed.Header["typ"].(string)
	typ, err := TypeFromHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	sub, err := payload.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	subject, err := NewSubject(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	issuedAt, err := payload.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat", ErrTokenMalformed)
	}
	expiresAt, err := payload.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrTokenMalformed)
	}

	custom := make(map[string]string, len(payload))
	for name, value := range payload {
		switch name {
		case "sub", "iat", "exp":
			continue
		}
		if s, ok := value.(string); ok {
			custom[name] = s
		}
	}
	claims, err := NewClaims(custom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	return &Token{
		Encoded:   encoded,
		Type:      typ,
		Subject:   subject,
		Claims:    claims,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}
