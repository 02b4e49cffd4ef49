package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec(testSecret, MethodHS256)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return codec
}

func testClaims(t *testing.T, typ Type) Claims {
	t.Helper()

	claims, err := NewClaims(map[string]string{
		ClaimTokenUse: typ.Use(),
		ClaimRole:     RoleUser.String(),
	})
	if err != nil {
		t.Fatalf("NewClaims failed: %v", err)
	}
	return claims
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Now().Truncate(time.Second)
	expiresAt := issuedAt.Add(time.Hour)

	encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, expiresAt)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Type != AccessToken {
		t.Errorf("type = %s, want access", decoded.Type)
	}
	if decoded.Subject != "alice" {
		t.Errorf("subject = %q, want alice", decoded.Subject)
	}
	if decoded.Claims.Use() != useAccess {
		t.Errorf("token_use = %q, want access", decoded.Claims.Use())
	}
	role, err := decoded.Claims.Role()
	if err != nil || role != RoleUser {
		t.Errorf("role = %q (%v), want USER", role, err)
	}
	if !decoded.IssuedAt.Equal(issuedAt) {
		t.Errorf("iat = %v, want %v", decoded.IssuedAt, issuedAt)
	}
	if !decoded.ExpiresAt.Equal(expiresAt) {
		t.Errorf("exp = %v, want %v", decoded.ExpiresAt, expiresAt)
	}
	if decoded.Encoded != encoded {
		t.Errorf("encoded material not preserved")
	}
}

func TestCodecRefreshHeaderType(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Now().Truncate(time.Second)

	encoded, err := codec.Issue(RefreshToken, "alice", testClaims(t, RefreshToken), issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Type != RefreshToken {
		t.Errorf("type = %s, want refresh", decoded.Type)
	}
}

func TestCodecIssueValidation(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now().Truncate(time.Second)
	claims := testClaims(t, AccessToken)

	cases := []struct {
		name      string
		subject   Subject
		claims    Claims
		issuedAt  time.Time
		expiresAt time.Time
	}{
		{"blank subject", "", claims, now, now.Add(time.Hour)},
		{"empty claims", "alice", nil, now, now.Add(time.Hour)},
		{"zero issuedAt", "alice", claims, time.Time{}, now.Add(time.Hour)},
		{"zero expiresAt", "alice", claims, now, time.Time{}},
		{"expiration not after issuance", "alice", claims, now, now},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Issue(AccessToken, tc.subject, tc.claims, tc.issuedAt, tc.expiresAt)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCodecDecodeTamperedToken(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Now().Truncate(time.Second)

	encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(encoded.String(), ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := EncodedToken(parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2])))

	if _, err := codec.Decode(tampered); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", err)
	}
}

func TestCodecDecodeWrongKey(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec([]byte("another-secret-another-secret-32"), MethodHS256)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	issuedAt := time.Now().Truncate(time.Second)
	encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Decode(encoded); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", err)
	}
}

func TestCodecDecodeExpired(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Now().Add(-2 * time.Hour).Truncate(time.Second)

	encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Decode(encoded); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", err)
	}
}

func TestCodecDecodeExpirationBoundary(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := issuedAt.Add(time.Minute)

	encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, expiresAt)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	cases := []struct {
		name string
		now  time.Time
		live bool
	}{
		{"one millisecond before expiry", expiresAt.Add(-time.Millisecond), true},
		{"exactly at expiry", expiresAt, false},
		{"one millisecond after expiry", expiresAt.Add(time.Millisecond), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec.now = func() time.Time { return tc.now }

			_, err := codec.Decode(encoded)
			if tc.live && err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !tc.live && !errors.Is(err, ErrTokenMalformed) {
				t.Fatalf("err = %v, want ErrTokenMalformed", err)
			}
		})
	}
}

func TestCodecDecodeGarbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, input := range []EncodedToken{"", "not-a-jwt", "a.b.c"} {
		if _, err := codec.Decode(input); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Decode(%q) err = %v, want ErrTokenMalformed", input, err)
		}
	}
}

func TestCodecDecodeMissingReservedClaims(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Now().Truncate(time.Second)

	// Claims validated at issue time would carry token_use and role; build a
	// payload missing role by going through the raw map path.
	claims := Claims{ClaimTokenUse: useAccess}
	encoded, err := codec.Issue(AccessToken, "alice", claims, issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Decode(encoded); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", err)
	}
}

func TestNewCodecRejectsBadInput(t *testing.T) {
	if _, err := NewCodec(nil, MethodHS256); !errors.Is(err, ErrValidation) {
		t.Errorf("empty secret: err = %v, want ErrValidation", err)
	}
	if _, err := NewCodec(testSecret, "RS256"); !errors.Is(err, ErrValidation) {
		t.Errorf("unsupported method: err = %v, want ErrValidation", err)
	}
	if _, err := NewCodec(testSecret, ""); err != nil {
		t.Errorf("blank method should default to HS256, got %v", err)
	}
}

func TestCodecSigningMethodVariants(t *testing.T) {
	issuedAt := time.Now().Truncate(time.Second)

	for _, method := range []SigningMethod{MethodHS256, MethodHS384, MethodHS512} {
		codec, err := NewCodec(testSecret, method)
		if err != nil {
			t.Fatalf("NewCodec(%s) failed: %v", method, err)
		}
		encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, issuedAt.Add(time.Hour))
		if err != nil {
			t.Fatalf("Issue(%s) failed: %v", method, err)
		}
		if _, err := codec.Decode(encoded); err != nil {
			t.Errorf("Decode(%s) failed: %v", method, err)
		}
	}
}
