package token

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubChecker is a map-backed ActiveTokenChecker.
type stubChecker struct {
	live map[string]bool
	err  error
}

func (s *stubChecker) Exists(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.live[key], nil
}

func newTestVerifier(t *testing.T, checker ActiveTokenChecker) (*Verifier, *Issuer) {
	t.Helper()

	codec := newTestCodec(t)
	issuer, err := NewIssuer(codec, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	verifier, err := NewVerifier(codec, checker, nil)
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	return verifier, issuer
}

func markLive(checker *stubChecker, pair Pair) {
	for _, tok := range []*Token{pair.Access, pair.Refresh} {
		checker.live[tok.Type.StorageKey(tok.Encoded)] = true
	}
}

func TestVerifyLiveTokens(t *testing.T) {
	ctx := context.Background()
	checker := &stubChecker{live: map[string]bool{}}
	verifier, issuer := newTestVerifier(t, checker)

	pair, err := issuer.IssuePair("alice", RoleUser)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	markLive(checker, pair)

	access, err := verifier.VerifyAccessToken(ctx, pair.Access.Encoded)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}
	if access.Subject != "alice" || access.Type != AccessToken {
		t.Errorf("verified access token: subject=%q type=%s", access.Subject, access.Type)
	}

	refresh, err := verifier.VerifyRefreshToken(ctx, pair.Refresh.Encoded)
	if err != nil {
		t.Fatalf("VerifyRefreshToken failed: %v", err)
	}
	if refresh.Type != RefreshToken {
		t.Errorf("verified refresh token type = %s", refresh.Type)
	}
}

func TestVerifyWrongTokenType(t *testing.T) {
	ctx := context.Background()
	checker := &stubChecker{live: map[string]bool{}}
	verifier, issuer := newTestVerifier(t, checker)

	pair, err := issuer.IssuePair("alice", RoleUser)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	markLive(checker, pair)

	if _, err := verifier.VerifyAccessToken(ctx, pair.Refresh.Encoded); !errors.Is(err, ErrUnexpectedTokenType) {
		t.Errorf("refresh as access: err = %v, want ErrUnexpectedTokenType", err)
	}
	if _, err := verifier.VerifyRefreshToken(ctx, pair.Access.Encoded); !errors.Is(err, ErrUnexpectedTokenType) {
		t.Errorf("access as refresh: err = %v, want ErrUnexpectedTokenType", err)
	}
}

func TestVerifyMarkerDisagreement(t *testing.T) {
	ctx := context.Background()
	checker := &stubChecker{live: map[string]bool{}}
	verifier, _ := newTestVerifier(t, checker)

	// Header says access, token_use says refresh. Both markers must agree.
	codec := newTestCodec(t)
	claims := Claims{ClaimTokenUse: useRefresh, ClaimRole: RoleUser.String()}
	issuedAt := time.Now().Truncate(time.Second)
	encoded, err := codec.Issue(AccessToken, "alice", claims, issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	checker.live[AccessToken.StorageKey(encoded)] = true

	if _, err := verifier.VerifyAccessToken(ctx, encoded); !errors.Is(err, ErrUnexpectedTokenType) {
		t.Fatalf("err = %v, want ErrUnexpectedTokenType", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	ctx := context.Background()
	checker := &stubChecker{live: map[string]bool{}}
	verifier, _ := newTestVerifier(t, checker)

	for _, input := range []EncodedToken{"", "garbage", "a.b.c"} {
		_, err := verifier.VerifyAccessToken(ctx, input)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) err = %v, want ErrInvalidToken", input, err)
		}
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	ctx := context.Background()
	checker := &stubChecker{live: map[string]bool{}}
	verifier, _ := newTestVerifier(t, checker)

	codec := newTestCodec(t)
	issuedAt := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	encoded, err := codec.Issue(AccessToken, "alice", testClaims(t, AccessToken), issuedAt, issuedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	checker.live[AccessToken.StorageKey(encoded)] = true

	// Expiry surfaces as the same invalid-token failure as any decode error.
	if _, err := verifier.VerifyAccessToken(ctx, encoded); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRevokedToken(t *testing.T) {
	ctx := context.Background()
	checker := &stubChecker{live: map[string]bool{}}
	verifier, issuer := newTestVerifier(t, checker)

	pair, err := issuer.IssuePair("alice", RoleUser)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	// Valid signature, correct type, but never indexed as live.
	if _, err := verifier.VerifyAccessToken(ctx, pair.Access.Encoded); !errors.Is(err, ErrAuthenticationNotFound) {
		t.Fatalf("err = %v, want ErrAuthenticationNotFound", err)
	}
}

func TestVerifyCheckerFailurePropagates(t *testing.T) {
	ctx := context.Background()
	storeDown := errors.New("connection refused")
	checker := &stubChecker{err: storeDown}
	verifier, issuer := newTestVerifier(t, checker)

	pair, err := issuer.IssuePair("alice", RoleUser)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	_, err = verifier.VerifyAccessToken(ctx, pair.Access.Encoded)
	if !errors.Is(err, storeDown) {
		t.Fatalf("err = %v, want the checker failure", err)
	}
	if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrAuthenticationNotFound) {
		t.Fatalf("store failure must not masquerade as an authentication verdict: %v", err)
	}
}

func TestNewVerifierValidation(t *testing.T) {
	codec := newTestCodec(t)
	checker := &stubChecker{live: map[string]bool{}}

	if _, err := NewVerifier(nil, checker, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("nil codec: err = %v, want ErrValidation", err)
	}
	if _, err := NewVerifier(codec, nil, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("nil checker: err = %v, want ErrValidation", err)
	}
}
