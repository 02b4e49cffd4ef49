package goTokens

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goTokens/session"
	"github.com/MrEthical07/goTokens/token"
)

// Engine drives the authentication session lifecycle. All methods are
// synchronous and safe for concurrent use; the only suspension points are
// the session-store and liveness-index calls, and the verification pipeline
// always runs its steps in program order.
type Engine struct {
	config    Config
	logger    *zap.Logger
	metrics   *Metrics
	users     UserLookup
	passwords PasswordComparer
	sessions  session.Store
	liveness  session.Liveness
	issuer    *token.Issuer
	verifier  *token.Verifier
}

// Authenticate validates credentials, issues a fresh token pair, persists a
// new session, and indexes both tokens as live. Unknown users and password
// mismatches both come back as [ErrInvalidCredentials].
//
// Each successful call creates an additional session; a user may hold any
// number of concurrent sessions, and authenticating again never invalidates
// earlier ones.
func (e *Engine) Authenticate(ctx context.Context, username, plainPassword string) (token.Pair, error) {
	subject, err := token.NewSubject(username)
	if err != nil {
		e.metrics.Inc(MetricAuthenticateFailure)
		return token.Pair{}, ErrInvalidCredentials
	}

	user, err := e.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.Inc(MetricAuthenticateFailure)
			e.logger.Debug("authentication rejected", zap.String("reason", "user_not_found"))
			return token.Pair{}, ErrInvalidCredentials
		}
		return token.Pair{}, err
	}

	if err := e.passwords.Compare(user.PasswordHash, plainPassword); err != nil {
		e.metrics.Inc(MetricAuthenticateFailure)
		e.logger.Debug("authentication rejected",
			zap.String("user_id", user.ID),
			zap.String("reason", "password_mismatch"))
		return token.Pair{}, ErrInvalidCredentials
	}

	pair, err := e.issuer.IssuePair(subject, user.Role)
	if err != nil {
		return token.Pair{}, err
	}

	auth, err := session.NewAuthentication(user.ID, pair)
	if err != nil {
		return token.Pair{}, err
	}
	if err := e.sessions.Save(ctx, auth); err != nil {
		return token.Pair{}, err
	}
	if err := e.indexPair(ctx, pair); err != nil {
		return token.Pair{}, err
	}

	sessionID, _ := auth.ID()
	e.metrics.Inc(MetricAuthenticateSuccess)
	e.logger.Info("session created",
		zap.String("user_id", user.ID),
		zap.String("session_id", sessionID))
	return pair, nil
}

// Refresh trades a live refresh token for a brand-new pair. The swap is
// conditional on the presented token still being the session's current
// refresh token, so a refresh token is single-use: of two concurrent
// refreshes exactly one wins and the other fails with
// [ErrAuthenticationNotFound], the same failure a replayed, already-consumed
// token gets.
func (e *Engine) Refresh(ctx context.Context, refreshToken token.EncodedToken) (token.Pair, error) {
	verified, err := e.verifier.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		e.observeVerifyFailure(err)
		return token.Pair{}, err
	}
	role, err := verified.Claims.Role()
	if err != nil {
		return token.Pair{}, err
	}

	next, err := e.issuer.IssuePair(verified.Subject, role)
	if err != nil {
		return token.Pair{}, err
	}

	auth, prevAccess, err := e.sessions.ReplacePair(ctx, refreshToken, next)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Lost the race or the token was already consumed. Either way
			// the presented refresh token no longer resolves to a session.
			e.metrics.Inc(MetricRefreshRejected)
			e.logger.Warn("refresh token no longer current",
				zap.String("subject", verified.Subject.String()))
			return token.Pair{}, ErrAuthenticationNotFound
		}
		return token.Pair{}, err
	}

	// Superseded entries are removed best-effort: their Redis TTLs bound the
	// damage if this delete fails, and the old refresh token can no longer
	// win a ReplacePair regardless.
	if err := e.liveness.Delete(ctx,
		token.AccessToken.StorageKey(prevAccess),
		token.RefreshToken.StorageKey(refreshToken),
	); err != nil {
		e.logger.Warn("failed to drop superseded liveness entries", zap.Error(err))
	}
	sessionID, _ := auth.ID()
	if err := e.indexPair(ctx, next); err != nil {
		// The rotation is already persisted; with no liveness entries the
		// session stays dead until the sweep removes it.
		e.logger.Warn("rotated session left unindexed",
			zap.String("user_id", auth.UserID()),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return token.Pair{}, err
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.logger.Info("session refreshed",
		zap.String("user_id", auth.UserID()),
		zap.String("session_id", sessionID))
	return next, nil
}

// Revoke verifies an access token and tears its session down: persistent row
// plus both liveness entries. Other sessions of the same user stay live.
func (e *Engine) Revoke(ctx context.Context, accessToken token.EncodedToken) error {
	verified, err := e.verifier.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		e.observeVerifyFailure(err)
		return err
	}

	auth, err := e.sessions.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrAuthenticationNotFound
		}
		return err
	}

	id, _ := auth.ID()
	if err := e.sessions.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := e.liveness.Delete(ctx,
		token.AccessToken.StorageKey(accessToken),
		token.RefreshToken.StorageKey(auth.Pair().Refresh.Encoded),
	); err != nil {
		return err
	}

	e.metrics.Inc(MetricRevoke)
	e.logger.Info("session revoked",
		zap.String("user_id", auth.UserID()),
		zap.String("session_id", id),
		zap.String("subject", verified.Subject.String()))
	return nil
}

// RevokeAllForUser removes every session and liveness entry belonging to a
// user id. This is the user-deletion hook; it is token-agnostic and does not
// require any of the user's tokens to still be valid.
func (e *Engine) RevokeAllForUser(ctx context.Context, userID string) error {
	auths, err := e.sessions.FindAllByUserID(ctx, userID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(auths)*2)
	for _, auth := range auths {
		pair := auth.Pair()
		keys = append(keys,
			token.AccessToken.StorageKey(pair.Access.Encoded),
			token.RefreshToken.StorageKey(pair.Refresh.Encoded),
		)
	}

	if err := e.sessions.DeleteAllByUserID(ctx, userID); err != nil {
		return err
	}
	if err := e.liveness.Delete(ctx, keys...); err != nil {
		return err
	}

	e.metrics.Inc(MetricRevokeAllForUser)
	e.logger.Info("all sessions revoked",
		zap.String("user_id", userID),
		zap.Int("sessions", len(auths)))
	return nil
}

// VerifyAccessToken runs the verification pipeline expecting an access token.
func (e *Engine) VerifyAccessToken(ctx context.Context, encoded token.EncodedToken) (*token.Token, error) {
	verified, err := e.verifier.VerifyAccessToken(ctx, encoded)
	if err != nil {
		e.observeVerifyFailure(err)
		return nil, err
	}
	e.metrics.Inc(MetricVerifySuccess)
	return verified, nil
}

// VerifyRefreshToken runs the verification pipeline expecting a refresh
// token.
func (e *Engine) VerifyRefreshToken(ctx context.Context, encoded token.EncodedToken) (*token.Token, error) {
	verified, err := e.verifier.VerifyRefreshToken(ctx, encoded)
	if err != nil {
		e.observeVerifyFailure(err)
		return nil, err
	}
	e.metrics.Inc(MetricVerifySuccess)
	return verified, nil
}

// MetricsSnapshot exposes the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// NewJanitor builds a cleanup sweeper over this engine's session store using
// the configured interval.
func (e *Engine) NewJanitor() *Janitor {
	return NewJanitor(e.sessions, e.config.Cleanup.interval(), e.logger, e.metrics)
}

// indexPair marks both tokens of a pair live, each entry expiring with its
// token.
func (e *Engine) indexPair(ctx context.Context, pair token.Pair) error {
	for _, t := range []*token.Token{pair.Access, pair.Refresh} {
		ttl := time.Until(t.ExpiresAt)
		if ttl <= 0 {
			continue
		}
		if err := e.liveness.Put(ctx, t.Type.StorageKey(t.Encoded), ttl); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) observeVerifyFailure(err error) {
	switch {
	case errors.Is(err, token.ErrInvalidToken):
		e.metrics.Inc(MetricVerifyInvalidToken)
	case errors.Is(err, token.ErrUnexpectedTokenType):
		e.metrics.Inc(MetricVerifyUnexpectedType)
	case errors.Is(err, token.ErrAuthenticationNotFound):
		e.metrics.Inc(MetricVerifyNotFound)
	}
}
