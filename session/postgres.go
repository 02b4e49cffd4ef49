package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrEthical07/goTokens/token"
)

const sessionColumns = `id, user_id, subject, role, access_token, refresh_token, issued_at, access_expires_at, refresh_expires_at`

// PostgresStore is the pgx-backed Store shared across service instances.
// Uniqueness of refresh_token plus a row lock inside ReplacePair give the
// at-most-once refresh semantics the lifecycle depends on.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate bootstraps the auth_sessions table. Idempotent; meant for startup.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const schema = `
        CREATE TABLE IF NOT EXISTS auth_sessions (
            id                 UUID PRIMARY KEY,
            user_id            TEXT NOT NULL,
            subject            TEXT NOT NULL,
            role               TEXT NOT NULL,
            access_token       TEXT NOT NULL UNIQUE,
            refresh_token      TEXT NOT NULL UNIQUE,
            issued_at          TIMESTAMPTZ NOT NULL,
            access_expires_at  TIMESTAMPTZ NOT NULL,
            refresh_expires_at TIMESTAMPTZ NOT NULL,
            created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_auth_sessions_user_id ON auth_sessions (user_id);
        CREATE INDEX IF NOT EXISTS idx_auth_sessions_refresh_expires ON auth_sessions (refresh_expires_at);`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, auth *Authentication) error {
	const query = `
        INSERT INTO auth_sessions (` + sessionColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if auth.id == "" {
		auth.id = uuid.NewString()
	}
	pair := auth.Pair()
	role, err := pair.Access.Claims.Role()
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, query,
		auth.id,
		auth.userID,
		pair.Access.Subject.String(),
		role.String(),
		pair.Access.Encoded.String(),
		pair.Refresh.Encoded.String(),
		pair.Access.IssuedAt,
		pair.Access.ExpiresAt,
		pair.Refresh.ExpiresAt,
	); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) FindByAccessToken(ctx context.Context, access token.EncodedToken) (*Authentication, error) {
	const query = `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE access_token = $1`
	return s.queryOne(ctx, query, access.String())
}

func (s *PostgresStore) FindByRefreshToken(ctx context.Context, refresh token.EncodedToken) (*Authentication, error) {
	const query = `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE refresh_token = $1`
	return s.queryOne(ctx, query, refresh.String())
}

func (s *PostgresStore) FindAllByUserID(ctx context.Context, userID string) ([]*Authentication, error) {
	const query = `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE user_id = $1`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []*Authentication
	for rows.Next() {
		auth, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, auth)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

// ReplacePair locks the row currently holding currentRefresh and swaps its
// pair in the same statement. Two racing refreshes serialize on the row
// lock; the loser re-evaluates the refresh_token predicate against the
// updated row, matches nothing, and gets ErrNotFound.
func (s *PostgresStore) ReplacePair(ctx context.Context, currentRefresh token.EncodedToken, next token.Pair) (*Authentication, token.EncodedToken, error) {
	if err := next.Validate(); err != nil {
		return nil, "", err
	}
	role, err := next.Access.Claims.Role()
	if err != nil {
		return nil, "", err
	}

	const query = `
        WITH current AS (
            SELECT id, access_token AS prev_access
            FROM auth_sessions
            WHERE refresh_token = $1
            FOR UPDATE
        )
        UPDATE auth_sessions s
        SET subject = $2,
            role = $3,
            access_token = $4,
            refresh_token = $5,
            issued_at = $6,
            access_expires_at = $7,
            refresh_expires_at = $8
        FROM current
        WHERE s.id = current.id
        RETURNING s.id, s.user_id, current.prev_access`

	var (
		id         string
		userID     string
		prevAccess string
	)
	err = s.pool.QueryRow(ctx, query,
		currentRefresh.String(),
		next.Access.Subject.String(),
		role.String(),
		next.Access.Encoded.String(),
		next.Refresh.Encoded.String(),
		next.Access.IssuedAt,
		next.Access.ExpiresAt,
		next.Refresh.ExpiresAt,
	).Scan(&id, &userID, &prevAccess)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	prev, err := token.NewEncodedToken(prevAccess)
	if err != nil {
		return nil, "", err
	}
	return restore(id, userID, next), prev, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) DeleteAllByUserID(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) DeleteAllExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM auth_sessions WHERE refresh_expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return cmd.RowsAffected(), nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, arg any) (*Authentication, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil, ErrNotFound
	}
	return scanSession(rows)
}

func scanSession(rows pgx.Rows) (*Authentication, error) {
	var (
		id, userID, subjectRaw, roleRaw, accessRaw, refreshRaw string
		issuedAt, accessExp, refreshExp                        time.Time
	)
	if err := rows.Scan(&id, &userID, &subjectRaw, &roleRaw, &accessRaw, &refreshRaw, &issuedAt, &accessExp, &refreshExp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	subject, err := token.NewSubject(subjectRaw)
	if err != nil {
		return nil, err
	}
	role, err := token.ParseRole(roleRaw)
	if err != nil {
		return nil, err
	}
	accessEnc, err := token.NewEncodedToken(accessRaw)
	if err != nil {
		return nil, err
	}
	refreshEnc, err := token.NewEncodedToken(refreshRaw)
	if err != nil {
		return nil, err
	}

	access, err := token.Rebuild(token.AccessToken, accessEnc, subject, role, issuedAt, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := token.Rebuild(token.RefreshToken, refreshEnc, subject, role, issuedAt, refreshExp)
	if err != nil {
		return nil, err
	}
	pair, err := token.NewPair(access, refresh)
	if err != nil {
		return nil, err
	}
	return restore(id, userID, pair), nil
}
