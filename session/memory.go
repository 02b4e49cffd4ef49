package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goTokens/token"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the test suite
// and single-process deployments; anything horizontally scaled wants the
// Postgres store instead.
type MemoryStore struct {
	mu        sync.Mutex
	byID      map[string]*Authentication
	byAccess  map[token.EncodedToken]string
	byRefresh map[token.EncodedToken]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*Authentication),
		byAccess:  make(map[token.EncodedToken]string),
		byRefresh: make(map[token.EncodedToken]string),
	}
}

// Save assigns an id to a fresh session and indexes it. Saving an already
// persisted session rewrites its record in place.
func (s *MemoryStore) Save(_ context.Context, auth *Authentication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if auth.id == "" {
		auth.id = uuid.NewString()
	} else if prev, ok := s.byID[auth.id]; ok {
		s.unindex(prev)
	}

	stored := auth.clone()
	s.byID[stored.id] = stored
	s.index(stored)
	return nil
}

func (s *MemoryStore) FindByAccessToken(_ context.Context, access token.EncodedToken) (*Authentication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byAccess[access]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].clone(), nil
}

func (s *MemoryStore) FindByRefreshToken(_ context.Context, refresh token.EncodedToken) (*Authentication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byRefresh[refresh]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].clone(), nil
}

func (s *MemoryStore) FindAllByUserID(_ context.Context, userID string) ([]*Authentication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Authentication
	for _, auth := range s.byID {
		if auth.userID == userID {
			out = append(out, auth.clone())
		}
	}
	return out, nil
}

// ReplacePair swaps the pair of the session currently holding currentRefresh.
// The whole check-and-swap runs under the store lock, so concurrent refreshes
// of the same token serialize and only the first finds the token current.
func (s *MemoryStore) ReplacePair(_ context.Context, currentRefresh token.EncodedToken, next token.Pair) (*Authentication, token.EncodedToken, error) {
	if err := next.Validate(); err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byRefresh[currentRefresh]
	if !ok {
		return nil, "", ErrNotFound
	}

	auth := s.byID[id]
	prevAccess := auth.pair.Access.Encoded
	s.unindex(auth)
	if err := auth.RefreshTokens(next); err != nil {
		s.index(auth)
		return nil, "", err
	}
	s.index(auth)

	return auth.clone(), prevAccess, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth, ok := s.byID[id]
	if !ok {
		return nil
	}
	s.unindex(auth)
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) DeleteAllByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, auth := range s.byID {
		if auth.userID == userID {
			s.unindex(auth)
			delete(s.byID, id)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteAllExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, auth := range s.byID {
		if auth.ExpiresAt().Before(cutoff) {
			s.unindex(auth)
			delete(s.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) index(auth *Authentication) {
	s.byAccess[auth.pair.Access.Encoded] = auth.id
	s.byRefresh[auth.pair.Refresh.Encoded] = auth.id
}

func (s *MemoryStore) unindex(auth *Authentication) {
	delete(s.byAccess, auth.pair.Access.Encoded)
	delete(s.byRefresh, auth.pair.Refresh.Encoded)
}
