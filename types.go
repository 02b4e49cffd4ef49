package goTokens

import (
	"context"

	"github.com/MrEthical07/goTokens/token"
)

// User is the credential record the engine needs from the host application:
// a stable id, the stored password hash, and the role to stamp into issued
// tokens.
type User struct {
	ID           string
	PasswordHash string
	Role         token.Role
}

// UserLookup is the host-side credential collaborator. Implementations
// return [ErrUserNotFound] for unknown subjects; any other error is treated
// as a backend failure and propagated.
type UserLookup interface {
	FindByUsername(ctx context.Context, subject token.Subject) (*User, error)
}

// PasswordComparer is the opaque password capability. A nil error means the
// plaintext matches the stored hash. The password package provides the
// bcrypt default.
type PasswordComparer interface {
	Compare(hashed, plain string) error
}
