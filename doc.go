// Package goTokens provides the JWT authentication lifecycle: issuing signed
// access/refresh token pairs, verifying presented tokens through a fixed
// decode -> type check -> liveness pipeline, and driving session state through
// authenticate, refresh, revoke, and cleanup.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. The engine itself holds no mutable state beyond read-only
// configuration; all cross-instance consistency lives in the external stores,
// which is why refresh-token single-use is enforced by the session store's
// conditional ReplacePair rather than any in-process lock.
//
// # Architecture boundaries
//
// goTokens is the public surface: [Engine], [Builder], [Config], [Janitor],
// and the sentinel errors. The cryptographic core lives in the token
// subpackage, persistence contracts and implementations in session, and the
// opaque password capability in password. Transport plumbing (HTTP routing,
// DTOs, schema management) is a host concern and stays out of this module.
//
// # Error surface
//
// All verification failures (invalid token, unexpected type, authentication
// not found) should be mapped to one undifferentiated "unauthorized" at the
// transport boundary; they remain distinguishable via errors.Is for logs and
// metrics. Store connectivity failures wrap session.ErrStoreUnavailable and
// belong to a different class entirely (service unavailable). Nothing is
// retried inside the engine.
package goTokens
