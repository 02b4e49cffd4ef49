// Package session owns the persistence side of the authentication lifecycle:
// the Authentication aggregate (one user's live token pair, unauthenticated
// until a store assigns it an id), the Store contract with its conditional
// ReplacePair operation, a Redis-backed liveness index, and two Store
// implementations (in-memory and Postgres).
//
// Correctness of refresh-token single-use hinges entirely on the store:
// ReplacePair must be at-most-once per refresh-token value so that exactly
// one concurrent refresh wins. The Postgres store takes a row lock keyed on
// the unique refresh token, so the guarantee holds across service instances.
package session
