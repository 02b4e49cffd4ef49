// Package token holds the cryptographic core of goTokens: the self-validating
// value types (EncodedToken, Subject, Role, Claims, Token, Pair), the
// HMAC-signed JWT codec, the access/refresh pair issuer, and the three-step
// token verifier.
//
// Everything in this package is stateless aside from immutable configuration
// (signing secret, TTLs). The verifier's only I/O is the liveness lookup it
// delegates through [ActiveTokenChecker]; session persistence lives in the
// session package and never leaks in here.
package token
