// Package password is the opaque password-comparison capability the engine
// delegates to. The engine never inspects hashes itself; it only asks
// "does this plaintext match this stored hash". The bcrypt implementation
// here is the default; swap in anything satisfying the engine's
// PasswordComparer to change encoders.
package password
