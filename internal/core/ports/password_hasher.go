package ports

import "context"

// PasswordHasher hashes and verifies passwords. Implementations are CPU bound;
// ctx only bounds how long the caller waits.
type PasswordHasher interface {
	// Hash returns a digest embedding a fresh random salt.
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches digest.
	Verify(ctx context.Context, digest, plaintext string) bool
}
