package ports

import "time"

// PasswordHasher hashes credentials at rest.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches digest. A malformed digest is a
	// mismatch, never an error.
	Verify(plain, digest string) bool
}

// Token is a signed access token and its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService issues and validates stateless signed identity tokens.
type TokenService interface {
	// Issue signs a token for subject. ttl <= 0 selects the configured default.
	Issue(subject string, ttl time.Duration) (Token, error)
	// Validate returns the subject of a well-formed, correctly signed,
	// unexpired token.
	Validate(token string) (string, error)
}
