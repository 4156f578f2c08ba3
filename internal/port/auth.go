package port

import "github.com/rl1809/sweet-shop/internal/core/domain"

type TokenService interface {
	// Issue produces a signed, time-limited token embedding the identity.
	Issue(identity domain.Identity) (string, error)

	// Validate returns the identity carried by a token, or
	// domain.ErrInvalidToken / domain.ErrTokenExpired.
	Validate(token string) (domain.Identity, error)
}

// PasswordHasher is a one-way hash function; the stored hash is opaque.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
