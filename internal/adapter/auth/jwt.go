package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

// Claims defines the structure of the JWT claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HMAC-signed tokens carrying subject, role
// and expiry. There is no revocation list; tokens are valid until expiry.
type JWTService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

func NewJWTService(secret, algorithm string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}

	return &JWTService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

func (s *JWTService) Issue(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *JWTService) Validate(token string) (domain.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrTokenExpired
		}
		return domain.Identity{}, domain.ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" || claims.Role == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{
		Subject: claims.Subject,
		Role:    domain.Role(claims.Role),
	}, nil
}
