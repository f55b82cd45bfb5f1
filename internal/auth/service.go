package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// ErrInsufficientRole is returned when the token lacks the required role claim.
var ErrInsufficientRole = errors.New("auth: insufficient role")

const roleClaim = "role"

// Service verifies admin access tokens signed with a shared HS256 secret.
type Service struct {
	Secret    []byte
	Issuer    string
	ClockSkew time.Duration
	Now       func() time.Time
}

// NewService constructs an admin token service.
func NewService(secret, issuer string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	return &Service{Secret: []byte(secret), Issuer: issuer}, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseAdminToken verifies the token and returns its subject when the token
// carries the required admin role.
func (s *Service) ParseAdminToken(raw string, requiredRole string) (string, error) {
	if s == nil || len(s.Secret) == 0 {
		return "", errors.New("auth: service not configured")
	}
	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, s.Secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	}
	if s.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(s.ClockSkew))
	}
	if s.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.Issuer))
	}
	tok, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if requiredRole != "" {
		value, ok := tok.Get(roleClaim)
		if !ok {
			return "", ErrInsufficientRole
		}
		role, ok := value.(string)
		if !ok || role != requiredRole {
			return "", ErrInsufficientRole
		}
	}
	return tok.Subject(), nil
}

// SignAdminToken issues a short-lived admin token. Used by operational tooling
// and tests.
func (s *Service) SignAdminToken(subject, role string, ttl time.Duration) (string, error) {
	if s == nil || len(s.Secret) == 0 {
		return "", errors.New("auth: service not configured")
	}
	now := s.now()
	builder := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(roleClaim, role)
	if s.Issuer != "" {
		builder = builder.Issuer(s.Issuer)
	}
	tok, err := builder.Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.Secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}
