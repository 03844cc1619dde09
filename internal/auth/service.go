package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/checkout-api/internal/common"
)

// Service issues and parses the HS256 bearer tokens that identify clients.
// The token subject is the client id.
type Service struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	clockSkew time.Duration
	now       func() time.Time
}

// NewService builds a token service. TTL defaults to one hour.
func NewService(secret, issuer string, accessTTL time.Duration) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Service{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		clockSkew: 30 * time.Second,
		now:       time.Now,
	}, nil
}

// IssueAccessToken signs a token whose subject is the given client id.
func (s *Service) IssueAccessToken(clientID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(clientID).
		Issuer(s.issuer).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// ParseAccessToken verifies the signature and claims and returns the client id.
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(s.now)),
		jwt.WithAcceptableSkew(s.clockSkew),
	}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	if err := jwt.Validate(parsed, options...); err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if parsed.Subject() == "" {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, errors.New("auth: token missing subject"))
	}
	return parsed.Subject(), nil
}
