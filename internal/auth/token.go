package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims represents JWT token claims
type Claims struct {
	RoleID int64  `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() (internal.Identity, error) {
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return internal.Identity{}, ErrTokenInvalid
	}
	return internal.Identity{UserID: uid, RoleID: c.RoleID, Email: c.Email}, nil
}

// TokenSubject is what gets embedded in an issued token.
type TokenSubject struct {
	UserID int64
	RoleID int64
	Email  string
}

// TokenGenerator issues and verifies stateless bearer tokens.
type TokenGenerator interface {
	Issue(sub TokenSubject) (token string, expiresAt time.Time, err error)
	Verify(token string) (*Claims, error)
}

type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type TokenOption func(*JWTTokenGenerator)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) TokenOption {
	return func(g *JWTTokenGenerator) { g.now = now }
}

func WithIssuer(issuer string) TokenOption {
	return func(g *JWTTokenGenerator) { g.issuer = issuer }
}

func NewJWTTokenGenerator(secret string, ttl time.Duration, opts ...TokenOption) *JWTTokenGenerator {
	g := &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Issue signs {sub, role, email, iat, exp=iat+ttl} with HS256.
func (j *JWTTokenGenerator) Issue(sub TokenSubject) (string, time.Time, error) {
	issuedAt := j.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(j.ttl)

	claims := &Claims{
		RoleID: sub.RoleID,
		Email:  sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sub.UserID, 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks signature, algorithm and lifetime. A token is expired once now >= exp.
func (j *JWTTokenGenerator) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !token.Valid || claims.IssuedAt == nil || claims.RoleID <= 0 {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.Identity(); err != nil {
		return nil, err
	}
	return claims, nil
}
