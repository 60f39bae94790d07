package utilities

import (
	"errors"
	"strings"
	"time"

	"okurmen-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenExpiry is the default validity window of an issued token.
const TokenExpiry = 7 * 24 * time.Hour

// ErrInvalidToken is returned for every verification failure.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims struct
type Claims struct {
	SubjectID string     `json:"id"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 identity tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService panics on an empty secret; configuration loading rejects
// that case before any service is built.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	if strings.TrimSpace(secret) == "" {
		panic("utilities: empty token secret")
	}
	if expiry <= 0 {
		expiry = TokenExpiry
	}
	return &TokenService{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// WithClock returns a copy of the service reading time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue creates a signed token for the subject and role.
func (s *TokenService) Issue(subjectID uuid.UUID, role model.Role) (string, error) {
	now := s.now()
	claims := &Claims{
		SubjectID: subjectID.String(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry and returns the principal.
func (s *TokenService) Verify(tokenStr string) (model.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return model.Principal{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.SubjectID)
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{SubjectID: id, Role: claims.Role}, nil
}
