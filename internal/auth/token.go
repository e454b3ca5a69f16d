package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

// TokenKind tells access and refresh tokens apart.
type TokenKind string

// Token kinds.
const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims are the JWT claims of both token kinds. The subject is the user id.
type Claims struct {
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return id, nil
}

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshID      string
	RefreshExpires time.Time
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Issue creates a new access and refresh token for the user.
// The refresh token id is random and must be remembered by the caller to allow refreshes.
func (m *TokenManager) Issue(user *models.User) (*TokenPair, error) {
	now := m.now()

	pair := &TokenPair{
		AccessExpires:  now.Add(m.accessTTL),
		RefreshID:      uuid.NewString(),
		RefreshExpires: now.Add(m.refreshTTL),
	}

	var err error

	pair.AccessToken, err = m.sign(user, TokenAccess, uuid.NewString(), now, pair.AccessExpires)
	if err != nil {
		return nil, err
	}

	pair.RefreshToken, err = m.sign(user, TokenRefresh, pair.RefreshID, now, pair.RefreshExpires)
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (m *TokenManager) sign(user *models.User, kind TokenKind, id string, now, exp time.Time) (string, error) {
	claims := Claims{
		Username: user.Username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Parse verifies a token of the expected kind and returns its claims.
func (m *TokenManager) Parse(token string, kind TokenKind) (*Claims, error) {
	claims := new(Claims)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}

	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}

	return claims, nil
}
