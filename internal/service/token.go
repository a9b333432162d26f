package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rukshanyomal11/farm-management-system/config"
	domainerrors "github.com/rukshanyomal11/farm-management-system/internal/errors"
)

// AccessClaims is the payload carried by both access and refresh
// tokens. The two are signed with different secrets so one can never
// be presented in place of the other.
type AccessClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the JWT pair.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

// AccessExpiry reports the configured access token lifetime.
func (s *TokenService) AccessExpiry() time.Duration {
	return s.accessExpiry
}

// GenerateAccessToken mints a short-lived access token.
func (s *TokenService) GenerateAccessToken(userID uint, email, role string) (string, error) {
	return s.generate(userID, email, role, s.accessExpiry, s.accessSecret)
}

// GenerateRefreshToken mints a long-lived refresh token.
func (s *TokenService) GenerateRefreshToken(userID uint, email, role string) (string, error) {
	return s.generate(userID, email, role, s.refreshExpiry, s.refreshSecret)
}

func (s *TokenService) generate(userID uint, email, role string, expiry time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti: tokens minted in the same second must still
			// differ, since sessions are keyed by the token hash.
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry of an access token.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefreshToken validates signature and expiry of a refresh token.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*AccessClaims, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *TokenService) verify(tokenString string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrInvalidToken
	}
	if !token.Valid {
		return nil, domainerrors.ErrInvalidToken
	}
	return claims, nil
}

// HashToken derives the digest under which a refresh token is stored.
// Sessions never hold the raw token, so a leaked session table cannot
// be replayed.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
