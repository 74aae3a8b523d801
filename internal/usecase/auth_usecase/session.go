package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// セッションのclaims。roleは入れない（毎回DBのユーザーから解決する）
type Claims struct {
	TokenVersion int `json:"tv"`
	jwt.RegisteredClaims
}

// HS256で署名したセッショントークン
type JWTSessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTSessionManager(secret string, ttl time.Duration) *JWTSessionManager {
	return &JWTSessionManager{secret: []byte(secret), ttl: ttl}
}

func (m *JWTSessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *JWTSessionManager) Issue(userID string, tokenVersion int, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)
	claims := Claims{
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse は署名・アルゴリズム・期限を検証してclaimsを返す
func (m *JWTSessionManager) Parse(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.TokenVersion < 0 {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
