// Package auth issues and validates the JWT pairs used by practitioner
// sessions.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kineayuda/booking-api/config"
	"github.com/kineayuda/booking-api/internal/model"
)

type JWTService interface {
	GenerateAccessToken(p *model.Practitioner) (string, error)
	GenerateRefreshToken(p *model.Practitioner) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
	ValidateRefreshToken(token string) (*model.TokenClaims, error)
}

type jwtService struct {
	secret        []byte
	refreshSecret []byte
	expiry        time.Duration
	refreshExpiry time.Duration
}

func NewJWTService(cfg config.JWTConfig) JWTService {
	expiry := time.Duration(cfg.ExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	refreshExpiry := time.Duration(cfg.RefreshExpiryHours) * time.Hour
	if refreshExpiry <= 0 {
		refreshExpiry = 7 * 24 * time.Hour
	}
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &jwtService{
		secret:        []byte(cfg.Secret),
		refreshSecret: []byte(refreshSecret),
		expiry:        expiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *jwtService) GenerateAccessToken(p *model.Practitioner) (string, error) {
	return s.generate(p, s.secret, s.expiry)
}

func (s *jwtService) GenerateRefreshToken(p *model.Practitioner) (string, error) {
	return s.generate(p, s.refreshSecret, s.refreshExpiry)
}

func (s *jwtService) generate(p *model.Practitioner, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.TokenClaims{
		PractitionerID: p.ID,
		Email:          p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *jwtService) ValidateToken(token string) (*model.TokenClaims, error) {
	return s.validate(token, s.secret)
}

func (s *jwtService) ValidateRefreshToken(token string) (*model.TokenClaims, error) {
	return s.validate(token, s.refreshSecret)
}

func (s *jwtService) validate(token string, secret []byte) (*model.TokenClaims, error) {
	claims := &model.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
