// Package auth registers practitioners and manages their sessions.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	"github.com/kineayuda/booking-api/pkg/auth"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/rut"
	"github.com/kineayuda/booking-api/pkg/security"
)

const (
	bcryptCost = 12

	claimsCacheTTL     = 5 * time.Minute
	claimsCacheCleanup = 10 * time.Minute
)

type Service struct {
	practitioners repository.PractitionerRepository
	jwtSvc        auth.JWTService
	hasher        security.PasswordHasher

	// claimsCache memoizes successful token validations so hot endpoints
	// skip the signature check. Entries outlive neither the token TTL
	// nor the cache TTL, whichever is shorter.
	claimsCache *gocache.Cache
}

func NewService(practitioners repository.PractitionerRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		practitioners: practitioners,
		jwtSvc:        jwtSvc,
		hasher:        security.NewBcryptHasher(bcryptCost),
		claimsCache:   gocache.New(claimsCacheTTL, claimsCacheCleanup),
	}
}

// Register creates a practitioner account in pending verification state.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Practitioner, error) {
	normalized, err := rut.Normalize(req.RUT)
	if err != nil {
		return nil, apperrors.BadRequest("invalid rut", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p := &model.Practitioner{
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		RUT:                normalized,
		LicenseNumber:      strings.TrimSpace(req.LicenseNumber),
		Specialty:          strings.TrimSpace(req.Specialty),
		VerificationStatus: model.VerificationStatusPending,
		PasswordHash:       hash,
	}
	if err := s.practitioners.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Login verifies the credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenPair, error) {
	p, err := s.practitioners.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(nil)
		}
		return nil, err
	}

	if err := s.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	return s.generatePair(p)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	p, err := s.practitioners.Get(ctx, claims.PractitionerID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(nil)
		}
		return nil, err
	}
	return s.generatePair(p)
}

// ValidateToken checks an access token and returns its claims.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	if cached, found := s.claimsCache.Get(token); found {
		return cached.(*model.TokenClaims), nil
	}

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	ttl := claimsCacheTTL
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl > 0 {
		s.claimsCache.Set(token, claims, ttl)
	}
	return claims, nil
}

func (s *Service) generatePair(p *model.Practitioner) (*model.TokenPair, error) {
	access, err := s.jwtSvc.GenerateAccessToken(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
