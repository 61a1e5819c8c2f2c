// Package subscription derives a practitioner's subscription state from
// payment history. Nothing here mutates payment data.
package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
)

const (
	cacheKeyPrefix = "subscription:active:"
	cacheTTL       = 30 * time.Second
)

type Service struct {
	payments repository.PaymentRepository
	cache    *redis.Client
	now      func() time.Time
}

// NewService creates the gate. cache may be nil, in which case every
// Active call hits the database.
func NewService(payments repository.PaymentRepository, cache *redis.Client) *Service {
	return &Service{
		payments: payments,
		cache:    cache,
		now:      time.Now,
	}
}

// Active reports whether the practitioner holds a paid, unexpired
// subscription transaction.
func (s *Service) Active(ctx context.Context, practitionerID uuid.UUID) (bool, error) {
	if s.cache != nil {
		val, err := s.cache.Get(ctx, cacheKeyPrefix+practitionerID.String()).Result()
		if err == nil {
			return val == "1", nil
		}
		if err != redis.Nil {
			log.Warn().Err(err).Msg("subscription cache read failed")
		}
	}

	active, err := s.payments.HasActiveSubscription(ctx, practitionerID, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}

	if s.cache != nil {
		val := "0"
		if active {
			val = "1"
		}
		if err := s.cache.Set(ctx, cacheKeyPrefix+practitionerID.String(), val, cacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("subscription cache write failed")
		}
	}

	return active, nil
}

// Invalidate drops the cached state after a payment transition.
func (s *Service) Invalidate(ctx context.Context, practitionerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKeyPrefix+practitionerID.String()).Err(); err != nil {
		log.Warn().Err(err).Msg("subscription cache invalidation failed")
	}
}

// Status returns the latest subscription transaction together with the
// derived active flag and expiration.
func (s *Service) Status(ctx context.Context, practitionerID uuid.UUID) (*model.SubscriptionStatus, error) {
	last, err := s.payments.LatestByPractitioner(ctx, practitionerID, model.TransactionKindSubscription)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest transaction: %w", err)
	}

	active, err := s.Active(ctx, practitionerID)
	if err != nil {
		return nil, err
	}

	status := &model.SubscriptionStatus{Active: active, LastTransaction: last}
	if last != nil {
		status.ExpiresAt = last.ExpiresAt
	}
	return status, nil
}
