// Package slot owns the practitioner calendar: publishing, cancelling and
// listing bookable slots.
package slot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/metrics"
)

// SubscriptionGate authorizes slot publication.
type SubscriptionGate interface {
	Active(ctx context.Context, practitionerID uuid.UUID) (bool, error)
}

type Service struct {
	repo    repository.SlotRepository
	txr     repository.TxRunner
	gate    SubscriptionGate
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.SlotRepository, txr repository.TxRunner, gate SubscriptionGate, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		txr:     txr,
		gate:    gate,
		metrics: m,
		now:     time.Now,
	}
}

// Publish creates an available slot. It requires an active subscription,
// a future, well-ordered interval, and no overlap with any blocking slot
// of the practitioner. The overlap check runs inside the same transaction
// as the insert; the schema's exclusion constraint catches the remaining
// write race.
func (s *Service) Publish(ctx context.Context, practitionerID uuid.UUID, start, end time.Time) (*model.Slot, error) {
	active, err := s.gate.Active(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if !active {
		return nil, apperrors.Forbidden("an active subscription is required to publish slots", nil)
	}

	if !start.Before(end) {
		return nil, apperrors.BadRequest("slot start must be before its end", nil)
	}
	if start.Before(s.now()) {
		return nil, apperrors.BadRequest("slot must start in the future", nil)
	}

	slot := &model.Slot{
		PractitionerID: practitionerID,
		StartTime:      start,
		EndTime:        end,
		Status:         model.SlotStatusAvailable,
	}

	err = s.txr.WithTx(ctx, func(tx repository.Tx) error {
		overlap, err := s.repo.HasOverlap(ctx, tx, practitionerID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return apperrors.Conflict("slot overlaps an existing slot", nil)
		}
		return s.repo.Create(ctx, tx, slot)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SlotsPublished.Inc()
	return slot, nil
}

// Cancel deletes a slot that is not reserved. Reserved slots require the
// appointment to be cancelled first. The slot row stays locked from the
// status check through the delete so a reservation committing in between
// cannot be wiped out.
func (s *Service) Cancel(ctx context.Context, practitionerID, slotID uuid.UUID) error {
	return s.txr.WithTx(ctx, func(tx repository.Tx) error {
		slot, err := s.repo.GetForUpdate(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if slot.PractitionerID != practitionerID {
			return apperrors.Forbidden("slot belongs to another practitioner", nil)
		}
		if slot.Status == model.SlotStatusReserved {
			return apperrors.Conflict("slot is reserved; cancel the appointment first", nil)
		}

		if err := s.repo.Delete(ctx, tx, slotID); err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		return nil
	})
}

// ListAvailable returns the practitioner's future available slots ordered
// by start time. A zero from defaults to now.
func (s *Service) ListAvailable(ctx context.Context, practitionerID uuid.UUID, from time.Time) ([]*model.Slot, error) {
	if from.IsZero() {
		from = s.now()
	}
	slots, err := s.repo.ListAvailable(ctx, practitionerID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	return slots, nil
}

// ListByPractitioner returns the practitioner's full agenda.
func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.Slot, error) {
	slots, err := s.repo.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}
