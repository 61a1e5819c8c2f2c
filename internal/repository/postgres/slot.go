package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
)

type slotRepository struct {
	BaseRepository
}

func NewSlotRepository(db *sqlx.DB) repository.SlotRepository {
	return &slotRepository{BaseRepository: NewBaseRepository(db)}
}

const slotColumns = `id, practitioner_id, start_time, end_time, status,
	   patient_id, appointment_id, created_at, updated_at`

func (r *slotRepository) Create(ctx context.Context, tx repository.Tx, slot *model.Slot) error {
	query := `
		INSERT INTO slots (
			id, practitioner_id, start_time, end_time, status,
			patient_id, appointment_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	slot.ID = uuid.New()
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt

	_, err := r.ext(tx).ExecContext(ctx, query,
		slot.ID,
		slot.PractitionerID,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.PatientID,
		slot.AppointmentID,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		if IsExclusionViolation(err) {
			return apperrors.Conflict("slot overlaps an existing slot", err)
		}
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *slotRepository) Get(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	var slot model.Slot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("slot", err)
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) GetForUpdate(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`

	var slot model.Slot
	if err := sqlx.GetContext(ctx, r.ext(tx), &slot, query, id); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("slot", err)
		}
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) GetByAppointment(ctx context.Context, tx repository.Tx, appointmentID uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE appointment_id = $1`

	var slot model.Slot
	if err := sqlx.GetContext(ctx, r.ext(tx), &slot, query, appointmentID); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("slot", err)
		}
		return nil, fmt.Errorf("failed to get slot by appointment: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) Update(ctx context.Context, tx repository.Tx, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET status = $1, patient_id = $2, appointment_id = $3, updated_at = $4
		WHERE id = $5
	`
	slot.UpdatedAt = time.Now()

	result, err := r.ext(tx).ExecContext(ctx, query,
		slot.Status,
		slot.PatientID,
		slot.AppointmentID,
		slot.UpdatedAt,
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("slot not found")
	}
	return nil
}

func (r *slotRepository) Delete(ctx context.Context, tx repository.Tx, id uuid.UUID) error {
	result, err := r.ext(tx).ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("slot not found")
	}
	return nil
}

func (r *slotRepository) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE practitioner_id = $1
		ORDER BY start_time ASC
	`
	var slots []*model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, practitionerID); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) ListAvailable(ctx context.Context, practitionerID uuid.UUID, from time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE practitioner_id = $1
		AND status = $2
		AND start_time >= $3
		ORDER BY start_time ASC
	`
	var slots []*model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, practitionerID, model.SlotStatusAvailable, from); err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) HasOverlap(ctx context.Context, tx repository.Tx, practitionerID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM slots
			WHERE practitioner_id = $1
			AND status IN ('available', 'reserved', 'unavailable')
			AND start_time < $3
			AND end_time > $2
		)
	`
	var overlap bool
	if err := sqlx.GetContext(ctx, r.ext(tx), &overlap, query, practitionerID, start, end); err != nil {
		return false, fmt.Errorf("failed to check slot overlap: %w", err)
	}
	return overlap, nil
}
