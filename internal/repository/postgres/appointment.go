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

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

const appointmentColumns = `id, patient_id, practitioner_id, scheduled_at,
	   status, payment_status, notes, created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, tx repository.Tx, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, practitioner_id, scheduled_at,
			status, payment_status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.ext(tx).ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.PractitionerID,
		appointment.ScheduledAt,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetForUpdate(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`

	var appointment model.Appointment
	if err := sqlx.GetContext(ctx, r.ext(tx), &appointment, query, id); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to lock appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, tx repository.Tx, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, payment_status = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.ext(tx).ExecContext(ctx, query,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) SetPaymentStatus(ctx context.Context, tx repository.Tx, id uuid.UUID, status model.AppointmentPaymentStatus) error {
	query := `
		UPDATE appointments
		SET payment_status = $1, updated_at = $2
		WHERE id = $3
	`
	_, err := r.ext(tx).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set appointment payment status: %w", err)
	}
	return nil
}

func (r *appointmentRepository) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE practitioner_id = $1
	`
	args := []interface{}{practitionerID}
	argCount := 2

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND scheduled_at >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND scheduled_at < $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY scheduled_at ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatientRUT(ctx context.Context, rut string) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.practitioner_id, a.scheduled_at,
			   a.status, a.payment_status, a.notes, a.created_at, a.updated_at
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE lower(p.rut) = lower($1)
		ORDER BY a.scheduled_at DESC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, rut); err != nil {
		return nil, fmt.Errorf("failed to list appointments by patient rut: %w", err)
	}
	return appointments, nil
}
