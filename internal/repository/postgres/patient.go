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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, tx repository.Tx, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, last_name, email, phone, rut, birth_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()

	_, err := r.ext(tx).ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.RUT,
		patient.BirthDate,
		patient.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.Conflict("a patient with this rut already exists", err)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, rut, birth_date, created_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) FindByRUT(ctx context.Context, tx repository.Tx, rut string) (*model.Patient, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, rut, birth_date, created_at
		FROM patients
		WHERE lower(rut) = lower($1)
	`
	var patient model.Patient
	err := sqlx.GetContext(ctx, r.ext(tx), &patient, query, rut)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find patient by rut: %w", err)
	}
	return &patient, nil
}
