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

type practitionerRepository struct {
	BaseRepository
}

func NewPractitionerRepository(db *sqlx.DB) repository.PractitionerRepository {
	return &practitionerRepository{BaseRepository: NewBaseRepository(db)}
}

const practitionerColumns = `id, first_name, last_name, email, rut,
	   license_number, specialty, verification_status, password_hash,
	   created_at, updated_at`

func (r *practitionerRepository) Create(ctx context.Context, p *model.Practitioner) error {
	query := `
		INSERT INTO practitioners (
			id, first_name, last_name, email, rut, license_number,
			specialty, verification_status, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.RUT,
		p.LicenseNumber,
		p.Specialty,
		p.VerificationStatus,
		p.PasswordHash,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.Conflict("a practitioner with this email or rut already exists", err)
		}
		return fmt.Errorf("failed to create practitioner: %w", err)
	}
	return nil
}

func (r *practitionerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	query := `SELECT ` + practitionerColumns + ` FROM practitioners WHERE id = $1`

	var p model.Practitioner
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("practitioner", err)
		}
		return nil, fmt.Errorf("failed to get practitioner: %w", err)
	}
	return &p, nil
}

func (r *practitionerRepository) GetByEmail(ctx context.Context, email string) (*model.Practitioner, error) {
	query := `SELECT ` + practitionerColumns + ` FROM practitioners WHERE lower(email) = lower($1)`

	var p model.Practitioner
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("practitioner", err)
		}
		return nil, fmt.Errorf("failed to get practitioner by email: %w", err)
	}
	return &p, nil
}

func (r *practitionerRepository) Update(ctx context.Context, p *model.Practitioner) error {
	query := `
		UPDATE practitioners
		SET first_name = $1, last_name = $2, license_number = $3,
			specialty = $4, verification_status = $5, updated_at = $6
		WHERE id = $7
	`
	p.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.LicenseNumber,
		p.Specialty,
		p.VerificationStatus,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update practitioner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("practitioner not found")
	}
	return nil
}

func (r *practitionerRepository) ListApproved(ctx context.Context) ([]*model.Practitioner, error) {
	query := `
		SELECT ` + practitionerColumns + `
		FROM practitioners
		WHERE verification_status = $1
		ORDER BY last_name, first_name
	`
	var practitioners []*model.Practitioner
	if err := r.db.SelectContext(ctx, &practitioners, query, model.VerificationStatusApproved); err != nil {
		return nil, fmt.Errorf("failed to list approved practitioners: %w", err)
	}
	return practitioners, nil
}
