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

type reviewRepository struct {
	BaseRepository
}

func NewReviewRepository(db *sqlx.DB) repository.ReviewRepository {
	return &reviewRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, appointment_id, comment, sentiment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	review.ID = uuid.New()
	review.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.AppointmentID,
		review.Comment,
		review.Sentiment,
		review.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.Conflict("appointment already has a review", err)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE appointment_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, appointmentID); err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}

func (r *reviewRepository) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error) {
	query := `
		SELECT r.id, r.appointment_id, r.comment, r.sentiment, r.created_at
		FROM reviews r
		JOIN appointments a ON a.id = r.appointment_id
		WHERE a.practitioner_id = $1
		ORDER BY r.created_at DESC
	`
	var reviews []*model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, practitionerID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
