// Package review handles patient feedback on completed appointments.
package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/gateway/sentiment"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/logger"
)

type Service struct {
	reviews      repository.ReviewRepository
	appointments repository.AppointmentRepository
	classifier   sentiment.Classifier
	logger       *logger.Logger
}

func NewService(
	reviews repository.ReviewRepository,
	appointments repository.AppointmentRepository,
	classifier sentiment.Classifier,
	log *logger.Logger,
) *Service {
	return &Service{
		reviews:      reviews,
		appointments: appointments,
		classifier:   classifier,
		logger:       log,
	}
}

// Create stores one review for a completed appointment. The comment is
// labelled by the sentiment classifier; a classifier outage degrades to
// neutral rather than rejecting the review.
func (s *Service) Create(ctx context.Context, appointmentID uuid.UUID, comment string) (*model.Review, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.AppointmentStatusCompleted {
		return nil, apperrors.Conflict("only completed appointments can be reviewed", nil)
	}

	exists, err := s.reviews.ExistsForAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("appointment already has a review", nil)
	}

	label, err := s.classifier.Classify(ctx, comment)
	if err != nil {
		s.logger.Warn("sentiment classification failed, defaulting to neutral", "appointment_id", appointmentID.String(), "error", err.Error())
		label = model.ReviewSentimentNeutral
	}

	review := &model.Review{
		AppointmentID: appointmentID,
		Comment:       comment,
		Sentiment:     label,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListByPractitioner returns the reviews left on a practitioner's
// completed appointments.
func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error) {
	reviews, err := s.reviews.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
