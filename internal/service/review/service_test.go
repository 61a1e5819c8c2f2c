package review

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/logger"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*model.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*model.Review)}
}

func (r *fakeReviewRepo) Create(_ context.Context, review *model.Review) error {
	if _, ok := r.reviews[review.AppointmentID]; ok {
		return apperrors.Conflict("appointment already has a review", nil)
	}
	review.ID = uuid.New()
	r.reviews[review.AppointmentID] = review
	return nil
}

func (r *fakeReviewRepo) ExistsForAppointment(_ context.Context, appointmentID uuid.UUID) (bool, error) {
	_, ok := r.reviews[appointmentID]
	return ok, nil
}

func (r *fakeReviewRepo) ListByPractitioner(context.Context, uuid.UUID) ([]*model.Review, error) {
	return nil, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (r *fakeAppointmentRepo) Create(context.Context, repository.Tx, *model.Appointment) error {
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return a, nil
}

func (r *fakeAppointmentRepo) GetForUpdate(ctx context.Context, _ repository.Tx, id uuid.UUID) (*model.Appointment, error) {
	return r.Get(ctx, id)
}

func (r *fakeAppointmentRepo) Update(context.Context, repository.Tx, *model.Appointment) error {
	return nil
}

func (r *fakeAppointmentRepo) SetPaymentStatus(context.Context, repository.Tx, uuid.UUID, model.AppointmentPaymentStatus) error {
	return nil
}

func (r *fakeAppointmentRepo) ListByPractitioner(context.Context, uuid.UUID, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *fakeAppointmentRepo) ListByPatientRUT(context.Context, string) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeClassifier struct {
	label model.ReviewSentiment
	err   error
}

func (c *fakeClassifier) Classify(context.Context, string) (model.ReviewSentiment, error) {
	return c.label, c.err
}

func newTestService(status model.AppointmentStatus, classifier *fakeClassifier) (*Service, uuid.UUID, *fakeReviewRepo) {
	appointmentID := uuid.New()
	appointments := &fakeAppointmentRepo{appointments: map[uuid.UUID]*model.Appointment{
		appointmentID: {ID: appointmentID, Status: status},
	}}
	reviews := newFakeReviewRepo()
	log := logger.NewLogger(&logger.Config{Level: logger.FatalLevel, Output: io.Discard})
	return NewService(reviews, appointments, classifier, log), appointmentID, reviews
}

func TestCreate(t *testing.T) {
	t.Run("labels the comment", func(t *testing.T) {
		svc, appointmentID, _ := newTestService(model.AppointmentStatusCompleted, &fakeClassifier{label: model.ReviewSentimentPositive})

		review, err := svc.Create(context.Background(), appointmentID, "excelente atencion")
		require.NoError(t, err)
		assert.Equal(t, model.ReviewSentimentPositive, review.Sentiment)
		assert.Equal(t, "excelente atencion", review.Comment)
	})

	t.Run("classifier outage degrades to neutral", func(t *testing.T) {
		svc, appointmentID, _ := newTestService(model.AppointmentStatusCompleted, &fakeClassifier{err: errors.New("timeout")})

		review, err := svc.Create(context.Background(), appointmentID, "buena sesion")
		require.NoError(t, err)
		assert.Equal(t, model.ReviewSentimentNeutral, review.Sentiment)
	})

	t.Run("rejects non-completed appointment", func(t *testing.T) {
		svc, appointmentID, _ := newTestService(model.AppointmentStatusPending, &fakeClassifier{label: model.ReviewSentimentNeutral})

		_, err := svc.Create(context.Background(), appointmentID, "comentario")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	})

	t.Run("rejects second review for the same appointment", func(t *testing.T) {
		svc, appointmentID, _ := newTestService(model.AppointmentStatusCompleted, &fakeClassifier{label: model.ReviewSentimentNeutral})

		_, err := svc.Create(context.Background(), appointmentID, "primera")
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), appointmentID, "segunda")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	})

	t.Run("unknown appointment", func(t *testing.T) {
		svc, _, _ := newTestService(model.AppointmentStatusCompleted, &fakeClassifier{label: model.ReviewSentimentNeutral})

		_, err := svc.Create(context.Background(), uuid.New(), "comentario")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	})
}
