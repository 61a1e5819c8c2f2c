// Package payment runs the gateway payment lifecycle for subscription and
// per-appointment charges. Transactions are keyed by a globally unique
// buy order and move pending -> paid | failed | expired exactly once.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/gateway/webpay"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/logger"
	"github.com/kineayuda/booking-api/pkg/metrics"
)

// subscriptionExpiry is how long a paid subscription transaction grants
// access, counted from the moment the payment is confirmed.
const subscriptionExpiry = 30 * 24 * time.Hour

// SubscriptionCache is notified when a subscription transaction changes
// state so cached gate decisions are dropped.
type SubscriptionCache interface {
	Invalidate(ctx context.Context, practitionerID uuid.UUID)
}

type Service struct {
	payments     repository.PaymentRepository
	appointments repository.AppointmentRepository
	txr          repository.TxRunner
	gateway      webpay.Gateway
	cache        SubscriptionCache
	metrics      *metrics.Metrics
	logger       *logger.Logger

	subscriptionReturnURL string
	appointmentReturnURL  string

	now func() time.Time
}

func NewService(
	payments repository.PaymentRepository,
	appointments repository.AppointmentRepository,
	txr repository.TxRunner,
	gateway webpay.Gateway,
	cache SubscriptionCache,
	m *metrics.Metrics,
	log *logger.Logger,
	subscriptionReturnURL, appointmentReturnURL string,
) *Service {
	return &Service{
		payments:              payments,
		appointments:          appointments,
		txr:                   txr,
		gateway:               gateway,
		cache:                 cache,
		metrics:               m,
		logger:                log,
		subscriptionReturnURL: subscriptionReturnURL,
		appointmentReturnURL:  appointmentReturnURL,
		now:                   time.Now,
	}
}

// buyOrderLen is the Webpay cap on the buy order field.
const buyOrderLen = 26

// newBuyOrder derives a unique commerce order id from a uuid, truncated
// to the gateway cap. 26 hex chars keep enough entropy that the unique
// index on buy_order never fires in practice.
func newBuyOrder() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:buyOrderLen]
}

// InitiateSubscription opens a subscription payment for the practitioner.
// The pending transaction is persisted before the gateway is called; a
// gateway failure leaves it pending and unusable, never paid.
func (s *Service) InitiateSubscription(ctx context.Context, practitionerID uuid.UUID, amount int64) (*model.PaymentIntent, error) {
	if amount <= 0 {
		return nil, apperrors.BadRequest("amount must be positive", nil)
	}

	t := &model.PaymentTransaction{
		Kind:           model.TransactionKindSubscription,
		PractitionerID: practitionerID,
		Amount:         amount,
		Status:         model.TransactionStatusPending,
		BuyOrder:       newBuyOrder(),
	}
	return s.initiate(ctx, t, practitionerID.String(), s.subscriptionReturnURL)
}

// InitiateAppointment opens a payment for a pending appointment.
func (s *Service) InitiateAppointment(ctx context.Context, appointmentID uuid.UUID, amount int64) (*model.PaymentIntent, error) {
	if amount <= 0 {
		return nil, apperrors.BadRequest("amount must be positive", nil)
	}

	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.AppointmentStatusPending {
		return nil, apperrors.Conflict("appointment is not pending", nil)
	}
	if appointment.PaymentStatus == model.AppointmentPaymentPaid {
		return nil, apperrors.Conflict("appointment is already paid", nil)
	}

	t := &model.PaymentTransaction{
		Kind:           model.TransactionKindAppointment,
		PractitionerID: appointment.PractitionerID,
		PatientID:      &appointment.PatientID,
		AppointmentID:  &appointment.ID,
		Amount:         amount,
		Status:         model.TransactionStatusPending,
		BuyOrder:       newBuyOrder(),
	}
	return s.initiate(ctx, t, appointment.ID.String(), s.appointmentReturnURL)
}

func (s *Service) initiate(ctx context.Context, t *model.PaymentTransaction, sessionID, returnURL string) (*model.PaymentIntent, error) {
	err := s.payments.Create(ctx, nil, t)
	// Regenerate once if the buy order collides with an existing row.
	if apperrors.IsCode(err, apperrors.ErrConflict) {
		t.BuyOrder = newBuyOrder()
		err = s.payments.Create(ctx, nil, t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}

	created, err := s.gateway.Create(ctx, t.BuyOrder, sessionID, t.Amount, returnURL)
	if err != nil {
		s.metrics.GatewayErrors.Inc()
		s.logger.Error(err, "payment gateway create failed", "buy_order", t.BuyOrder)
		return nil, apperrors.Gateway("payment provider is unavailable", err)
	}

	t.GatewayToken = &created.Token
	if err := s.payments.Update(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("failed to store gateway token: %w", err)
	}

	s.metrics.PaymentsInitiated.WithLabelValues(string(t.Kind)).Inc()
	return &model.PaymentIntent{
		BuyOrder:    t.BuyOrder,
		Token:       created.Token,
		RedirectURL: created.URL,
	}, nil
}

// ApplyReturn finishes a payment after the payer is redirected back with
// the gateway token. The transaction is committed at the gateway and the
// outcome applied exactly once.
func (s *Service) ApplyReturn(ctx context.Context, token string) (*model.PaymentTransaction, error) {
	if token == "" {
		return nil, apperrors.BadRequest("missing gateway token", nil)
	}

	committed, err := s.gateway.Commit(ctx, token)
	if err != nil {
		s.metrics.GatewayErrors.Inc()
		s.logger.Error(err, "payment gateway commit failed")
		return nil, apperrors.Gateway("payment provider is unavailable", err)
	}

	status := model.TransactionStatusFailed
	if committed.Approved() {
		status = model.TransactionStatusPaid
	}
	return s.apply(ctx, committed.BuyOrder, status, committed.Raw)
}

// ApplyWebhook applies an asynchronous provider notification. A "pendiente"
// notification records the payload without moving the transaction; any
// unrecognized estado is treated as a failure.
func (s *Service) ApplyWebhook(ctx context.Context, payload *model.WebhookPayload, raw []byte) (*model.PaymentTransaction, error) {
	if payload.BuyOrder == "" {
		return nil, apperrors.BadRequest("missing orden_comercio", nil)
	}

	var status model.TransactionStatus
	switch strings.ToLower(strings.TrimSpace(payload.Status)) {
	case "pagado":
		status = model.TransactionStatusPaid
	case "pendiente":
		status = model.TransactionStatusPending
	case "expirado":
		status = model.TransactionStatusExpired
	case "fallido", "rechazado", "anulado":
		status = model.TransactionStatusFailed
	default:
		s.logger.Warn("unknown webhook estado, treating as failed", "estado", payload.Status, "buy_order", payload.BuyOrder)
		status = model.TransactionStatusFailed
	}
	return s.apply(ctx, payload.BuyOrder, status, raw)
}

// apply moves the transaction identified by buyOrder to status under a row
// lock. Terminal transactions are never moved again; reapplying the same
// outcome is a no-op that still reports success. The raw provider payload
// is persisted on every call that finds the transaction.
func (s *Service) apply(ctx context.Context, buyOrder string, status model.TransactionStatus, raw []byte) (*model.PaymentTransaction, error) {
	var result *model.PaymentTransaction
	err := s.txr.WithTx(ctx, func(tx repository.Tx) error {
		t, err := s.payments.GetByBuyOrderForUpdate(ctx, tx, buyOrder)
		if err != nil {
			return err
		}

		if len(raw) > 0 {
			t.RawPayload = raw
		}

		if t.Status.Terminal() || status == model.TransactionStatusPending {
			// Keep the payload for audit, drop the transition.
			result = t
			return s.payments.Update(ctx, tx, t)
		}

		t.Status = status
		if status == model.TransactionStatusPaid && t.Kind == model.TransactionKindSubscription {
			expires := s.now().Add(subscriptionExpiry)
			t.ExpiresAt = &expires
		}
		if err := s.payments.Update(ctx, tx, t); err != nil {
			return err
		}

		if t.Kind == model.TransactionKindAppointment && t.AppointmentID != nil {
			paymentStatus := model.AppointmentPaymentFailed
			if status == model.TransactionStatusPaid {
				paymentStatus = model.AppointmentPaymentPaid
			}
			if err := s.appointments.SetPaymentStatus(ctx, tx, *t.AppointmentID, paymentStatus); err != nil {
				return err
			}
		}

		s.metrics.PaymentTransitions.WithLabelValues(string(t.Kind), string(status)).Inc()
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Kind == model.TransactionKindSubscription {
		s.cache.Invalidate(ctx, result.PractitionerID)
	}
	return result, nil
}

// Status returns the transaction identified by buyOrder.
func (s *Service) Status(ctx context.Context, buyOrder string) (*model.PaymentTransaction, error) {
	return s.payments.GetByBuyOrder(ctx, buyOrder)
}
