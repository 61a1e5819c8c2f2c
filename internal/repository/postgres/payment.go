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

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{BaseRepository: NewBaseRepository(db)}
}

const paymentColumns = `id, kind, practitioner_id, patient_id, appointment_id,
	   amount, status, buy_order, gateway_token, raw_payload,
	   expires_at, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, tx repository.Tx, t *model.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, kind, practitioner_id, patient_id, appointment_id,
			amount, status, buy_order, gateway_token, raw_payload,
			expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	_, err := r.ext(tx).ExecContext(ctx, query,
		t.ID,
		t.Kind,
		t.PractitionerID,
		t.PatientID,
		t.AppointmentID,
		t.Amount,
		t.Status,
		t.BuyOrder,
		t.GatewayToken,
		t.RawPayload,
		t.ExpiresAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperrors.Conflict("buy order already exists", err)
		}
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByBuyOrder(ctx context.Context, buyOrder string) (*model.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE buy_order = $1`

	var t model.PaymentTransaction
	if err := r.db.GetContext(ctx, &t, query, buyOrder); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("payment transaction", err)
		}
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}
	return &t, nil
}

func (r *paymentRepository) GetByBuyOrderForUpdate(ctx context.Context, tx repository.Tx, buyOrder string) (*model.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE buy_order = $1 FOR UPDATE`

	var t model.PaymentTransaction
	if err := sqlx.GetContext(ctx, r.ext(tx), &t, query, buyOrder); err != nil {
		if IsNoRows(err) {
			return nil, apperrors.NotFound("payment transaction", err)
		}
		return nil, fmt.Errorf("failed to lock payment transaction: %w", err)
	}
	return &t, nil
}

func (r *paymentRepository) Update(ctx context.Context, tx repository.Tx, t *model.PaymentTransaction) error {
	query := `
		UPDATE payment_transactions
		SET status = $1, gateway_token = $2, raw_payload = $3,
			expires_at = $4, updated_at = $5
		WHERE id = $6
	`
	t.UpdatedAt = time.Now()

	result, err := r.ext(tx).ExecContext(ctx, query,
		t.Status,
		t.GatewayToken,
		t.RawPayload,
		t.ExpiresAt,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment transaction not found")
	}
	return nil
}

func (r *paymentRepository) LatestByPractitioner(ctx context.Context, practitionerID uuid.UUID, kind model.TransactionKind) (*model.PaymentTransaction, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payment_transactions
		WHERE practitioner_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var t model.PaymentTransaction
	err := r.db.GetContext(ctx, &t, query, practitionerID, kind)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest payment transaction: %w", err)
	}
	return &t, nil
}

func (r *paymentRepository) HasActiveSubscription(ctx context.Context, practitionerID uuid.UUID, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payment_transactions
			WHERE practitioner_id = $1
			AND kind = $2
			AND status = $3
			AND expires_at > $4
		)
	`
	var active bool
	err := r.db.GetContext(ctx, &active, query,
		practitionerID, model.TransactionKindSubscription, model.TransactionStatusPaid, now)
	if err != nil {
		return false, fmt.Errorf("failed to check active subscription: %w", err)
	}
	return active, nil
}
