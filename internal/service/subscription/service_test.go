package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
)

type fakePaymentRepo struct {
	transactions []*model.PaymentTransaction
}

func (r *fakePaymentRepo) Create(context.Context, repository.Tx, *model.PaymentTransaction) error {
	return nil
}

func (r *fakePaymentRepo) GetByBuyOrder(context.Context, string) (*model.PaymentTransaction, error) {
	return nil, nil
}

func (r *fakePaymentRepo) GetByBuyOrderForUpdate(context.Context, repository.Tx, string) (*model.PaymentTransaction, error) {
	return nil, nil
}

func (r *fakePaymentRepo) Update(context.Context, repository.Tx, *model.PaymentTransaction) error {
	return nil
}

func (r *fakePaymentRepo) LatestByPractitioner(_ context.Context, practitionerID uuid.UUID, kind model.TransactionKind) (*model.PaymentTransaction, error) {
	var latest *model.PaymentTransaction
	for _, t := range r.transactions {
		if t.PractitionerID != practitionerID || t.Kind != kind {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	return latest, nil
}

func (r *fakePaymentRepo) HasActiveSubscription(_ context.Context, practitionerID uuid.UUID, now time.Time) (bool, error) {
	for _, t := range r.transactions {
		if t.PractitionerID == practitionerID &&
			t.Kind == model.TransactionKindSubscription &&
			t.Status == model.TransactionStatusPaid &&
			t.ExpiresAt != nil && t.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func TestActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	practitionerID := uuid.New()

	newService := func(repo *fakePaymentRepo) *Service {
		svc := NewService(repo, nil)
		svc.now = func() time.Time { return now }
		return svc
	}

	t.Run("no transactions", func(t *testing.T) {
		svc := newService(&fakePaymentRepo{})
		active, err := svc.Active(context.Background(), practitionerID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("paid unexpired subscription", func(t *testing.T) {
		expires := now.Add(10 * 24 * time.Hour)
		svc := newService(&fakePaymentRepo{transactions: []*model.PaymentTransaction{{
			Kind:           model.TransactionKindSubscription,
			PractitionerID: practitionerID,
			Status:         model.TransactionStatusPaid,
			ExpiresAt:      &expires,
		}}})

		active, err := svc.Active(context.Background(), practitionerID)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("expired subscription", func(t *testing.T) {
		expires := now.Add(-time.Hour)
		svc := newService(&fakePaymentRepo{transactions: []*model.PaymentTransaction{{
			Kind:           model.TransactionKindSubscription,
			PractitionerID: practitionerID,
			Status:         model.TransactionStatusPaid,
			ExpiresAt:      &expires,
		}}})

		active, err := svc.Active(context.Background(), practitionerID)
		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	practitionerID := uuid.New()
	expires := now.Add(20 * 24 * time.Hour)

	repo := &fakePaymentRepo{transactions: []*model.PaymentTransaction{
		{
			Kind:           model.TransactionKindSubscription,
			PractitionerID: practitionerID,
			Status:         model.TransactionStatusFailed,
			BuyOrder:       "older",
			CreatedAt:      now.Add(-48 * time.Hour),
		},
		{
			Kind:           model.TransactionKindSubscription,
			PractitionerID: practitionerID,
			Status:         model.TransactionStatusPaid,
			BuyOrder:       "newer",
			ExpiresAt:      &expires,
			CreatedAt:      now.Add(-time.Hour),
		},
	}}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return now }

	status, err := svc.Status(context.Background(), practitionerID)
	require.NoError(t, err)
	assert.True(t, status.Active)
	require.NotNil(t, status.LastTransaction)
	assert.Equal(t, "newer", status.LastTransaction.BuyOrder)
	require.NotNil(t, status.ExpiresAt)
	assert.Equal(t, expires, *status.ExpiresAt)

	other, err := svc.Status(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, other.Active)
	assert.Nil(t, other.LastTransaction)
}
