package slot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/metrics"
)

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*model.Slot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID]*model.Slot)}
}

func (r *fakeSlotRepo) Create(_ context.Context, _ repository.Tx, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot.ID = uuid.New()
	copied := *slot
	r.slots[slot.ID] = &copied
	return nil
}

func (r *fakeSlotRepo) Get(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, apperrors.NotFound("slot", nil)
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) GetForUpdate(ctx context.Context, _ repository.Tx, id uuid.UUID) (*model.Slot, error) {
	return r.Get(ctx, id)
}

func (r *fakeSlotRepo) GetByAppointment(_ context.Context, _ repository.Tx, appointmentID uuid.UUID) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slot := range r.slots {
		if slot.AppointmentID != nil && *slot.AppointmentID == appointmentID {
			copied := *slot
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("slot", nil)
}

func (r *fakeSlotRepo) Update(_ context.Context, _ repository.Tx, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *slot
	r.slots[slot.ID] = &copied
	return nil
}

func (r *fakeSlotRepo) Delete(_ context.Context, _ repository.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
	return nil
}

func (r *fakeSlotRepo) ListByPractitioner(_ context.Context, practitionerID uuid.UUID) ([]*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Slot
	for _, slot := range r.slots {
		if slot.PractitionerID == practitionerID {
			copied := *slot
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) ListAvailable(_ context.Context, practitionerID uuid.UUID, from time.Time) ([]*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Slot
	for _, slot := range r.slots {
		if slot.PractitionerID == practitionerID && slot.Status == model.SlotStatusAvailable && !slot.StartTime.Before(from) {
			copied := *slot
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) HasOverlap(_ context.Context, _ repository.Tx, practitionerID uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slot := range r.slots {
		if slot.PractitionerID != practitionerID {
			continue
		}
		blocking := false
		for _, status := range model.BlockingSlotStatuses {
			if slot.Status == status {
				blocking = true
			}
		}
		if blocking && slot.StartTime.Before(end) && slot.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

// fakeTxRunner runs beforeTx, if set, right after the transaction would
// acquire its locks, emulating a competing writer that committed first.
type fakeTxRunner struct {
	beforeTx func()
}

func (r fakeTxRunner) WithTx(_ context.Context, fn func(tx repository.Tx) error) error {
	if r.beforeTx != nil {
		r.beforeTx()
	}
	return fn(nil)
}

type fakeGate struct {
	active bool
	err    error
}

func (g fakeGate) Active(context.Context, uuid.UUID) (bool, error) {
	return g.active, g.err
}

func newTestService(repo *fakeSlotRepo, gate fakeGate) *Service {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewService(repo, fakeTxRunner{}, gate, m)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPublish(t *testing.T) {
	practitionerID := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("requires active subscription", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), fakeGate{active: false})
		_, err := svc.Publish(context.Background(), practitionerID, start, end)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), fakeGate{active: true})
		_, err := svc.Publish(context.Background(), practitionerID, end, start)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("rejects empty interval", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), fakeGate{active: true})
		_, err := svc.Publish(context.Background(), practitionerID, start, start)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("rejects past start", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), fakeGate{active: true})
		past := time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC)
		_, err := svc.Publish(context.Background(), practitionerID, past, past.Add(time.Hour))
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("rejects overlap", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})

		_, err := svc.Publish(context.Background(), practitionerID, start, end)
		require.NoError(t, err)

		_, err = svc.Publish(context.Background(), practitionerID, start.Add(30*time.Minute), end.Add(30*time.Minute))
		assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	})

	t.Run("allows touching intervals", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})

		_, err := svc.Publish(context.Background(), practitionerID, start, end)
		require.NoError(t, err)

		_, err = svc.Publish(context.Background(), practitionerID, end, end.Add(time.Hour))
		assert.NoError(t, err)
	})

	t.Run("allows overlap across practitioners", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})

		_, err := svc.Publish(context.Background(), practitionerID, start, end)
		require.NoError(t, err)

		_, err = svc.Publish(context.Background(), uuid.New(), start, end)
		assert.NoError(t, err)
	})

	t.Run("publishes available slot", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})

		created, err := svc.Publish(context.Background(), practitionerID, start, end)
		require.NoError(t, err)
		assert.Equal(t, model.SlotStatusAvailable, created.Status)

		stored, err := repo.Get(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, practitionerID, stored.PractitionerID)
	})
}

func TestCancel(t *testing.T) {
	practitionerID := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, repo *fakeSlotRepo, status model.SlotStatus) *model.Slot {
		t.Helper()
		slot := &model.Slot{
			PractitionerID: practitionerID,
			StartTime:      start,
			EndTime:        start.Add(time.Hour),
			Status:         status,
		}
		require.NoError(t, repo.Create(context.Background(), nil, slot))
		return slot
	}

	t.Run("unknown slot", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), fakeGate{active: true})
		err := svc.Cancel(context.Background(), practitionerID, uuid.New())
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	})

	t.Run("foreign slot", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})
		slot := seed(t, repo, model.SlotStatusAvailable)

		err := svc.Cancel(context.Background(), uuid.New(), slot.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
	})

	t.Run("reserved slot", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})
		slot := seed(t, repo, model.SlotStatusReserved)

		err := svc.Cancel(context.Background(), practitionerID, slot.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	})

	t.Run("reservation committing first wins over cancel", func(t *testing.T) {
		repo := newFakeSlotRepo()
		slot := seed(t, repo, model.SlotStatusAvailable)

		// The competing reservation lands before Cancel's transaction
		// gets the row lock; Cancel must see reserved, not delete.
		txr := fakeTxRunner{beforeTx: func() {
			stored, err := repo.Get(context.Background(), slot.ID)
			require.NoError(t, err)
			patientID, appointmentID := uuid.New(), uuid.New()
			stored.Status = model.SlotStatusReserved
			stored.PatientID = &patientID
			stored.AppointmentID = &appointmentID
			require.NoError(t, repo.Update(context.Background(), nil, stored))
		}}
		m := metrics.NewMetrics("test", prometheus.NewRegistry())
		svc := NewService(repo, txr, fakeGate{active: true}, m)
		svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

		err := svc.Cancel(context.Background(), practitionerID, slot.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

		stored, err := repo.Get(context.Background(), slot.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SlotStatusReserved, stored.Status)
	})

	t.Run("available slot is deleted", func(t *testing.T) {
		repo := newFakeSlotRepo()
		svc := newTestService(repo, fakeGate{active: true})
		slot := seed(t, repo, model.SlotStatusAvailable)

		require.NoError(t, svc.Cancel(context.Background(), practitionerID, slot.ID))
		_, err := repo.Get(context.Background(), slot.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
	})
}

func TestListAvailableDefaultsFromToNow(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, fakeGate{active: true})
	practitionerID := uuid.New()

	past := &model.Slot{
		PractitionerID: practitionerID,
		StartTime:      time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC),
		Status:         model.SlotStatusAvailable,
	}
	future := &model.Slot{
		PractitionerID: practitionerID,
		StartTime:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		Status:         model.SlotStatusAvailable,
	}
	require.NoError(t, repo.Create(context.Background(), nil, past))
	require.NoError(t, repo.Create(context.Background(), nil, future))

	slots, err := svc.ListAvailable(context.Background(), practitionerID, time.Time{})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, future.ID, slots[0].ID)
}
