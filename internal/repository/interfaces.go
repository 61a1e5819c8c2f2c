package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/model"
)

// Tx is an opaque transaction handle produced by a TxRunner. The postgres
// implementations expect a *sqlx.Tx; in-memory test doubles use their own
// token. Methods accepting a Tx run on the pool when it is nil.
type Tx interface{}

// TxRunner runs a function inside a single database transaction. The
// transaction is rolled back when fn returns an error or panics.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// All repository interfaces in one file
type (
	PractitionerRepository interface {
		Create(ctx context.Context, p *model.Practitioner) error
		Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error)
		GetByEmail(ctx context.Context, email string) (*model.Practitioner, error)
		Update(ctx context.Context, p *model.Practitioner) error
		ListApproved(ctx context.Context) ([]*model.Practitioner, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, tx Tx, p *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		// FindByRUT returns (nil, nil) when no patient carries the RUT.
		FindByRUT(ctx context.Context, tx Tx, rut string) (*model.Patient, error)
	}

	SlotRepository interface {
		Create(ctx context.Context, tx Tx, slot *model.Slot) error
		Get(ctx context.Context, id uuid.UUID) (*model.Slot, error)
		// GetForUpdate locks the slot row for the remainder of tx.
		GetForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*model.Slot, error)
		GetByAppointment(ctx context.Context, tx Tx, appointmentID uuid.UUID) (*model.Slot, error)
		Update(ctx context.Context, tx Tx, slot *model.Slot) error
		Delete(ctx context.Context, tx Tx, id uuid.UUID) error
		ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.Slot, error)
		ListAvailable(ctx context.Context, practitionerID uuid.UUID, from time.Time) ([]*model.Slot, error)
		// HasOverlap reports whether any blocking slot of the practitioner
		// intersects [start, end).
		HasOverlap(ctx context.Context, tx Tx, practitionerID uuid.UUID, start, end time.Time) (bool, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, tx Tx, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetForUpdate(ctx context.Context, tx Tx, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, tx Tx, appointment *model.Appointment) error
		SetPaymentStatus(ctx context.Context, tx Tx, id uuid.UUID, status model.AppointmentPaymentStatus) error
		ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListByPatientRUT(ctx context.Context, rut string) ([]*model.Appointment, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, tx Tx, t *model.PaymentTransaction) error
		GetByBuyOrder(ctx context.Context, buyOrder string) (*model.PaymentTransaction, error)
		// GetByBuyOrderForUpdate locks the transaction row for the
		// remainder of tx.
		GetByBuyOrderForUpdate(ctx context.Context, tx Tx, buyOrder string) (*model.PaymentTransaction, error)
		Update(ctx context.Context, tx Tx, t *model.PaymentTransaction) error
		LatestByPractitioner(ctx context.Context, practitionerID uuid.UUID, kind model.TransactionKind) (*model.PaymentTransaction, error)
		// HasActiveSubscription reports whether a paid subscription
		// transaction with expiration after now exists.
		HasActiveSubscription(ctx context.Context, practitionerID uuid.UUID, now time.Time) (bool, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		ExistsForAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
		ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*model.Review, error)
	}
)
