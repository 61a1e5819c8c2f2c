package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type AppointmentPaymentStatus string

const (
	AppointmentPaymentPending AppointmentPaymentStatus = "pending"
	AppointmentPaymentPaid    AppointmentPaymentStatus = "paid"
	AppointmentPaymentFailed  AppointmentPaymentStatus = "failed"
)

type Appointment struct {
	ID             uuid.UUID                `db:"id" json:"id"`
	PatientID      uuid.UUID                `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID                `db:"practitioner_id" json:"practitioner_id"`
	ScheduledAt    time.Time                `db:"scheduled_at" json:"scheduled_at"`
	Status         AppointmentStatus        `db:"status" json:"status"`
	PaymentStatus  AppointmentPaymentStatus `db:"payment_status" json:"payment_status"`
	Notes          string                   `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time                `db:"updated_at" json:"updated_at"`
}

// BookingRequest carries the slot to reserve plus the identity fields used
// to find or create the patient.
type BookingRequest struct {
	SlotID    uuid.UUID  `json:"slot_id" binding:"required"`
	RUT       string     `json:"rut" binding:"required,rut"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
}

type AppointmentFilters struct {
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
