package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable   SlotStatus = "available"
	SlotStatusReserved    SlotStatus = "reserved"
	SlotStatusUnavailable SlotStatus = "unavailable"
	SlotStatusExpired     SlotStatus = "expired"
)

// BlockingSlotStatuses are the states that occupy a practitioner's calendar:
// no two slots in any of these states may overlap.
var BlockingSlotStatuses = []SlotStatus{
	SlotStatusAvailable,
	SlotStatusReserved,
	SlotStatusUnavailable,
}

type Slot struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        time.Time  `db:"end_time" json:"end_time"`
	Status         SlotStatus `db:"status" json:"status"`
	PatientID      *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// PublicSlot is the subset of a slot exposed on unauthenticated listings.
type PublicSlot struct {
	ID        uuid.UUID `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
