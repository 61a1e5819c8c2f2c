// Package booking coordinates slot reservation: one transaction locks the
// slot, resolves or creates the patient by RUT, creates the appointment
// and flips the slot to reserved.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/metrics"
	"github.com/kineayuda/booking-api/pkg/rut"
)

type Service struct {
	slots        repository.SlotRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	txr          repository.TxRunner
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	slots repository.SlotRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	txr repository.TxRunner,
	m *metrics.Metrics,
) *Service {
	return &Service{
		slots:        slots,
		patients:     patients,
		appointments: appointments,
		txr:          txr,
		metrics:      m,
		now:          time.Now,
	}
}

// Reserve books an available slot for the patient identified by RUT,
// creating the patient when the RUT is unknown. The slot row is locked
// for the duration of the transaction, so concurrent requests for the
// same slot serialize and exactly one wins.
func (s *Service) Reserve(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	normalized, err := rut.Normalize(req.RUT)
	if err != nil {
		return nil, apperrors.BadRequest("invalid rut", err)
	}

	var appointment *model.Appointment
	err = s.txr.WithTx(ctx, func(tx repository.Tx) error {
		slot, err := s.slots.GetForUpdate(ctx, tx, req.SlotID)
		if err != nil {
			return err
		}
		if slot.Status != model.SlotStatusAvailable {
			return apperrors.Conflict("slot is no longer available", nil)
		}
		if slot.StartTime.Before(s.now()) {
			return apperrors.Conflict("slot is in the past", nil)
		}

		patient, err := s.patients.FindByRUT(ctx, tx, normalized)
		if err != nil {
			return err
		}
		if patient == nil {
			patient, err = s.registerPatient(ctx, tx, req, normalized)
			if err != nil {
				return err
			}
		}

		appointment = &model.Appointment{
			PatientID:      patient.ID,
			PractitionerID: slot.PractitionerID,
			ScheduledAt:    slot.StartTime,
			Status:         model.AppointmentStatusPending,
			PaymentStatus:  model.AppointmentPaymentPending,
		}
		if err := s.appointments.Create(ctx, tx, appointment); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		slot.Status = model.SlotStatusReserved
		slot.PatientID = &patient.ID
		slot.AppointmentID = &appointment.ID
		if err := s.slots.Update(ctx, tx, slot); err != nil {
			return fmt.Errorf("failed to reserve slot: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	s.metrics.BookingsReserved.Inc()
	return appointment, nil
}

func (s *Service) registerPatient(ctx context.Context, tx repository.Tx, req *model.BookingRequest, normalizedRUT string) (*model.Patient, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.TrimSpace(req.Email)
	if firstName == "" || lastName == "" || email == "" {
		return nil, apperrors.BadRequest("first_name, last_name and email are required for new patients", nil)
	}

	patient := &model.Patient{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		RUT:       normalizedRUT,
		BirthDate: req.BirthDate,
	}
	if err := s.patients.Create(ctx, tx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// Complete marks a pending appointment of the practitioner as completed.
func (s *Service) Complete(ctx context.Context, practitionerID, appointmentID uuid.UUID, notes string) (*model.Appointment, error) {
	var appointment *model.Appointment
	err := s.txr.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		appointment, err = s.appointments.GetForUpdate(ctx, tx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.PractitionerID != practitionerID {
			return apperrors.Forbidden("appointment belongs to another practitioner", nil)
		}
		if appointment.Status != model.AppointmentStatusPending {
			return apperrors.Conflict("only pending appointments can be completed", nil)
		}

		appointment.Status = model.AppointmentStatusCompleted
		if notes != "" {
			appointment.Notes = notes
		}
		return s.appointments.Update(ctx, tx, appointment)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// Cancel cancels a pending appointment and releases its slot back to
// available so it can be booked again.
func (s *Service) Cancel(ctx context.Context, practitionerID, appointmentID uuid.UUID) (*model.Appointment, error) {
	var appointment *model.Appointment
	err := s.txr.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		appointment, err = s.appointments.GetForUpdate(ctx, tx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.PractitionerID != practitionerID {
			return apperrors.Forbidden("appointment belongs to another practitioner", nil)
		}
		if appointment.Status != model.AppointmentStatusPending {
			return apperrors.Conflict("only pending appointments can be cancelled", nil)
		}

		appointment.Status = model.AppointmentStatusCancelled
		if err := s.appointments.Update(ctx, tx, appointment); err != nil {
			return err
		}

		slot, err := s.slots.GetByAppointment(ctx, tx, appointmentID)
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		slot.Status = model.SlotStatusAvailable
		slot.PatientID = nil
		slot.AppointmentID = nil
		return s.slots.Update(ctx, tx, slot)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// Get returns an appointment owned by the practitioner.
func (s *Service) Get(ctx context.Context, practitionerID, appointmentID uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.PractitionerID != practitionerID {
		return nil, apperrors.Forbidden("appointment belongs to another practitioner", nil)
	}
	return appointment, nil
}

// ListByPractitioner returns the practitioner's appointments, optionally
// filtered by status and date range.
func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByPractitioner(ctx, practitionerID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListByPatientRUT returns a patient's appointment history.
func (s *Service) ListByPatientRUT(ctx context.Context, rawRUT string) ([]*model.Appointment, error) {
	normalized, err := rut.Normalize(rawRUT)
	if err != nil {
		return nil, apperrors.BadRequest("invalid rut", err)
	}
	appointments, err := s.appointments.ListByPatientRUT(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
