// Package patient manages patient records, keyed by Chilean RUT.
package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
	apperrors "github.com/kineayuda/booking-api/pkg/errors"
	"github.com/kineayuda/booking-api/pkg/rut"
)

type Service struct {
	patients repository.PatientRepository
}

func NewService(patients repository.PatientRepository) *Service {
	return &Service{patients: patients}
}

// Create registers a patient with a normalized, check-digit-validated RUT.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	normalized, err := rut.Normalize(req.RUT)
	if err != nil {
		return nil, apperrors.BadRequest("invalid rut", err)
	}

	patient := &model.Patient{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		RUT:       normalized,
		BirthDate: req.BirthDate,
	}
	if err := s.patients.Create(ctx, nil, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.patients.Get(ctx, id)
}

// FindByRUT looks a patient up by RUT, validating the check digit first.
func (s *Service) FindByRUT(ctx context.Context, rawRUT string) (*model.Patient, error) {
	normalized, err := rut.Normalize(rawRUT)
	if err != nil {
		return nil, apperrors.BadRequest("invalid rut", err)
	}
	patient, err := s.patients.FindByRUT(ctx, nil, normalized)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}
