// Package practitioner manages practitioner profiles.
package practitioner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/repository"
)

type Service struct {
	practitioners repository.PractitionerRepository
}

func NewService(practitioners repository.PractitionerRepository) *Service {
	return &Service{practitioners: practitioners}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	return s.practitioners.Get(ctx, id)
}

// Update applies the non-nil fields of req to the practitioner's profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePractitionerRequest) (*model.Practitioner, error) {
	p, err := s.practitioners.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		p.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		p.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.LicenseNumber != nil {
		p.LicenseNumber = strings.TrimSpace(*req.LicenseNumber)
	}
	if req.Specialty != nil {
		p.Specialty = strings.TrimSpace(*req.Specialty)
	}

	if err := s.practitioners.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update practitioner: %w", err)
	}
	return p, nil
}

// ListApproved returns the practitioners visible on public listings.
func (s *Service) ListApproved(ctx context.Context) ([]*model.Practitioner, error) {
	practitioners, err := s.practitioners.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list practitioners: %w", err)
	}
	return practitioners, nil
}
