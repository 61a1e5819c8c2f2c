package model

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

type Practitioner struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	FirstName          string             `db:"first_name" json:"first_name"`
	LastName           string             `db:"last_name" json:"last_name"`
	Email              string             `db:"email" json:"email"`
	RUT                string             `db:"rut" json:"rut"`
	LicenseNumber      string             `db:"license_number" json:"license_number"`
	Specialty          string             `db:"specialty" json:"specialty"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`
	PasswordHash       string             `db:"password_hash" json:"-"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

type UpdatePractitionerRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	LicenseNumber *string `json:"license_number"`
	Specialty     *string `json:"specialty"`
}
