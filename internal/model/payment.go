package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	TransactionKindSubscription TransactionKind = "subscription"
	TransactionKindAppointment  TransactionKind = "appointment"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusFailed  TransactionStatus = "failed"
	TransactionStatusExpired TransactionStatus = "expired"
)

// Terminal reports whether a transaction status is absorbing.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusPaid || s == TransactionStatusFailed || s == TransactionStatusExpired
}

// PaymentTransaction tracks one gateway payment, keyed by a globally unique
// buy order. Amounts are integer CLP.
type PaymentTransaction struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	Kind           TransactionKind   `db:"kind" json:"kind"`
	PractitionerID uuid.UUID         `db:"practitioner_id" json:"practitioner_id"`
	PatientID      *uuid.UUID        `db:"patient_id" json:"patient_id,omitempty"`
	AppointmentID  *uuid.UUID        `db:"appointment_id" json:"appointment_id,omitempty"`
	Amount         int64             `db:"amount" json:"amount"`
	Status         TransactionStatus `db:"status" json:"status"`
	BuyOrder       string            `db:"buy_order" json:"buy_order"`
	GatewayToken   *string           `db:"gateway_token" json:"gateway_token,omitempty"`
	RawPayload     []byte            `db:"raw_payload" json:"-"`
	ExpiresAt      *time.Time        `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// PaymentIntent is returned by initiate so the client can redirect the
// payer to the gateway.
type PaymentIntent struct {
	BuyOrder    string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type InitiateSubscriptionPaymentRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type InitiateAppointmentPaymentRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
	Amount        int64     `json:"amount" binding:"required"`
}

// WebhookPayload is the asynchronous notification shape accepted from the
// payment provider.
type WebhookPayload struct {
	BuyOrder      string `json:"orden_comercio" binding:"required"`
	Status        string `json:"estado"`
	TransactionID string `json:"transa_id_externo"`
}

// SubscriptionStatus is derived from payment history, never stored.
type SubscriptionStatus struct {
	Active          bool                `json:"active"`
	ExpiresAt       *time.Time          `json:"expiration,omitempty"`
	LastTransaction *PaymentTransaction `json:"last_transaction,omitempty"`
}
