package model

import (
	"time"

	"github.com/google/uuid"
)

type ConsentStatus string

const (
	ConsentStatusPending  ConsentStatus = "PENDING"
	ConsentStatusApproved ConsentStatus = "APPROVED"
	ConsentStatusDenied   ConsentStatus = "DENIED"
	ConsentStatusRevoked  ConsentStatus = "REVOKED"
)

// Valid reports whether s is a known consent status.
func (s ConsentStatus) Valid() bool {
	switch s {
	case ConsentStatusPending, ConsentStatusApproved, ConsentStatusDenied, ConsentStatusRevoked:
		return true
	}
	return false
}

type ConsentRequestType string

const (
	ConsentTypeDataAccess        ConsentRequestType = "DATA_ACCESS"
	ConsentTypeHospitalAdmission ConsentRequestType = "HOSPITAL_ADMISSION"
)

// Consent is a care-provider's request to access a patient's records or to
// admit them. FacilityName is the requester key: a doctor's display name or a
// hospital's name.
type Consent struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	PatientID    uuid.UUID          `db:"patient_id" json:"patient_id"`
	FacilityName string             `db:"facility_name" json:"facility_name"`
	RequestType  ConsentRequestType `db:"request_type" json:"request_type"`
	Description  string             `db:"description" json:"description,omitempty"`
	Status       ConsentStatus      `db:"status" json:"status"`
	RequestedAt  time.Time          `db:"requested_at" json:"requested_at"`
	RespondedAt  *time.Time         `db:"responded_at" json:"responded_at,omitempty"`
	ExpiresAt    time.Time          `db:"expires_at" json:"expires_at"`
}

// CanTransitionTo enforces the consent state machine. PENDING may be approved
// or denied; APPROVED may only be revoked; DENIED and REVOKED are terminal.
func (c *Consent) CanTransitionTo(next ConsentStatus) bool {
	switch c.Status {
	case ConsentStatusPending:
		return next == ConsentStatusApproved || next == ConsentStatusDenied
	case ConsentStatusApproved:
		return next == ConsentStatusRevoked
	}
	return false
}

type CreateConsentRequest struct {
	PatientID     uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID      uuid.UUID `json:"doctor_id" binding:"required"`
	FacilityName  string    `json:"facility_name"`
	RequestType   string    `json:"request_type" binding:"omitempty,oneof=DATA_ACCESS HOSPITAL_ADMISSION"`
	Description   string    `json:"description"`
	ExpiresInDays int       `json:"expires_in_days" binding:"omitempty,min=1,max=365"`
}

type UpdateConsentRequest struct {
	Status ConsentStatus `json:"status" binding:"required,oneof=APPROVED DENIED REVOKED"`
}
