package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Consent domain event types written to the outbox.
const (
	EventConsentRequested = "CONSENT_REQUESTED"
	EventConsentApproved  = "CONSENT_APPROVED"
	EventConsentDenied    = "CONSENT_DENIED"
	EventConsentRevoked   = "CONSENT_REVOKED"
	EventPatientAdmitted  = "PATIENT_ADMITTED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// ConsentEvent is the payload published for consent transitions. FacilityName
// identifies the requester the transition was nominally for.
type ConsentEvent struct {
	ConsentID    uuid.UUID          `json:"consent_id"`
	PatientID    uuid.UUID          `json:"patient_id"`
	FacilityName string             `json:"facility_name"`
	RequestType  ConsentRequestType `json:"request_type"`
	Status       ConsentStatus      `json:"status"`
	OccurredAt   time.Time          `json:"occurred_at"`
}
