package model

import (
	"time"

	"github.com/google/uuid"
)

type EncounterStatus string

const (
	EncounterStatusInProgress EncounterStatus = "IN_PROGRESS"
	EncounterStatusCompleted  EncounterStatus = "COMPLETED"
)

// AdmissionEncounter is the clinical-encounter record materialized when a
// HOSPITAL_ADMISSION consent is approved. Discharge flips it to COMPLETED
// through a separate workflow.
type AdmissionEncounter struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	PatientID  uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	HospitalID uuid.UUID       `db:"hospital_id" json:"hospital_id"`
	StartedAt  time.Time       `db:"started_at" json:"started_at"`
	Department string          `db:"department" json:"department"`
	Reason     string          `db:"reason" json:"reason"`
	Status     EncounterStatus `db:"status" json:"status"`
}

type AdmitPatientRequest struct {
	AadharNumber string `json:"aadhar_number" binding:"required"`
	Reason       string `json:"reason"`
}

type AdmitPatientResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ConsentID uuid.UUID `json:"consent_id"`
}
