package model

import (
	"time"

	"github.com/google/uuid"
)

type RelationshipStatus string

const (
	RelationshipStatusLocked RelationshipStatus = "LOCKED"
	RelationshipStatusActive RelationshipStatus = "ACTIVE"
)

// Relationship condition notes written by consent transitions.
const (
	ConditionAwaitingConsent = "Awaiting consent approval"
	ConditionAccessGranted   = "Access granted"
	ConditionAccessRevoked   = "Access revoked"
	ConditionRemovedByDoctor = "Access removed by doctor"
)

// DoctorPatient is the access-gate row for one doctor-patient pair. It is
// created LOCKED the moment the doctor first requests access, before any
// consent is granted.
type DoctorPatient struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	DoctorID        uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID          `db:"patient_id" json:"patient_id"`
	Status          RelationshipStatus `db:"status" json:"status"`
	Condition       string             `db:"condition" json:"condition"`
	NextAppointment *time.Time         `db:"next_appointment" json:"next_appointment,omitempty"`
	LastVisit       *time.Time         `db:"last_visit" json:"last_visit,omitempty"`
	EmergencyFlag   bool               `db:"emergency_flag" json:"emergency_flag"`
	AssignedAt      time.Time          `db:"assigned_at" json:"assigned_at"`
}

// DoctorPatientView is the role-conditional projection returned to doctors.
// Clinical fields are populated only while access is granted.
type DoctorPatientView struct {
	ID              uuid.UUID          `json:"id"`
	PatientID       uuid.UUID          `json:"patient_id"`
	PatientName     string             `json:"patient_name"`
	Status          RelationshipStatus `json:"status"`
	Condition       string             `json:"condition"`
	NextAppointment *time.Time         `json:"next_appointment,omitempty"`
	LastVisit       *time.Time         `json:"last_visit,omitempty"`
	EmergencyFlag   bool               `json:"emergency_flag"`
	AssignedAt      time.Time          `json:"assigned_at"`
	AccessGranted   bool               `json:"access_granted"`

	PatientAge        *int   `json:"patient_age,omitempty"`
	PatientGender     string `json:"patient_gender,omitempty"`
	PatientBloodGroup string `json:"patient_blood_group,omitempty"`
	PatientPhone      string `json:"patient_phone,omitempty"`
}
