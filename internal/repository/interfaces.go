package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/swasthlink/health-api/internal/model"
)

// Find-style lookups return (nil, nil) when no row matches; Get-style lookups
// return an error.

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	FindByAadharUID(ctx context.Context, uid string) (*model.Patient, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	FindFirstForHospital(ctx context.Context, hospitalID uuid.UUID) (*model.Doctor, error)
}

type HospitalRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
	FindByName(ctx context.Context, name string) (*model.Hospital, error)
}

type ConsentRepository interface {
	Create(ctx context.Context, consent *model.Consent) error
	Get(ctx context.Context, id uuid.UUID) (*model.Consent, error)
	FindPending(ctx context.Context, patientID uuid.UUID, facilityName string, requestType model.ConsentRequestType) (*model.Consent, error)
	FindApprovedForPatient(ctx context.Context, patientID uuid.UUID) (*model.Consent, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID, statusFilter model.ConsentStatus) ([]*model.Consent, error)
	UpdateStatus(ctx context.Context, consent *model.Consent) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type RelationshipRepository interface {
	Create(ctx context.Context, rel *model.DoctorPatient) error
	Find(ctx context.Context, doctorID, patientID uuid.UUID) (*model.DoctorPatient, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorPatient, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RelationshipStatus, condition string) error
	// UpdateStatusForPatient moves every relationship of the patient currently
	// in from to to. A non-empty facilityName scopes the update to doctors
	// whose display name matches it.
	UpdateStatusForPatient(ctx context.Context, patientID uuid.UUID, facilityName string, from, to model.RelationshipStatus, condition string) (int64, error)
	ResetAll(ctx context.Context) error
}

type EncounterRepository interface {
	Create(ctx context.Context, enc *model.AdmissionEncounter) error
	FindInProgress(ctx context.Context, patientID, hospitalID uuid.UUID) (*model.AdmissionEncounter, error)
	Complete(ctx context.Context, id uuid.UUID) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
}

// TxRunner runs fn inside a single database transaction. Repository calls made
// with the ctx passed to fn join that transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
