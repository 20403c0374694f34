// Package repotest provides in-memory repository implementations for service
// tests. They mirror the contract of the postgres repositories, including the
// (nil, nil) convention for Find-style lookups.
package repotest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swasthlink/health-api/internal/model"
)

type PatientRepo struct {
	Patients map[uuid.UUID]*model.Patient
}

func NewPatientRepo() *PatientRepo {
	return &PatientRepo{Patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *PatientRepo) Create(_ context.Context, p *model.Patient) error {
	r.Patients[p.ID] = p
	return nil
}

func (r *PatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.Patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %s not found", id)
	}
	return p, nil
}

func (r *PatientRepo) FindByAadharUID(_ context.Context, uid string) (*model.Patient, error) {
	for _, p := range r.Patients {
		if p.AadharUID == uid {
			return p, nil
		}
	}
	return nil, nil
}

type DoctorRepo struct {
	Doctors map[uuid.UUID]*model.Doctor
}

func NewDoctorRepo() *DoctorRepo {
	return &DoctorRepo{Doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *DoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.Doctors[id]
	if !ok {
		return nil, fmt.Errorf("doctor %s not found", id)
	}
	return d, nil
}

func (r *DoctorRepo) FindFirstForHospital(_ context.Context, hospitalID uuid.UUID) (*model.Doctor, error) {
	for _, d := range r.Doctors {
		if d.HospitalID != nil && *d.HospitalID == hospitalID {
			return d, nil
		}
	}
	return nil, nil
}

type HospitalRepo struct {
	Hospitals map[uuid.UUID]*model.Hospital
}

func NewHospitalRepo() *HospitalRepo {
	return &HospitalRepo{Hospitals: make(map[uuid.UUID]*model.Hospital)}
}

func (r *HospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := r.Hospitals[id]
	if !ok {
		return nil, fmt.Errorf("hospital %s not found", id)
	}
	return h, nil
}

func (r *HospitalRepo) FindByName(_ context.Context, name string) (*model.Hospital, error) {
	for _, h := range r.Hospitals {
		if h.Name == name {
			return h, nil
		}
	}
	return nil, nil
}

type ConsentRepo struct {
	Consents []*model.Consent
}

func NewConsentRepo() *ConsentRepo {
	return &ConsentRepo{}
}

func (r *ConsentRepo) Create(_ context.Context, c *model.Consent) error {
	if c.RequestedAt.IsZero() {
		c.RequestedAt = time.Now()
	}
	r.Consents = append(r.Consents, c)
	return nil
}

func (r *ConsentRepo) Get(_ context.Context, id uuid.UUID) (*model.Consent, error) {
	for _, c := range r.Consents {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("consent %s not found", id)
}

func (r *ConsentRepo) FindPending(_ context.Context, patientID uuid.UUID, facilityName string, requestType model.ConsentRequestType) (*model.Consent, error) {
	for _, c := range r.Consents {
		if c.PatientID == patientID && c.FacilityName == facilityName &&
			c.RequestType == requestType && c.Status == model.ConsentStatusPending {
			return c, nil
		}
	}
	return nil, nil
}

func (r *ConsentRepo) FindApprovedForPatient(_ context.Context, patientID uuid.UUID) (*model.Consent, error) {
	for _, c := range r.Consents {
		if c.PatientID == patientID && c.Status == model.ConsentStatusApproved {
			return c, nil
		}
	}
	return nil, nil
}

func (r *ConsentRepo) ListForPatient(_ context.Context, patientID uuid.UUID, statusFilter model.ConsentStatus) ([]*model.Consent, error) {
	var out []*model.Consent
	for _, c := range r.Consents {
		if c.PatientID != patientID {
			continue
		}
		if statusFilter != "" && c.Status != statusFilter {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *ConsentRepo) UpdateStatus(_ context.Context, consent *model.Consent) error {
	for i, c := range r.Consents {
		if c.ID == consent.ID {
			r.Consents[i] = consent
			return nil
		}
	}
	return fmt.Errorf("consent %s not found", consent.ID)
}

func (r *ConsentRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, c := range r.Consents {
		if c.ID == id {
			r.Consents = append(r.Consents[:i], r.Consents[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("consent %s not found", id)
}

func (r *ConsentRepo) DeleteAll(_ context.Context) error {
	r.Consents = nil
	return nil
}

type RelationshipRepo struct {
	Rels []*model.DoctorPatient

	// FacilityNames maps a doctor ID to its display name so scoped updates can
	// be exercised without SQL joins.
	FacilityNames map[uuid.UUID]string
}

func NewRelationshipRepo() *RelationshipRepo {
	return &RelationshipRepo{FacilityNames: make(map[uuid.UUID]string)}
}

func (r *RelationshipRepo) Create(_ context.Context, rel *model.DoctorPatient) error {
	if rel.AssignedAt.IsZero() {
		rel.AssignedAt = time.Now()
	}
	r.Rels = append(r.Rels, rel)
	return nil
}

func (r *RelationshipRepo) Find(_ context.Context, doctorID, patientID uuid.UUID) (*model.DoctorPatient, error) {
	for _, rel := range r.Rels {
		if rel.DoctorID == doctorID && rel.PatientID == patientID {
			return rel, nil
		}
	}
	return nil, nil
}

func (r *RelationshipRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.DoctorPatient, error) {
	var out []*model.DoctorPatient
	for _, rel := range r.Rels {
		if rel.DoctorID == doctorID {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (r *RelationshipRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.RelationshipStatus, condition string) error {
	for _, rel := range r.Rels {
		if rel.ID == id {
			rel.Status = status
			rel.Condition = condition
			return nil
		}
	}
	return fmt.Errorf("relationship %s not found", id)
}

func (r *RelationshipRepo) UpdateStatusForPatient(_ context.Context, patientID uuid.UUID, facilityName string, from, to model.RelationshipStatus, condition string) (int64, error) {
	var n int64
	for _, rel := range r.Rels {
		if rel.PatientID != patientID || rel.Status != from {
			continue
		}
		if facilityName != "" && r.FacilityNames[rel.DoctorID] != facilityName {
			continue
		}
		rel.Status = to
		rel.Condition = condition
		n++
	}
	return n, nil
}

func (r *RelationshipRepo) ResetAll(_ context.Context) error {
	for _, rel := range r.Rels {
		rel.Status = model.RelationshipStatusLocked
		rel.Condition = model.ConditionAwaitingConsent
	}
	return nil
}

type EncounterRepo struct {
	Encounters []*model.AdmissionEncounter
}

func NewEncounterRepo() *EncounterRepo {
	return &EncounterRepo{}
}

func (r *EncounterRepo) Create(_ context.Context, enc *model.AdmissionEncounter) error {
	if enc.StartedAt.IsZero() {
		enc.StartedAt = time.Now()
	}
	r.Encounters = append(r.Encounters, enc)
	return nil
}

func (r *EncounterRepo) FindInProgress(_ context.Context, patientID, hospitalID uuid.UUID) (*model.AdmissionEncounter, error) {
	for _, enc := range r.Encounters {
		if enc.PatientID == patientID && enc.HospitalID == hospitalID &&
			enc.Status == model.EncounterStatusInProgress {
			return enc, nil
		}
	}
	return nil, nil
}

func (r *EncounterRepo) Complete(_ context.Context, id uuid.UUID) error {
	for _, enc := range r.Encounters {
		if enc.ID == id {
			enc.Status = model.EncounterStatusCompleted
			return nil
		}
	}
	return fmt.Errorf("encounter %s not found", id)
}

type OutboxRepo struct {
	Events []*model.OutboxEvent
}

func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{}
}

func (r *OutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}
	event.CreatedAt = time.Now()
	r.Events = append(r.Events, event)
	return nil
}

func (r *OutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	var out []*model.OutboxEvent
	for _, e := range r.Events {
		if e.Status == model.OutboxStatusPending {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	for _, e := range r.Events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errMsg
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

// TxRunner runs fn directly; the in-memory repositories have no transactions.
type TxRunner struct{}

func (TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// EventTypes extracts the event types written to the outbox, in order.
func (r *OutboxRepo) EventTypes() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.EventType)
	}
	return out
}
