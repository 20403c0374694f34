package consent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swasthlink/health-api/internal/config"
	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository/repotest"
	"github.com/swasthlink/health-api/internal/service/access"
	"github.com/swasthlink/health-api/internal/service/consent"
	"github.com/swasthlink/health-api/internal/service/event"
	apperrors "github.com/swasthlink/health-api/pkg/errors"
)

type fixture struct {
	svc        *consent.Service
	patients   *repotest.PatientRepo
	doctors    *repotest.DoctorRepo
	hospitals  *repotest.HospitalRepo
	consents   *repotest.ConsentRepo
	encounters *repotest.EncounterRepo
	rels       *repotest.RelationshipRepo
	outbox     *repotest.OutboxRepo

	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		patients:   repotest.NewPatientRepo(),
		doctors:    repotest.NewDoctorRepo(),
		hospitals:  repotest.NewHospitalRepo(),
		consents:   repotest.NewConsentRepo(),
		encounters: repotest.NewEncounterRepo(),
		rels:       repotest.NewRelationshipRepo(),
		outbox:     repotest.NewOutboxRepo(),
	}

	f.patientID = uuid.New()
	f.patients.Patients[f.patientID] = &model.Patient{
		Base:      model.Base{ID: f.patientID},
		FirstName: "Asha",
		LastName:  "Gupta",
	}

	f.doctorID = uuid.New()
	f.doctors.Doctors[f.doctorID] = &model.Doctor{
		Base:      model.Base{ID: f.doctorID},
		FirstName: "Priya",
		LastName:  "Sharma",
	}
	f.rels.FacilityNames[f.doctorID] = "Dr. Priya Sharma"

	f.svc = consent.NewService(
		f.consents,
		f.patients,
		f.doctors,
		f.hospitals,
		f.encounters,
		f.rels,
		access.NewGateSync(f.rels, false),
		event.NewService(f.outbox),
		repotest.TxRunner{},
		config.ConsentConfig{DefaultValidityDays: 90, AdmissionValidityDays: 1},
		nil,
	)
	return f
}

func (f *fixture) request(t *testing.T) *model.Consent {
	t.Helper()
	created, err := f.svc.RequestAccess(context.Background(), &model.CreateConsentRequest{
		PatientID: f.patientID,
		DoctorID:  f.doctorID,
	})
	require.NoError(t, err)
	return created
}

func TestRequestAccessCreatesPendingConsent(t *testing.T) {
	f := newFixture(t)

	created := f.request(t)

	assert.Equal(t, model.ConsentStatusPending, created.Status)
	assert.Equal(t, "Dr. Priya Sharma", created.FacilityName)
	assert.Equal(t, model.ConsentTypeDataAccess, created.RequestType)
	assert.Equal(t, "Request to access your medical records", created.Description)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 90), created.ExpiresAt, time.Minute)

	// The doctor-patient relationship is created LOCKED immediately.
	rel, err := f.rels.Find(context.Background(), f.doctorID, f.patientID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, model.RelationshipStatusLocked, rel.Status)
	assert.Equal(t, model.ConditionAwaitingConsent, rel.Condition)

	assert.Equal(t, []string{model.EventConsentRequested}, f.outbox.EventTypes())
}

func TestRequestAccessReplacesPlaceholderFacility(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.RequestAccess(context.Background(), &model.CreateConsentRequest{
		PatientID:    f.patientID,
		DoctorID:     f.doctorID,
		FacilityName: "Healthcare Professional",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Priya Sharma", created.FacilityName)
}

func TestRequestAccessDeduplicatesPending(t *testing.T) {
	f := newFixture(t)

	first := f.request(t)
	second := f.request(t)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.consents.Consents, 1)
	// No second event for the repeated scan.
	assert.Len(t, f.outbox.Events, 1)
}

func TestRequestAccessUnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestAccess(context.Background(), &model.CreateConsentRequest{
		PatientID: uuid.New(),
		DoctorID:  f.doctorID,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRequestAccessUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestAccess(context.Background(), &model.CreateConsentRequest{
		PatientID: f.patientID,
		DoctorID:  uuid.New(),
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestApproveUnlocksRelationships(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	updated, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	assert.Equal(t, model.ConsentStatusApproved, updated.Status)
	require.NotNil(t, updated.RespondedAt)

	rel, err := f.rels.Find(context.Background(), f.doctorID, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusActive, rel.Status)
	assert.Equal(t, model.ConditionAccessGranted, rel.Condition)

	assert.Equal(t, []string{model.EventConsentRequested, model.EventConsentApproved}, f.outbox.EventTypes())
}

func TestApproveUnlocksAllLockedRelationshipsInBroadMode(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	otherDoctor := uuid.New()
	require.NoError(t, f.rels.Create(context.Background(), &model.DoctorPatient{
		ID:        uuid.New(),
		DoctorID:  otherDoctor,
		PatientID: f.patientID,
		Status:    model.RelationshipStatusLocked,
		Condition: model.ConditionAwaitingConsent,
	}))

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	rel, err := f.rels.Find(context.Background(), otherDoctor, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusActive, rel.Status)
}

func TestDenyLeavesRelationshipLocked(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	updated, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusDenied)
	require.NoError(t, err)
	assert.Equal(t, model.ConsentStatusDenied, updated.Status)

	rel, err := f.rels.Find(context.Background(), f.doctorID, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusLocked, rel.Status)
	assert.Equal(t, model.ConditionAwaitingConsent, rel.Condition)

	assert.Equal(t, []string{model.EventConsentRequested, model.EventConsentDenied}, f.outbox.EventTypes())
}

func TestRevokeRelocksRelationships(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)
	_, err = f.svc.Respond(context.Background(), created.ID, model.ConsentStatusRevoked)
	require.NoError(t, err)

	rel, err := f.rels.Find(context.Background(), f.doctorID, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusLocked, rel.Status)
	assert.Equal(t, model.ConditionAccessRevoked, rel.Condition)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusDenied)
	require.NoError(t, err)

	// DENIED is terminal.
	_, err = f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrInvalidStateTransition, appErr.Code)

	_, err = f.svc.Respond(context.Background(), created.ID, model.ConsentStatusRevoked)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrInvalidStateTransition, appErr.Code)
}

func TestRespondRejectsPendingTarget(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusPending)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestApproveAdmissionMaterializesEncounter(t *testing.T) {
	f := newFixture(t)

	hospitalID := uuid.New()
	f.hospitals.Hospitals[hospitalID] = &model.Hospital{Base: model.Base{ID: hospitalID}, Name: "City Hospital"}
	f.doctors.Doctors[f.doctorID].HospitalID = &hospitalID

	admission := &model.Consent{
		ID:           uuid.New(),
		PatientID:    f.patientID,
		FacilityName: "City Hospital",
		RequestType:  model.ConsentTypeHospitalAdmission,
		Status:       model.ConsentStatusPending,
	}
	require.NoError(t, f.consents.Create(context.Background(), admission))

	_, err := f.svc.Respond(context.Background(), admission.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	require.Len(t, f.encounters.Encounters, 1)
	enc := f.encounters.Encounters[0]
	assert.Equal(t, f.patientID, enc.PatientID)
	assert.Equal(t, hospitalID, enc.HospitalID)
	assert.Equal(t, f.doctorID, enc.DoctorID)
	assert.Equal(t, model.EncounterStatusInProgress, enc.Status)
	assert.Equal(t, "General", enc.Department)

	assert.Contains(t, f.outbox.EventTypes(), model.EventPatientAdmitted)
}

func TestApproveAdmissionSkipsDuplicateEncounter(t *testing.T) {
	f := newFixture(t)

	hospitalID := uuid.New()
	f.hospitals.Hospitals[hospitalID] = &model.Hospital{Base: model.Base{ID: hospitalID}, Name: "City Hospital"}
	f.doctors.Doctors[f.doctorID].HospitalID = &hospitalID

	require.NoError(t, f.encounters.Create(context.Background(), &model.AdmissionEncounter{
		ID:         uuid.New(),
		PatientID:  f.patientID,
		HospitalID: hospitalID,
		Status:     model.EncounterStatusInProgress,
	}))

	admission := &model.Consent{
		ID:           uuid.New(),
		PatientID:    f.patientID,
		FacilityName: "City Hospital",
		RequestType:  model.ConsentTypeHospitalAdmission,
		Status:       model.ConsentStatusPending,
	}
	require.NoError(t, f.consents.Create(context.Background(), admission))

	_, err := f.svc.Respond(context.Background(), admission.ID, model.ConsentStatusApproved)
	require.NoError(t, err)
	assert.Len(t, f.encounters.Encounters, 1)
}

func TestApproveAdmissionWithoutDoctorStillApproves(t *testing.T) {
	f := newFixture(t)

	hospitalID := uuid.New()
	f.hospitals.Hospitals[hospitalID] = &model.Hospital{Base: model.Base{ID: hospitalID}, Name: "City Hospital"}
	// No doctor assigned to the hospital.

	admission := &model.Consent{
		ID:           uuid.New(),
		PatientID:    f.patientID,
		FacilityName: "City Hospital",
		RequestType:  model.ConsentTypeHospitalAdmission,
		Status:       model.ConsentStatusPending,
	}
	require.NoError(t, f.consents.Create(context.Background(), admission))

	updated, err := f.svc.Respond(context.Background(), admission.ID, model.ConsentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.ConsentStatusApproved, updated.Status)
	assert.Empty(t, f.encounters.Encounters)
}

func TestDeleteGuardsApprovedConsent(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), created.ID)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCannotDeleteApproved, appErr.Code)
	assert.Len(t, f.consents.Consents, 1)
}

func TestDeleteRemovesNonApprovedConsent(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusDenied)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.ID))
	assert.Empty(t, f.consents.Consents)
}

func TestListForPatientFilters(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)
	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	all, err := f.svc.ListForPatient(context.Background(), f.patientID, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	approved, err := f.svc.ListForPatient(context.Background(), f.patientID, "APPROVED")
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	pending, err := f.svc.ListForPatient(context.Background(), f.patientID, "PENDING")
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.ListForPatient(context.Background(), f.patientID, "bogus")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCleanupAllResetsEverything(t *testing.T) {
	f := newFixture(t)
	created := f.request(t)
	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	require.NoError(t, f.svc.CleanupAll(context.Background()))

	assert.Empty(t, f.consents.Consents)
	rel, err := f.rels.Find(context.Background(), f.doctorID, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusLocked, rel.Status)
}

func TestScopedUnlockOnlyMatchesFacility(t *testing.T) {
	f := newFixture(t)

	// Rebuild the service with a scoped gate.
	f.svc = consent.NewService(
		f.consents, f.patients, f.doctors, f.hospitals, f.encounters, f.rels,
		access.NewGateSync(f.rels, true),
		event.NewService(f.outbox),
		repotest.TxRunner{},
		config.ConsentConfig{DefaultValidityDays: 90},
		nil,
	)

	created := f.request(t)

	otherDoctor := uuid.New()
	f.rels.FacilityNames[otherDoctor] = "Dr. Someone Else"
	require.NoError(t, f.rels.Create(context.Background(), &model.DoctorPatient{
		ID:        uuid.New(),
		DoctorID:  otherDoctor,
		PatientID: f.patientID,
		Status:    model.RelationshipStatusLocked,
	}))

	_, err := f.svc.Respond(context.Background(), created.ID, model.ConsentStatusApproved)
	require.NoError(t, err)

	requesting, err := f.rels.Find(context.Background(), f.doctorID, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusActive, requesting.Status)

	other, err := f.rels.Find(context.Background(), otherDoctor, f.patientID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipStatusLocked, other.Status)
}
