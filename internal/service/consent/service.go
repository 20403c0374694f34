package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/config"
	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
	apperrors "github.com/swasthlink/health-api/pkg/errors"
	"github.com/swasthlink/health-api/pkg/metrics"
)

// The generic requester label mobile clients send before they know the
// doctor's name; replaced with the doctor's display name.
const placeholderFacility = "Healthcare Professional"

const defaultDescription = "Request to access your medical records"

// Gate applies consent transitions to the doctor-patient access gate. It is a
// separate component so the fan-out stays auditable and testable on its own.
type Gate interface {
	Unlock(ctx context.Context, patientID uuid.UUID, facilityName string) error
	Relock(ctx context.Context, patientID uuid.UUID, facilityName string) error
}

// Emitter appends domain events to the outbox.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type ConsentService interface {
	RequestAccess(ctx context.Context, req *model.CreateConsentRequest) (*model.Consent, error)
	Respond(ctx context.Context, consentID uuid.UUID, status model.ConsentStatus) (*model.Consent, error)
	Delete(ctx context.Context, consentID uuid.UUID) error
	ListForPatient(ctx context.Context, patientID uuid.UUID, statusFilter string) ([]*model.Consent, error)
	CleanupAll(ctx context.Context) error
}

type Service struct {
	consents   repository.ConsentRepository
	patients   repository.PatientRepository
	doctors    repository.DoctorRepository
	hospitals  repository.HospitalRepository
	encounters repository.EncounterRepository
	rels       repository.RelationshipRepository
	gate       Gate
	events     Emitter
	tx         repository.TxRunner
	cfg        config.ConsentConfig
	metrics    *metrics.Metrics
}

func NewService(
	consents repository.ConsentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	hospitals repository.HospitalRepository,
	encounters repository.EncounterRepository,
	rels repository.RelationshipRepository,
	gate Gate,
	events Emitter,
	tx repository.TxRunner,
	cfg config.ConsentConfig,
	m *metrics.Metrics,
) *Service {
	return &Service{
		consents:   consents,
		patients:   patients,
		doctors:    doctors,
		hospitals:  hospitals,
		encounters: encounters,
		rels:       rels,
		gate:       gate,
		events:     events,
		tx:         tx,
		cfg:        cfg,
		metrics:    m,
	}
}

// RequestAccess records a doctor's request to see a patient's records. A
// request identical to one still PENDING returns the existing row unchanged so
// re-scans do not pile up ledger noise or surface conflict errors to clients.
// The first request from a doctor also creates the doctor-patient relationship
// in LOCKED state, so the doctor's dashboard can show the patient as pending.
func (s *Service) RequestAccess(ctx context.Context, req *model.CreateConsentRequest) (*model.Consent, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, apperrors.NotFound("doctor", err)
	}

	facility := req.FacilityName
	if facility == "" || facility == placeholderFacility {
		facility = doctor.DisplayName()
	}

	requestType := model.ConsentRequestType(req.RequestType)
	if requestType == "" {
		requestType = model.ConsentTypeDataAccess
	}

	existing, err := s.consents.FindPending(ctx, req.PatientID, facility, requestType)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending consent: %w", err)
	}
	if existing != nil {
		log.Info().
			Str("patient_id", req.PatientID.String()).
			Str("facility_name", facility).
			Msg("consent request already pending")
		return existing, nil
	}

	days := req.ExpiresInDays
	if days <= 0 {
		days = s.cfg.DefaultValidityDays
	}
	description := req.Description
	if description == "" {
		description = defaultDescription
	}

	consent := &model.Consent{
		ID:           uuid.New(),
		PatientID:    req.PatientID,
		FacilityName: facility,
		RequestType:  requestType,
		Description:  description,
		Status:       model.ConsentStatusPending,
		ExpiresAt:    time.Now().AddDate(0, 0, days),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.consents.Create(ctx, consent); err != nil {
			return err
		}
		if err := s.ensureRelationship(ctx, req.DoctorID, req.PatientID); err != nil {
			return err
		}
		return s.emit(ctx, model.EventConsentRequested, consent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consent request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ConsentRequests.Inc()
	}

	log.Info().
		Str("consent_id", consent.ID.String()).
		Str("patient_id", req.PatientID.String()).
		Str("doctor_id", req.DoctorID.String()).
		Msg("created consent request")

	return consent, nil
}

// Respond applies a patient's decision. Legal transitions are
// PENDING->APPROVED, PENDING->DENIED and APPROVED->REVOKED; everything else is
// rejected. The transition, its access-gate fan-out and the admission
// encounter all commit in one transaction.
func (s *Service) Respond(ctx context.Context, consentID uuid.UUID, status model.ConsentStatus) (*model.Consent, error) {
	if !status.Valid() || status == model.ConsentStatusPending {
		return nil, apperrors.BadRequest("status must be APPROVED, DENIED, or REVOKED", nil)
	}

	consent, err := s.consents.Get(ctx, consentID)
	if err != nil {
		return nil, apperrors.NotFound("consent", err)
	}

	if !consent.CanTransitionTo(status) {
		return nil, apperrors.InvalidStateTransition(string(consent.Status), string(status))
	}

	now := time.Now()
	consent.Status = status
	consent.RespondedAt = &now

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.consents.UpdateStatus(ctx, consent); err != nil {
			return err
		}

		switch status {
		case model.ConsentStatusApproved:
			if consent.RequestType == model.ConsentTypeHospitalAdmission {
				if err := s.materializeAdmission(ctx, consent); err != nil {
					return err
				}
			}
			if err := s.gate.Unlock(ctx, consent.PatientID, consent.FacilityName); err != nil {
				return err
			}
			return s.emit(ctx, model.EventConsentApproved, consent)

		case model.ConsentStatusRevoked:
			if err := s.gate.Relock(ctx, consent.PatientID, consent.FacilityName); err != nil {
				return err
			}
			return s.emit(ctx, model.EventConsentRevoked, consent)

		default:
			return s.emit(ctx, model.EventConsentDenied, consent)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update consent status: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ConsentTransitions.WithLabelValues(string(status)).Inc()
	}

	log.Info().
		Str("consent_id", consentID.String()).
		Str("patient_id", consent.PatientID.String()).
		Str("new_status", string(status)).
		Msg("updated consent status")

	return consent, nil
}

// materializeAdmission creates the IN_PROGRESS encounter for an approved
// hospital admission. Failure to resolve the hospital or an attending doctor
// is logged and skipped: encounter materialization never blocks the approval.
func (s *Service) materializeAdmission(ctx context.Context, consent *model.Consent) error {
	hospital, err := s.hospitals.FindByName(ctx, consent.FacilityName)
	if err != nil {
		return err
	}
	if hospital == nil {
		log.Warn().
			Str("facility_name", consent.FacilityName).
			Msg("no hospital matches admission consent facility")
		return nil
	}

	existing, err := s.encounters.FindInProgress(ctx, consent.PatientID, hospital.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	doctor, err := s.doctors.FindFirstForHospital(ctx, hospital.ID)
	if err != nil {
		return err
	}
	if doctor == nil {
		log.Warn().
			Str("hospital_id", hospital.ID.String()).
			Msg("no doctor found for hospital admission")
		return nil
	}

	reason := consent.Description
	if reason == "" {
		reason = "Hospital Admission"
	}

	encounter := &model.AdmissionEncounter{
		ID:         uuid.New(),
		PatientID:  consent.PatientID,
		DoctorID:   doctor.ID,
		HospitalID: hospital.ID,
		Department: "General",
		Reason:     reason,
		Status:     model.EncounterStatusInProgress,
	}
	if err := s.encounters.Create(ctx, encounter); err != nil {
		return err
	}

	log.Info().
		Str("patient_id", consent.PatientID.String()).
		Str("hospital_id", hospital.ID.String()).
		Msg("created admission encounter")

	return s.events.Emit(ctx, model.EventPatientAdmitted, encounter)
}

// Delete removes a consent row. Approved consents must be revoked, never
// deleted, so the ledger keeps its audit trail.
func (s *Service) Delete(ctx context.Context, consentID uuid.UUID) error {
	consent, err := s.consents.Get(ctx, consentID)
	if err != nil {
		return apperrors.NotFound("consent", err)
	}

	if consent.Status == model.ConsentStatusApproved {
		return apperrors.CannotDeleteApproved()
	}

	if err := s.consents.Delete(ctx, consentID); err != nil {
		return fmt.Errorf("failed to delete consent: %w", err)
	}

	log.Info().Str("consent_id", consentID.String()).Msg("deleted consent request")
	return nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, statusFilter string) ([]*model.Consent, error) {
	filter := model.ConsentStatus(statusFilter)
	if statusFilter != "" && !filter.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown status filter %q", statusFilter), nil)
	}
	return s.consents.ListForPatient(ctx, patientID, filter)
}

// CleanupAll wipes every consent and relocks every relationship. Ops/test
// utility, gated by config at the route level.
func (s *Service) CleanupAll(ctx context.Context) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.consents.DeleteAll(ctx); err != nil {
			return err
		}
		return s.rels.ResetAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to cleanup consents: %w", err)
	}

	log.Info().Msg("cleaned up all consents and reset doctor-patient relationships")
	return nil
}

func (s *Service) ensureRelationship(ctx context.Context, doctorID, patientID uuid.UUID) error {
	existing, err := s.rels.Find(ctx, doctorID, patientID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	rel := &model.DoctorPatient{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Status:    model.RelationshipStatusLocked,
		Condition: model.ConditionAwaitingConsent,
	}
	return s.rels.Create(ctx, rel)
}

func (s *Service) emit(ctx context.Context, eventType string, consent *model.Consent) error {
	return s.events.Emit(ctx, eventType, &model.ConsentEvent{
		ConsentID:    consent.ID,
		PatientID:    consent.PatientID,
		FacilityName: consent.FacilityName,
		RequestType:  consent.RequestType,
		Status:       consent.Status,
		OccurredAt:   time.Now(),
	})
}
