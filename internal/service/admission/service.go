package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/config"
	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
	"github.com/swasthlink/health-api/internal/service/identity"
	apperrors "github.com/swasthlink/health-api/pkg/errors"
)

// Hospital rows are effectively static, so lookups are cached.
const (
	hospitalCacheTTL     = 15 * time.Minute
	hospitalCacheCleanup = time.Hour
)

type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type AdmissionService interface {
	RequestAdmission(ctx context.Context, hospitalID uuid.UUID, aadharNumber, reason string) (*model.Consent, bool, error)
}

type Service struct {
	hospitals     repository.HospitalRepository
	patients      repository.PatientRepository
	consents      repository.ConsentRepository
	deriver       identity.Deriver
	events        Emitter
	cfg           config.ConsentConfig
	hospitalCache *cache.Cache
}

func NewService(
	hospitals repository.HospitalRepository,
	patients repository.PatientRepository,
	consents repository.ConsentRepository,
	deriver identity.Deriver,
	events Emitter,
	cfg config.ConsentConfig,
) *Service {
	return &Service{
		hospitals:     hospitals,
		patients:      patients,
		consents:      consents,
		deriver:       deriver,
		events:        events,
		cfg:           cfg,
		hospitalCache: cache.New(hospitalCacheTTL, hospitalCacheCleanup),
	}
}

// RequestAdmission raises a HOSPITAL_ADMISSION consent for the patient behind
// the given Aadhar number. Returns the consent and whether it was already
// pending. Admissions are time-sensitive, so the validity window is short
// (1 day by default) compared to plain data-access requests.
func (s *Service) RequestAdmission(ctx context.Context, hospitalID uuid.UUID, aadharNumber, reason string) (*model.Consent, bool, error) {
	hospital, err := s.getHospital(ctx, hospitalID)
	if err != nil {
		return nil, false, apperrors.NotFound("hospital", err)
	}

	uid, err := s.deriver.Derive(aadharNumber)
	if err != nil {
		return nil, false, err
	}

	patient, err := s.patients.FindByAadharUID(ctx, uid)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up patient: %w", err)
	}
	if patient == nil {
		return nil, false, apperrors.NotFound("patient", nil)
	}

	existing, err := s.consents.FindPending(ctx, patient.ID, hospital.Name, model.ConsentTypeHospitalAdmission)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check pending admission: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	description := fmt.Sprintf("Request for admission at %s", hospital.Name)
	if reason != "" {
		description += ": " + reason
	}

	days := s.cfg.AdmissionValidityDays
	if days <= 0 {
		days = 1
	}

	consent := &model.Consent{
		ID:           uuid.New(),
		PatientID:    patient.ID,
		FacilityName: hospital.Name,
		RequestType:  model.ConsentTypeHospitalAdmission,
		Description:  description,
		Status:       model.ConsentStatusPending,
		ExpiresAt:    time.Now().AddDate(0, 0, days),
	}
	if err := s.consents.Create(ctx, consent); err != nil {
		return nil, false, fmt.Errorf("failed to create admission consent: %w", err)
	}

	if err := s.events.Emit(ctx, model.EventConsentRequested, &model.ConsentEvent{
		ConsentID:    consent.ID,
		PatientID:    consent.PatientID,
		FacilityName: consent.FacilityName,
		RequestType:  consent.RequestType,
		Status:       consent.Status,
		OccurredAt:   time.Now(),
	}); err != nil {
		return nil, false, fmt.Errorf("failed to emit admission event: %w", err)
	}

	log.Info().
		Str("consent_id", consent.ID.String()).
		Str("patient_id", patient.ID.String()).
		Str("hospital_id", hospitalID.String()).
		Msg("created admission consent request")

	return consent, false, nil
}

func (s *Service) getHospital(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	if cached, ok := s.hospitalCache.Get(id.String()); ok {
		return cached.(*model.Hospital), nil
	}
	hospital, err := s.hospitals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.hospitalCache.Set(id.String(), hospital, cache.DefaultExpiration)
	return hospital, nil
}
