package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
	"github.com/swasthlink/health-api/internal/service/identity"
)

type PatientService interface {
	Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error)
}

type Service struct {
	patients repository.PatientRepository
	deriver  identity.Deriver
}

func NewService(patients repository.PatientRepository, deriver identity.Deriver) *Service {
	return &Service{patients: patients, deriver: deriver}
}

// Register creates the patient projection this service owns. The aadhar uid is
// derived exactly once here and never regenerated; it is the join key every
// other flow uses to refer to this person, whichever registration path created
// the account.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	uid, err := s.deriver.Derive(req.AadharNumber)
	if err != nil {
		return nil, err
	}

	if existing, err := s.patients.FindByAadharUID(ctx, uid); err != nil {
		return nil, fmt.Errorf("failed to check existing patient: %w", err)
	} else if existing != nil {
		// Same person registering through another flow resolves to the
		// already-known record.
		return existing, nil
	}

	patient := &model.Patient{
		Base:        model.Base{ID: uuid.New()},
		UserID:      req.UserID,
		AadharUID:   uid,
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		BloodGroup:  req.BloodGroup,
		Phone:       req.Phone,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	log.Info().
		Str("patient_id", patient.ID.String()).
		Str("uid_prefix", uid[:8]).
		Msg("registered patient")

	return patient, nil
}
