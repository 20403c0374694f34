package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
	apperrors "github.com/swasthlink/health-api/pkg/errors"
)

// Revoker is the slice of the consent ledger the access gate needs: revoking
// an approved consent when a doctor removes a patient. Going through the
// ledger keeps the relock fan-out in one place.
type Revoker interface {
	Respond(ctx context.Context, consentID uuid.UUID, status model.ConsentStatus) (*model.Consent, error)
}

type AccessService interface {
	ViewForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorPatientView, error)
	RemovePatient(ctx context.Context, doctorID, patientID uuid.UUID) error
}

type Service struct {
	rels     repository.RelationshipRepository
	patients repository.PatientRepository
	consents repository.ConsentRepository
	revoker  Revoker
	now      func() time.Time
}

func NewService(rels repository.RelationshipRepository, patients repository.PatientRepository, consents repository.ConsentRepository, revoker Revoker) *Service {
	return &Service{
		rels:     rels,
		patients: patients,
		consents: consents,
		revoker:  revoker,
		now:      time.Now,
	}
}

// ViewForDoctor projects the doctor's patient list. Name and scheduling fields
// are always visible; clinical detail (age, gender, blood group, phone) only
// while an approved consent exists for the patient.
func (s *Service) ViewForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorPatientView, error) {
	rels, err := s.rels.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients for doctor: %w", err)
	}

	views := make([]*model.DoctorPatientView, 0, len(rels))
	for _, rel := range rels {
		patient, err := s.patients.Get(ctx, rel.PatientID)
		if err != nil {
			// A dangling relationship should not break the whole dashboard.
			log.Warn().
				Str("relationship_id", rel.ID.String()).
				Str("patient_id", rel.PatientID.String()).
				Err(err).
				Msg("relationship references missing patient")
			patient = nil
		}

		approved, err := s.consents.FindApprovedForPatient(ctx, rel.PatientID)
		if err != nil {
			return nil, fmt.Errorf("failed to check consent for patient: %w", err)
		}
		accessGranted := approved != nil

		condition := rel.Condition
		if condition == "" {
			condition = "No condition specified"
		}

		view := &model.DoctorPatientView{
			ID:              rel.ID,
			PatientID:       rel.PatientID,
			PatientName:     "Unknown Patient",
			Status:          rel.Status,
			Condition:       condition,
			NextAppointment: rel.NextAppointment,
			LastVisit:       rel.LastVisit,
			EmergencyFlag:   rel.EmergencyFlag,
			AssignedAt:      rel.AssignedAt,
			AccessGranted:   accessGranted,
		}

		if patient != nil {
			view.PatientName = patient.DisplayName()
			if accessGranted {
				view.PatientAge = patient.Age(s.now())
				view.PatientGender = patient.Gender
				view.PatientBloodGroup = patient.BloodGroup
				view.PatientPhone = patient.Phone
			}
		}

		views = append(views, view)
	}

	return views, nil
}

// RemovePatient drops a patient from the doctor's list: any approved consent
// is revoked through the ledger (which relocks relationships), then this
// relationship is locked with an explanatory note.
func (s *Service) RemovePatient(ctx context.Context, doctorID, patientID uuid.UUID) error {
	rel, err := s.rels.Find(ctx, doctorID, patientID)
	if err != nil {
		return fmt.Errorf("failed to find relationship: %w", err)
	}
	if rel == nil {
		return apperrors.NotFound("patient relationship", nil)
	}

	approved, err := s.consents.FindApprovedForPatient(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to check consent: %w", err)
	}
	if approved != nil {
		if _, err := s.revoker.Respond(ctx, approved.ID, model.ConsentStatusRevoked); err != nil {
			return fmt.Errorf("failed to revoke consent: %w", err)
		}
	}

	if err := s.rels.UpdateStatus(ctx, rel.ID, model.RelationshipStatusLocked, model.ConditionRemovedByDoctor); err != nil {
		return fmt.Errorf("failed to lock relationship: %w", err)
	}

	log.Info().
		Str("doctor_id", doctorID.String()).
		Str("patient_id", patientID.String()).
		Msg("doctor removed patient")

	return nil
}
