package access

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
)

// GateSync is the single component that applies consent transitions to
// doctor-patient relationships. In broad mode (the historical behavior) an
// approval unlocks every LOCKED relationship of the patient, whichever doctor
// it was nominally for; scoped mode restricts the update to doctors whose
// display name matches the consent's facility name.
type GateSync struct {
	rels   repository.RelationshipRepository
	scoped bool
}

func NewGateSync(rels repository.RelationshipRepository, scoped bool) *GateSync {
	return &GateSync{rels: rels, scoped: scoped}
}

func (g *GateSync) Unlock(ctx context.Context, patientID uuid.UUID, facilityName string) error {
	n, err := g.rels.UpdateStatusForPatient(ctx, patientID, g.scope(facilityName),
		model.RelationshipStatusLocked, model.RelationshipStatusActive, model.ConditionAccessGranted)
	if err != nil {
		return err
	}
	log.Info().
		Str("patient_id", patientID.String()).
		Int64("relationships", n).
		Msg("unlocked doctor-patient relationships")
	return nil
}

func (g *GateSync) Relock(ctx context.Context, patientID uuid.UUID, facilityName string) error {
	n, err := g.rels.UpdateStatusForPatient(ctx, patientID, g.scope(facilityName),
		model.RelationshipStatusActive, model.RelationshipStatusLocked, model.ConditionAccessRevoked)
	if err != nil {
		return err
	}
	log.Info().
		Str("patient_id", patientID.String()).
		Int64("relationships", n).
		Msg("relocked doctor-patient relationships")
	return nil
}

func (g *GateSync) scope(facilityName string) string {
	if g.scoped {
		return facilityName
	}
	return ""
}
