package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
)

type encounterRepository struct {
	db *sqlx.DB
}

func NewEncounterRepository(db *sqlx.DB) repository.EncounterRepository {
	return &encounterRepository{db: db}
}

func (r *encounterRepository) Create(ctx context.Context, enc *model.AdmissionEncounter) error {
	query := `
		INSERT INTO admission_encounters (id, patient_id, doctor_id, hospital_id,
			started_at, department, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	enc.StartedAt = time.Now()

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		enc.ID,
		enc.PatientID,
		enc.DoctorID,
		enc.HospitalID,
		enc.StartedAt,
		enc.Department,
		enc.Reason,
		enc.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create encounter: %w", err)
	}
	return nil
}

func (r *encounterRepository) FindInProgress(ctx context.Context, patientID, hospitalID uuid.UUID) (*model.AdmissionEncounter, error) {
	query := `
		SELECT * FROM admission_encounters
		WHERE patient_id = $1 AND hospital_id = $2 AND status = $3
		LIMIT 1
	`
	var enc model.AdmissionEncounter
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &enc, query, patientID, hospitalID, model.EncounterStatusInProgress)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find in-progress encounter: %w", err)
	}
	return &enc, nil
}

// Complete is used by the discharge workflow.
func (r *encounterRepository) Complete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE admission_encounters SET status = $1 WHERE id = $2`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, model.EncounterStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to complete encounter: %w", err)
	}
	return nil
}
