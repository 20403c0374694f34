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

type relationshipRepository struct {
	db *sqlx.DB
}

func NewRelationshipRepository(db *sqlx.DB) repository.RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Create(ctx context.Context, rel *model.DoctorPatient) error {
	query := `
		INSERT INTO doctor_patients (id, doctor_id, patient_id, status, condition,
			next_appointment, last_visit, emergency_flag, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	rel.AssignedAt = time.Now()

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		rel.ID,
		rel.DoctorID,
		rel.PatientID,
		rel.Status,
		rel.Condition,
		rel.NextAppointment,
		rel.LastVisit,
		rel.EmergencyFlag,
		rel.AssignedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	return nil
}

func (r *relationshipRepository) Find(ctx context.Context, doctorID, patientID uuid.UUID) (*model.DoctorPatient, error) {
	query := `SELECT * FROM doctor_patients WHERE doctor_id = $1 AND patient_id = $2 LIMIT 1`
	var rel model.DoctorPatient
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &rel, query, doctorID, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find relationship: %w", err)
	}
	return &rel, nil
}

func (r *relationshipRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorPatient, error) {
	query := `SELECT * FROM doctor_patients WHERE doctor_id = $1 ORDER BY assigned_at DESC`
	var rels []*model.DoctorPatient
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &rels, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}

func (r *relationshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RelationshipStatus, condition string) error {
	query := `UPDATE doctor_patients SET status = $1, condition = $2 WHERE id = $3`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, status, condition, id)
	if err != nil {
		return fmt.Errorf("failed to update relationship status: %w", err)
	}
	return nil
}

func (r *relationshipRepository) UpdateStatusForPatient(ctx context.Context, patientID uuid.UUID, facilityName string, from, to model.RelationshipStatus, condition string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if facilityName != "" {
		// Scoped update: only relationships whose doctor's display name
		// matches the consent's facility name. The display name is the only
		// requester key the consent schema carries.
		query := `
			UPDATE doctor_patients dp
			SET status = $1, condition = $2
			FROM doctors d
			WHERE dp.doctor_id = d.id
			  AND dp.patient_id = $3
			  AND dp.status = $4
			  AND TRIM(CONCAT(COALESCE(NULLIF(d.title, ''), 'Dr.'), ' ', d.first_name, ' ', d.last_name)) = $5
		`
		res, err = ext(ctx, r.db).ExecContext(ctx, query, to, condition, patientID, from, facilityName)
	} else {
		query := `UPDATE doctor_patients SET status = $1, condition = $2 WHERE patient_id = $3 AND status = $4`
		res, err = ext(ctx, r.db).ExecContext(ctx, query, to, condition, patientID, from)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update relationships for patient: %w", err)
	}
	return res.RowsAffected()
}

func (r *relationshipRepository) ResetAll(ctx context.Context) error {
	query := `UPDATE doctor_patients SET status = $1, condition = $2`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, model.RelationshipStatusLocked, model.ConditionAwaitingConsent)
	if err != nil {
		return fmt.Errorf("failed to reset relationships: %w", err)
	}
	return nil
}
