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

type consentRepository struct {
	db *sqlx.DB
}

func NewConsentRepository(db *sqlx.DB) repository.ConsentRepository {
	return &consentRepository{db: db}
}

func (r *consentRepository) Create(ctx context.Context, consent *model.Consent) error {
	query := `
		INSERT INTO consents (id, patient_id, facility_name, request_type, description,
			status, requested_at, responded_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	consent.RequestedAt = time.Now()

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		consent.ID,
		consent.PatientID,
		consent.FacilityName,
		consent.RequestType,
		consent.Description,
		consent.Status,
		consent.RequestedAt,
		consent.RespondedAt,
		consent.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consent: %w", err)
	}
	return nil
}

func (r *consentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consent, error) {
	query := `SELECT * FROM consents WHERE id = $1`
	var consent model.Consent
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &consent, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}
	return &consent, nil
}

func (r *consentRepository) FindPending(ctx context.Context, patientID uuid.UUID, facilityName string, requestType model.ConsentRequestType) (*model.Consent, error) {
	// Dedup lookup for the at-most-one-PENDING-per-(patient, facility)
	// invariant. A hardened schema would back this with a partial unique
	// index, see schema.sql.
	query := `
		SELECT * FROM consents
		WHERE patient_id = $1 AND facility_name = $2 AND request_type = $3 AND status = $4
		ORDER BY requested_at DESC
		LIMIT 1
	`
	var consent model.Consent
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &consent, query,
		patientID, facilityName, requestType, model.ConsentStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending consent: %w", err)
	}
	return &consent, nil
}

func (r *consentRepository) FindApprovedForPatient(ctx context.Context, patientID uuid.UUID) (*model.Consent, error) {
	query := `
		SELECT * FROM consents
		WHERE patient_id = $1 AND status = $2
		ORDER BY responded_at DESC
		LIMIT 1
	`
	var consent model.Consent
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &consent, query, patientID, model.ConsentStatusApproved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find approved consent: %w", err)
	}
	return &consent, nil
}

func (r *consentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, statusFilter model.ConsentStatus) ([]*model.Consent, error) {
	var consents []*model.Consent
	var err error
	if statusFilter != "" {
		query := `SELECT * FROM consents WHERE patient_id = $1 AND status = $2 ORDER BY requested_at DESC`
		err = sqlx.SelectContext(ctx, ext(ctx, r.db), &consents, query, patientID, statusFilter)
	} else {
		query := `SELECT * FROM consents WHERE patient_id = $1 ORDER BY requested_at DESC`
		err = sqlx.SelectContext(ctx, ext(ctx, r.db), &consents, query, patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}
	return consents, nil
}

func (r *consentRepository) UpdateStatus(ctx context.Context, consent *model.Consent) error {
	query := `UPDATE consents SET status = $1, responded_at = $2 WHERE id = $3`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, consent.Status, consent.RespondedAt, consent.ID)
	if err != nil {
		return fmt.Errorf("failed to update consent status: %w", err)
	}
	return nil
}

func (r *consentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM consents WHERE id = $1`
	_, err := ext(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete consent: %w", err)
	}
	return nil
}

func (r *consentRepository) DeleteAll(ctx context.Context) error {
	query := `DELETE FROM consents`
	_, err := ext(ctx, r.db).ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to delete consents: %w", err)
	}
	return nil
}
