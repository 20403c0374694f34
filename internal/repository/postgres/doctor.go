package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository"
)

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE id = $1`
	var doctor model.Doctor
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &doctor, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) FindFirstForHospital(ctx context.Context, hospitalID uuid.UUID) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE hospital_id = $1 ORDER BY created_at ASC LIMIT 1`
	var doctor model.Doctor
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &doctor, query, hospitalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find doctor for hospital: %w", err)
	}
	return &doctor, nil
}
