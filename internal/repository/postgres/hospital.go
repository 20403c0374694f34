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

type hospitalRepository struct {
	db *sqlx.DB
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE id = $1`
	var hospital model.Hospital
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &hospital, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) FindByName(ctx context.Context, name string) (*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE name = $1 LIMIT 1`
	var hospital model.Hospital
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &hospital, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find hospital by name: %w", err)
	}
	return &hospital, nil
}
