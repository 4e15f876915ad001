package repository

import (
	"context"
	"errors"
	"fmt"

	"care-booking/internal/data/entity"
	"care-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *entity.Patient) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Patient, error)
	Update(ctx context.Context, patient *entity.Patient) error
}

type patientRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPatientRepository(db database.PgxIface, log *zap.Logger) PatientRepository {
	return &patientRepository{
		db:  db,
		log: log.With(zap.String("repository", "patient")),
	}
}

const patientColumns = `id, user_id, full_name, mobile, email, address, date_of_birth, gender, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	query := `
		INSERT INTO patients (id, user_id, full_name, mobile, email, address, date_of_birth, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		patient.ID,
		patient.UserID,
		patient.FullName,
		patient.Mobile,
		patient.Email,
		patient.Address,
		patient.DateOfBirth,
		patient.Gender,
	).Scan(&patient.CreatedAt, &patient.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create patient", zap.Error(err), zap.String("mobile", patient.Mobile))
		return fmt.Errorf("create patient: %w", err)
	}

	return nil
}

func (r *patientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *patientRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Patient, error) {
	return r.findOne(ctx, "user_id = $1", userID)
}

func (r *patientRepository) findOne(ctx context.Context, where string, arg any) (*entity.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE ` + where

	var p entity.Patient
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.Mobile,
		&p.Email,
		&p.Address,
		&p.DateOfBirth,
		&p.Gender,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find patient", zap.Error(err), zap.String("where", where))
		return nil, fmt.Errorf("find patient: %w", err)
	}

	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *entity.Patient) error {
	query := `
		UPDATE patients
		SET full_name = $2, mobile = $3, email = $4, address = $5,
		    date_of_birth = $6, gender = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		patient.ID,
		patient.FullName,
		patient.Mobile,
		patient.Email,
		patient.Address,
		patient.DateOfBirth,
		patient.Gender,
	).Scan(&patient.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("patient %s not found", patient.ID.String())
	}
	if err != nil {
		r.log.Error("Failed to update patient", zap.Error(err), zap.String("patient_id", patient.ID.String()))
		return fmt.Errorf("update patient %s: %w", patient.ID.String(), err)
	}

	return nil
}
