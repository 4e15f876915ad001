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

type DoctorRepository interface {
	Create(ctx context.Context, doctor *entity.Doctor) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
	FindAvailable(ctx context.Context, specialization string, limit, offset int) ([]*entity.Doctor, error)
	CountAvailable(ctx context.Context, specialization string) (int64, error)
}

type doctorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewDoctorRepository(db database.PgxIface, log *zap.Logger) DoctorRepository {
	return &doctorRepository{
		db:  db,
		log: log.With(zap.String("repository", "doctor")),
	}
}

const doctorColumns = `id, full_name, specialization, qualification, experience_years,
	consultation_fee, is_available, created_at, updated_at`

func (r *doctorRepository) Create(ctx context.Context, doctor *entity.Doctor) error {
	query := `
		INSERT INTO doctors (id, full_name, specialization, qualification, experience_years,
		                     consultation_fee, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		doctor.ID,
		doctor.FullName,
		doctor.Specialization,
		doctor.Qualification,
		doctor.ExperienceYears,
		doctor.ConsultationFee,
		doctor.IsAvailable,
	).Scan(&doctor.CreatedAt, &doctor.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create doctor", zap.Error(err), zap.String("name", doctor.FullName))
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`

	doctor, err := scanDoctor(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find doctor", zap.Error(err), zap.String("doctor_id", id.String()))
		return nil, fmt.Errorf("find doctor %s: %w", id.String(), err)
	}
	return doctor, nil
}

func (r *doctorRepository) FindAvailable(ctx context.Context, specialization string, limit, offset int) ([]*entity.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE is_available AND ($1 = '' OR specialization ILIKE $1)
		ORDER BY experience_years DESC, full_name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, specialization, limit, offset)
	if err != nil {
		r.log.Error("Failed to list doctors", zap.Error(err))
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*entity.Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor row: %w", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctor rows: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) CountAvailable(ctx context.Context, specialization string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM doctors WHERE is_available AND ($1 = '' OR specialization ILIKE $1)`,
		specialization,
	).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count doctors", zap.Error(err))
		return 0, fmt.Errorf("count doctors: %w", err)
	}
	return count, nil
}

func scanDoctor(row pgx.Row) (*entity.Doctor, error) {
	var d entity.Doctor
	err := row.Scan(
		&d.ID,
		&d.FullName,
		&d.Specialization,
		&d.Qualification,
		&d.ExperienceYears,
		&d.ConsultationFee,
		&d.IsAvailable,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
