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

type StaffRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Staff, error)
}

type staffRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStaffRepository(db database.PgxIface, log *zap.Logger) StaffRepository {
	return &staffRepository{
		db:  db,
		log: log.With(zap.String("repository", "staff")),
	}
}

// FindByUserID only returns active staff records.
func (r *staffRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Staff, error) {
	query := `
		SELECT id, user_id, full_name, email, department, role, is_active, created_at, updated_at
		FROM staff
		WHERE user_id = $1 AND is_active
	`

	var s entity.Staff
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.FullName,
		&s.Email,
		&s.Department,
		&s.Role,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find staff by user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find staff by user %s: %w", userID.String(), err)
	}

	return &s, nil
}
