package repository

import (
	"context"
	"fmt"

	"care-booking/internal/data/entity"
	"care-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TestRepository interface {
	Upsert(ctx context.Context, test *entity.LabTest) (bool, error)
	FindByCode(ctx context.Context, code string) (*entity.LabTest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LabTest, error)
	FindActive(ctx context.Context, category string, limit, offset int) ([]*entity.LabTest, error)
	CountActive(ctx context.Context, category string) (int64, error)
}

type testRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTestRepository(db database.PgxIface, log *zap.Logger) TestRepository {
	return &testRepository{
		db:  db,
		log: log.With(zap.String("repository", "test")),
	}
}

const testColumns = `id, code, name, category, mrp, sample_type, tat, is_active, description, created_at, updated_at`

// Upsert inserts or overwrites the test keyed by code. The bool is true when
// a new row was inserted.
func (r *testRepository) Upsert(ctx context.Context, test *entity.LabTest) (bool, error) {
	query := `
		INSERT INTO tests (id, code, name, category, mrp, sample_type, tat, is_active, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category, mrp = EXCLUDED.mrp,
		    sample_type = EXCLUDED.sample_type, tat = EXCLUDED.tat,
		    is_active = EXCLUDED.is_active, description = EXCLUDED.description,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRow(ctx, query,
		test.ID,
		test.Code,
		test.Name,
		test.Category,
		test.MRP,
		test.SampleType,
		test.TAT,
		test.IsActive,
		test.Description,
	).Scan(&test.ID, &test.CreatedAt, &test.UpdatedAt, &inserted)

	if err != nil {
		r.log.Error("Failed to upsert test", zap.Error(err), zap.String("code", test.Code))
		return false, fmt.Errorf("upsert test %s: %w", test.Code, err)
	}

	return inserted, nil
}

func (r *testRepository) FindByCode(ctx context.Context, code string) (*entity.LabTest, error) {
	query := `SELECT ` + testColumns + ` FROM tests WHERE code = $1`

	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		r.log.Error("Failed to find test by code", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("find test %s: %w", code, err)
	}
	defer rows.Close()

	tests, err := scanTests(rows)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, nil
	}
	return tests[0], nil
}

func (r *testRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LabTest, error) {
	query := `SELECT ` + testColumns + ` FROM tests WHERE id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to find test by id", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("find test %s: %w", id, err)
	}
	defer rows.Close()

	tests, err := scanTests(rows)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, nil
	}
	return tests[0], nil
}

func (r *testRepository) FindActive(ctx context.Context, category string, limit, offset int) ([]*entity.LabTest, error) {
	query := `
		SELECT ` + testColumns + `
		FROM tests
		WHERE is_active AND ($1 = '' OR category = $1)
		ORDER BY category, name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, category, limit, offset)
	if err != nil {
		r.log.Error("Failed to list tests", zap.Error(err), zap.String("category", category))
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	return scanTests(rows)
}

func (r *testRepository) CountActive(ctx context.Context, category string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tests WHERE is_active AND ($1 = '' OR category = $1)`, category).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count tests", zap.Error(err))
		return 0, fmt.Errorf("count tests: %w", err)
	}
	return count, nil
}

func scanTests(rows pgx.Rows) ([]*entity.LabTest, error) {
	var tests []*entity.LabTest
	for rows.Next() {
		var t entity.LabTest
		err := rows.Scan(
			&t.ID,
			&t.Code,
			&t.Name,
			&t.Category,
			&t.MRP,
			&t.SampleType,
			&t.TAT,
			&t.IsActive,
			&t.Description,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan test row: %w", err)
		}
		tests = append(tests, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test rows: %w", err)
	}
	return tests, nil
}
