package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrVersionConflict means the row changed between read and write.
var ErrVersionConflict = errors.New("booking was modified concurrently")

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByReference(ctx context.Context, reference string) (*entity.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int, status entity.BookingStatus, fields StatusFields) (*entity.Booking, error)
	FindPending(ctx context.Context, filter PendingFilter) ([]*entity.Booking, error)
	ListStatusTypes(ctx context.Context) ([]StatusType, error)
}

// StatusFields carries the optional columns written together with a status
// change. Nil pointers leave the column untouched.
type StatusFields struct {
	PaymentStatus        *entity.PaymentStatus
	PaymentID            *string
	OrderID              *string
	AppointmentDate      *time.Time
	AppointmentTime      *string
	Notes                *string
	ApprovedBy           *uuid.UUID
	ApprovedAt           *time.Time
	RejectedBy           *uuid.UUID
	RejectedAt           *time.Time
	RejectionReason      *string
	RescheduledBy        *uuid.UUID
	RescheduleReason     *string
	CompletedAt          *time.Time
	CancelledAt          *time.Time
	CancellationReason   *string
	PaymentFailureReason *string
}

func (f StatusFields) assignments() ([]string, []any) {
	var cols []string
	var args []any
	add := func(col string, v any) {
		cols = append(cols, col)
		args = append(args, v)
	}

	if f.PaymentStatus != nil {
		add("payment_status", *f.PaymentStatus)
	}
	if f.PaymentID != nil {
		add("payment_id", *f.PaymentID)
	}
	if f.OrderID != nil {
		add("order_id", *f.OrderID)
	}
	if f.AppointmentDate != nil {
		add("appointment_date", *f.AppointmentDate)
	}
	if f.AppointmentTime != nil {
		add("appointment_time", *f.AppointmentTime)
	}
	if f.Notes != nil {
		add("notes", *f.Notes)
	}
	if f.ApprovedBy != nil {
		add("approved_by", *f.ApprovedBy)
	}
	if f.ApprovedAt != nil {
		add("approved_at", *f.ApprovedAt)
	}
	if f.RejectedBy != nil {
		add("rejected_by", *f.RejectedBy)
	}
	if f.RejectedAt != nil {
		add("rejected_at", *f.RejectedAt)
	}
	if f.RejectionReason != nil {
		add("rejection_reason", *f.RejectionReason)
	}
	if f.RescheduledBy != nil {
		add("rescheduled_by", *f.RescheduledBy)
	}
	if f.RescheduleReason != nil {
		add("reschedule_reason", *f.RescheduleReason)
	}
	if f.CompletedAt != nil {
		add("completed_at", *f.CompletedAt)
	}
	if f.CancelledAt != nil {
		add("cancelled_at", *f.CancelledAt)
	}
	if f.CancellationReason != nil {
		add("cancellation_reason", *f.CancellationReason)
	}
	if f.PaymentFailureReason != nil {
		add("payment_failure_reason", *f.PaymentFailureReason)
	}
	return cols, args
}

// PendingFilter narrows the staff queue. Zero values mean no filter.
type PendingFilter struct {
	BookingType entity.BookingType
	DateFrom    *time.Time
	DateTo      *time.Time
}

type StatusType struct {
	Status      entity.BookingStatus
	BookingType entity.BookingType
}

const bookingColumns = `id, reference_number, booking_type, patient_id,
	patient_name, patient_mobile, patient_email, patient_address,
	item_id, item_name, appointment_date, appointment_time,
	total_amount, payment_status, payment_id, order_id, status, notes,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	rescheduled_by, reschedule_reason, completed_at, cancelled_at,
	cancellation_reason, payment_failure_reason, version, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.ReferenceNumber,
		&b.BookingType,
		&b.PatientID,
		&b.PatientName,
		&b.PatientMobile,
		&b.PatientEmail,
		&b.PatientAddress,
		&b.ItemID,
		&b.ItemName,
		&b.AppointmentDate,
		&b.AppointmentTime,
		&b.TotalAmount,
		&b.PaymentStatus,
		&b.PaymentID,
		&b.OrderID,
		&b.Status,
		&b.Notes,
		&b.ApprovedBy,
		&b.ApprovedAt,
		&b.RejectedBy,
		&b.RejectedAt,
		&b.RejectionReason,
		&b.RescheduledBy,
		&b.RescheduleReason,
		&b.CompletedAt,
		&b.CancelledAt,
		&b.CancellationReason,
		&b.PaymentFailureReason,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, reference_number, booking_type, patient_id,
		                      patient_name, patient_mobile, patient_email, patient_address,
		                      item_id, item_name, appointment_date, appointment_time,
		                      total_amount, payment_status, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING version, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		booking.ID,
		booking.ReferenceNumber,
		booking.BookingType,
		booking.PatientID,
		booking.PatientName,
		booking.PatientMobile,
		booking.PatientEmail,
		booking.PatientAddress,
		booking.ItemID,
		booking.ItemName,
		booking.AppointmentDate,
		booking.AppointmentTime,
		booking.TotalAmount,
		booking.PaymentStatus,
		booking.Status,
		booking.Notes,
	).Scan(&booking.Version, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.ReferenceNumber),
		)
		return fmt.Errorf("create booking %s: %w", booking.ReferenceNumber, err)
	}

	return nil
}

func (r *bookingRepository) findOne(ctx context.Context, where string, arg any) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where

	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err), zap.String("where", where), zap.Any("arg", arg))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	return r.findOne(ctx, "reference_number = $1", reference)
}

func (r *bookingRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	return r.findOne(ctx, "order_id = $1", orderID)
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE patient_id IN (SELECT id FROM patients WHERE user_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE patient_id IN (SELECT id FROM patients WHERE user_id = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

// UpdateStatus writes status and fields only if the row still carries
// expectedVersion. It bumps version and updated_at. A missing row yields
// (nil, nil); a stale version yields ErrVersionConflict.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int, status entity.BookingStatus, fields StatusFields) (*entity.Booking, error) {
	cols, extra := fields.assignments()

	set := []string{"status = $3", "version = version + 1", "updated_at = NOW()"}
	args := []any{id, expectedVersion, status}
	for i, col := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", col, i+4))
	}
	args = append(args, extra...)

	query := `UPDATE bookings SET ` + strings.Join(set, ", ") +
		` WHERE id = $1 AND version = $2 RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		var current int
		err := r.db.QueryRow(ctx, `SELECT version FROM bookings WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("check booking %s version: %w", id.String(), err)
		}
		r.log.Warn("Booking version conflict",
			zap.String("booking_id", id.String()),
			zap.Int("expected", expectedVersion),
			zap.Int("current", current),
		)
		return nil, ErrVersionConflict
	}
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update booking %s status to %s: %w", id.String(), status, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindPending(ctx context.Context, filter PendingFilter) ([]*entity.Booking, error) {
	where := []string{
		"payment_status = 'completed'",
		"status IN ('Paid', 'Payment Pending')",
	}
	var args []any
	if filter.BookingType != "" {
		args = append(args, filter.BookingType)
		where = append(where, fmt.Sprintf("booking_type = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where = append(where, fmt.Sprintf("appointment_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where = append(where, fmt.Sprintf("appointment_date <= $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY appointment_date ASC, appointment_time ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find pending bookings", zap.Error(err))
		return nil, fmt.Errorf("find pending bookings: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) ListStatusTypes(ctx context.Context) ([]StatusType, error) {
	rows, err := r.db.Query(ctx, `SELECT status, booking_type FROM bookings`)
	if err != nil {
		r.log.Error("Failed to list booking statuses", zap.Error(err))
		return nil, fmt.Errorf("list booking statuses: %w", err)
	}
	defer rows.Close()

	var out []StatusType
	for rows.Next() {
		var st StatusType
		if err := rows.Scan(&st.Status, &st.BookingType); err != nil {
			return nil, fmt.Errorf("scan booking status row: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking status rows: %w", err)
	}
	return out, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return bookings, nil
}
