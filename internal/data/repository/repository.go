package repository

import (
	"care-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Patient PatientRepository
	Staff   StaffRepository
	Test    TestRepository
	Doctor  DoctorRepository
	Booking BookingRepository
	Payment PaymentRepository
	Outbox  OutboxRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Patient: NewPatientRepository(db, log),
		Staff:   NewStaffRepository(db, log),
		Test:    NewTestRepository(db, log),
		Doctor:  NewDoctorRepository(db, log),
		Booking: NewBookingRepository(db, log),
		Payment: NewPaymentRepository(db, log),
		Outbox:  NewOutboxRepository(db, log),
	}
}
