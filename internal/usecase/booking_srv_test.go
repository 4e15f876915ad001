package usecase

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"care-booking/internal/data/entity"
	"care-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceFormat = regexp.MustCompile(`^BK-\d{6}-\d{3}$`)

// bookingRequest returns a valid test booking against a catalog CBC priced at 1000.
func (f *fixture) bookingRequest() *request.CreateBookingRequest {
	cbc, _ := f.tests.FindByCode(context.Background(), "CBC")
	if cbc == nil {
		cbc = &entity.LabTest{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			Code:         "CBC",
			Name:         "Complete Blood Count",
			Category:     "Haematology",
			MRP:          1000,
			IsActive:     true,
		}
		_, _ = f.tests.Upsert(context.Background(), cbc)
	}
	return &request.CreateBookingRequest{
		BookingType:     "test",
		ItemID:          cbc.ID.String(),
		PatientName:     "Asha Rao",
		PatientMobile:   "9876543210",
		PatientEmail:    "Asha@Example.com",
		AppointmentDate: "2026-11-02",
		AppointmentTime: "09:30",
		TotalAmount:     1000,
	}
}

func TestBookingCreate_StartsInPaymentPending(t *testing.T) {
	f := newFixture()
	sess, patient := f.patientSession()
	svc := f.bookingService()

	resp, err := svc.Create(context.Background(), sess, f.bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPaymentPending, resp.Status)
	assert.Equal(t, entity.PaymentStatusPending, resp.PaymentStatus)
	assert.Regexp(t, referenceFormat, resp.ReferenceNumber)
	assert.Equal(t, "asha@example.com", resp.PatientEmail)
	assert.Equal(t, "2026-11-02", resp.AppointmentDate)
	assert.Equal(t, 1, resp.Version)
	assert.Contains(t, resp.WhatsAppLink, "https://wa.me/919876543210")

	stored := f.bookings.get(uuid.MustParse(resp.ID))
	require.NotNil(t, stored)
	require.NotNil(t, stored.PatientID)
	assert.Equal(t, patient.ID, *stored.PatientID)

	assert.Equal(t, []NotificationEvent{EventCreated}, f.notifier.events())
}

func TestBookingCreate_ReferenceAlwaysMatchesFormat(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	svc := f.bookingService()

	for i := 0; i < 20; i++ {
		resp, err := svc.Create(context.Background(), sess, f.bookingRequest())
		require.NoError(t, err)
		assert.Regexp(t, referenceFormat, resp.ReferenceNumber)
	}
}

func TestBookingCreate_RetriesOnReferenceCollision(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	svc := f.bookingService()

	refs := []string{"BK-000001-001", "BK-000001-002"}
	svc.newReference = func() string {
		ref := refs[0]
		refs = refs[1:]
		return ref
	}
	f.bookings.createErrs = []error{fmt.Errorf("create booking: %w", &pgconn.PgError{Code: "23505"})}

	resp, err := svc.Create(context.Background(), sess, f.bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, "BK-000001-002", resp.ReferenceNumber)
	assert.Equal(t, 2, f.bookings.creates)
}

func TestBookingCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	svc := f.bookingService()

	dup := &pgconn.PgError{Code: "23505"}
	f.bookings.createErrs = []error{dup, dup, dup}

	_, err := svc.Create(context.Background(), sess, f.bookingRequest())
	require.Error(t, err)
	assert.Equal(t, referenceAttempts, f.bookings.creates)
	assert.Empty(t, f.notifier.events())
}

func TestBookingCreate_OtherStoreErrorsAreNotRetried(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	svc := f.bookingService()

	f.bookings.createErrs = []error{fmt.Errorf("connection reset")}

	_, err := svc.Create(context.Background(), sess, f.bookingRequest())
	require.Error(t, err)
	assert.Equal(t, 1, f.bookings.creates)
}

func TestBookingCreate_MissingRequiredFields(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	svc := f.bookingService()

	cases := map[string]func(r *request.CreateBookingRequest){
		"patient name":     func(r *request.CreateBookingRequest) { r.PatientName = "" },
		"patient mobile":   func(r *request.CreateBookingRequest) { r.PatientMobile = "" },
		"booking type":     func(r *request.CreateBookingRequest) { r.BookingType = "" },
		"appointment date": func(r *request.CreateBookingRequest) { r.AppointmentDate = "" },
		"bad date":         func(r *request.CreateBookingRequest) { r.AppointmentDate = "02/11/2026" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := f.bookingRequest()
			mutate(req)

			_, err := svc.Create(context.Background(), sess, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, f.bookings.creates)
}

func TestBookingCreate_RequiresSession(t *testing.T) {
	f := newFixture()

	_, err := f.bookingService().Create(context.Background(), nil, f.bookingRequest())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBookingCreate_DoctorFeeComesFromRecord(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	doctor := &entity.Doctor{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New()},
		FullName:        "Dr. Meera Iyer",
		Specialization:  "Cardiology",
		ConsultationFee: 750,
		IsAvailable:     true,
	}
	require.NoError(t, f.doctors.Create(context.Background(), doctor))

	req := f.bookingRequest()
	req.BookingType = "doctor"
	req.ItemID = doctor.ID.String()
	req.TotalAmount = 1

	resp, err := f.bookingService().Create(context.Background(), sess, req)
	require.NoError(t, err)
	assert.Equal(t, 750.0, resp.TotalAmount)
	assert.Equal(t, "Dr. Meera Iyer", resp.ItemName)
}

func TestBookingCreate_TestPriceComesFromCatalog(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()

	req := f.bookingRequest()
	req.TotalAmount = 1
	req.ItemName = "Anything"

	resp, err := f.bookingService().Create(context.Background(), sess, req)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, resp.TotalAmount)
	assert.Equal(t, "Complete Blood Count", resp.ItemName)

	params, err := f.paymentService().BuildSession(context.Background(), sess, &request.PaymentSessionRequest{BookingID: resp.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), params.Amount)
}

func TestBookingCreate_RejectsUnknownOrRetiredTest(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()
	retired := &entity.LabTest{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Code:         "LIPID",
		Name:         "Lipid Profile",
		MRP:          900,
	}
	_, _ = f.tests.Upsert(context.Background(), retired)

	cases := map[string]string{
		"missing item": "",
		"unknown test": uuid.NewString(),
		"inactive":     retired.ID.String(),
	}
	for name, itemID := range cases {
		t.Run(name, func(t *testing.T) {
			req := f.bookingRequest()
			req.ItemID = itemID

			_, err := f.bookingService().Create(context.Background(), sess, req)
			assert.ErrorIs(t, err, ErrInvalidBooking)
		})
	}
	assert.Zero(t, f.bookings.creates)
}

func TestBookingCreate_UnavailableDoctor(t *testing.T) {
	f := newFixture()
	sess, _ := f.patientSession()

	req := f.bookingRequest()
	req.BookingType = "doctor"
	req.ItemID = uuid.NewString()

	_, err := f.bookingService().Create(context.Background(), sess, req)
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestBookingGetByReference_Ownership(t *testing.T) {
	f := newFixture()
	owner, patient := f.patientSession()
	other, _ := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)
	svc := f.bookingService()

	resp, err := svc.GetByReference(context.Background(), owner, b.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, b.ReferenceNumber, resp.ReferenceNumber)

	_, err = svc.GetByReference(context.Background(), other, b.ReferenceNumber)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByReference(context.Background(), staffSession(), b.ReferenceNumber)
	assert.NoError(t, err)

	_, err = svc.GetByReference(context.Background(), owner, "BK-000000-000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingCancel_ByOwner(t *testing.T) {
	f := newFixture()
	sess, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaymentPending)

	resp, err := f.bookingService().Cancel(context.Background(), sess, b.ID.String(), &request.CancelBookingRequest{Reason: "Travelling"})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "Travelling", *resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)
	assert.Equal(t, []NotificationEvent{EventCancelled}, f.notifier.events())
}

func TestBookingCancel_TerminalBooking(t *testing.T) {
	f := newFixture()
	sess, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusCompleted)

	_, err := f.bookingService().Cancel(context.Background(), sess, b.ID.String(), &request.CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.notifier.events())
}
