package usecase

import (
	"context"
	"testing"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffApprove_OneNotificationPerApproval(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)
	staff := staffSession()

	resp, err := f.staffService().Approve(context.Background(), staff, b.ID.String(), &request.ApproveBookingRequest{Notes: "Fasting sample"})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusApproved, resp.Status)
	assert.Equal(t, "Fasting sample", resp.Notes)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Equal(t, b.Version+1, resp.Version)

	stored := f.bookings.get(b.ID)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, staff.UserID, *stored.ApprovedBy)

	assert.Equal(t, []NotificationEvent{EventApproved}, f.notifier.events())
}

func TestStaffApprove_PersistsWhenNotificationFails(t *testing.T) {
	f := newFixture()
	f.notifier.result = false
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)

	resp, err := f.staffService().Approve(context.Background(), staffSession(), b.ID.String(), &request.ApproveBookingRequest{})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusApproved, resp.Status)
	assert.Equal(t, entity.BookingStatusApproved, f.bookings.get(b.ID).Status)
	assert.Len(t, f.notifier.events(), 1)
}

func TestStaffApprove_VersionConflict(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)

	// another reviewer approves between our read and write
	f.bookings.beforeUpdate = func(stored *entity.Booking) {
		stored.Status = entity.BookingStatusApproved
		stored.Version++
	}

	_, err := f.staffService().Approve(context.Background(), staffSession(), b.ID.String(), &request.ApproveBookingRequest{})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Empty(t, f.notifier.events())
}

func TestStaffApprove_NeedsSettledPayment(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaymentPending)

	_, err := f.staffService().Approve(context.Background(), staffSession(), b.ID.String(), &request.ApproveBookingRequest{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, f.bookings.updates)
}

func TestStaffApprove_RejectedBookingCannotBeApproved(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusRejected)

	_, err := f.staffService().Approve(context.Background(), staffSession(), b.ID.String(), &request.ApproveBookingRequest{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "cannot transition booking from Rejected to Approved")
	assert.Equal(t, entity.BookingStatusRejected, f.bookings.get(b.ID).Status)
}

func TestStaffActions_RequireStaffRole(t *testing.T) {
	f := newFixture()
	patientSess, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)
	svc := f.staffService()

	_, err := svc.Approve(context.Background(), patientSess, b.ID.String(), &request.ApproveBookingRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Approve(context.Background(), nil, b.ID.String(), &request.ApproveBookingRequest{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.GetStats(context.Background(), patientSess)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Approve(context.Background(), adminSession(), b.ID.String(), &request.ApproveBookingRequest{})
	assert.NoError(t, err)
}

func TestStaffReject_ScenarioC(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)

	resp, err := f.staffService().Reject(context.Background(), staffSession(), b.ID.String(), &request.RejectBookingRequest{Reason: "Out of service area"})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusRejected, resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "Out of service area", *resp.RejectionReason)

	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, EventRejected, f.notifier.calls[0].event)
	assert.Equal(t, "Out of service area", f.notifier.calls[0].extra["reason"])
}

func TestStaffReject_BlankReason(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)

	_, err := f.staffService().Reject(context.Background(), staffSession(), b.ID.String(), &request.RejectBookingRequest{Reason: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, entity.BookingStatusPaid, f.bookings.get(b.ID).Status)
}

func TestStaffReschedule_ScenarioD(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)
	svc := f.staffService()

	resp, err := svc.Reschedule(context.Background(), staffSession(), b.ID.String(), &request.RescheduleBookingRequest{
		NewDate: "2026-11-20",
		NewTime: "16:15",
		Reason:  "Phlebotomist unavailable",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusRescheduled, resp.Status)
	assert.Equal(t, "2026-11-20", resp.AppointmentDate)
	assert.Equal(t, "16:15", resp.AppointmentTime)

	stored := f.bookings.get(b.ID)
	assert.Equal(t, time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), stored.AppointmentDate)
	assert.Equal(t, "16:15", stored.AppointmentTime)

	// a second reschedule of the same booking is allowed
	resp, err = svc.Reschedule(context.Background(), staffSession(), b.ID.String(), &request.RescheduleBookingRequest{
		NewDate: "2026-11-22",
		NewTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-11-22", resp.AppointmentDate)
	assert.Equal(t, []NotificationEvent{EventRescheduled, EventRescheduled}, f.notifier.events())
}

func TestStaffReschedule_InvalidTime(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaid)

	_, err := f.staffService().Reschedule(context.Background(), staffSession(), b.ID.String(), &request.RescheduleBookingRequest{
		NewDate: "2026-11-20",
		NewTime: "4pm",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStaffComplete(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	paid := f.seedBooking(patient, entity.BookingStatusPaid)
	approved := f.seedBooking(patient, entity.BookingStatusApproved)
	svc := f.staffService()

	_, err := svc.Complete(context.Background(), staffSession(), paid.ID.String())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resp, err := svc.Complete(context.Background(), staffSession(), approved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCompleted, resp.Status)
	assert.NotNil(t, resp.CompletedAt)
}

func TestStaffCancel_UnpaidBooking(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	b := f.seedBooking(patient, entity.BookingStatusPaymentPending)

	resp, err := f.staffService().Cancel(context.Background(), staffSession(), b.ID.String(), &request.CancelBookingRequest{Reason: "Duplicate"})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)
}

func TestStaffPendingQueue(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()
	paid := f.seedBooking(patient, entity.BookingStatusPaid)
	f.seedBooking(patient, entity.BookingStatusPaymentPending)
	f.seedBooking(patient, entity.BookingStatusApproved)

	queue, err := f.staffService().GetPendingBookings(context.Background(), staffSession(), &request.PendingBookingsQuery{})
	require.NoError(t, err)

	require.Len(t, queue, 1)
	assert.Equal(t, paid.ReferenceNumber, queue[0].ReferenceNumber)
}

func TestStaffStats_ScenarioE(t *testing.T) {
	f := newFixture()
	_, patient := f.patientSession()

	seed := func(status entity.BookingStatus, kind entity.BookingType) {
		b := f.seedBooking(patient, status)
		b.BookingType = kind
		f.bookings.put(b)
	}
	seed(entity.BookingStatusPaymentPending, entity.BookingTypeTest)
	seed(entity.BookingStatusPaymentPending, entity.BookingTypeDoctor)
	seed(entity.BookingStatusPaid, entity.BookingTypeMedicine)
	for i := 0; i < 4; i++ {
		seed(entity.BookingStatusApproved, entity.BookingTypeTest)
	}
	seed(entity.BookingStatusRejected, entity.BookingTypeDoctor)
	seed(entity.BookingStatusRejected, entity.BookingTypeTest)
	seed(entity.BookingStatusCompleted, entity.BookingTypeDoctor)

	stats, err := f.staffService().GetStats(context.Background(), staffSession())
	require.NoError(t, err)

	assert.Equal(t, response.StatsResponse{
		Total:    10,
		Pending:  3,
		Approved: 4,
		Rejected: 2,
		Tests:    6,
		Doctors:  3,
		Medicine: 1,
	}, *stats)
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, response.StatsResponse{}, computeStats(nil))
	assert.Equal(t, 1, computeStats([]repository.StatusType{{Status: entity.BookingStatusCancelled}}).Total)
}
