package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/gateway"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	testKeySecret     = "rzp_secret"
	testWebhookSecret = "whk_secret"
)

// fakeBookingRepo keeps bookings in memory and honours the version check the
// way the SQL update does.
type fakeBookingRepo struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*entity.Booking
	createErrs []error
	creates    int
	updates    int
	updateErr  error
	// beforeUpdate runs under the lock ahead of the version check and may
	// mutate the stored row to simulate a concurrent writer.
	beforeUpdate func(stored *entity.Booking)
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[uuid.UUID]*entity.Booking)}
}

func clone(b *entity.Booking) *entity.Booking {
	c := *b
	return &c
}

func (r *fakeBookingRepo) put(b *entity.Booking) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	r.byID[b.ID] = clone(b)
	return clone(b)
}

func (r *fakeBookingRepo) get(id uuid.UUID) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.byID[id]; ok {
		return clone(b)
	}
	return nil
}

func (r *fakeBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range r.byID {
		if existing.ReferenceNumber == b.ReferenceNumber {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now()
	b.Version = 1
	b.CreatedAt, b.UpdatedAt = now, now
	r.byID[b.ID] = clone(b)
	return nil
}

func (r *fakeBookingRepo) find(match func(*entity.Booking) bool) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.byID {
		if match(b) {
			return clone(b)
		}
	}
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.get(id), nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, ref string) (*entity.Booking, error) {
	return r.find(func(b *entity.Booking) bool { return b.ReferenceNumber == ref }), nil
}

func (r *fakeBookingRepo) FindByOrderID(_ context.Context, orderID string) (*entity.Booking, error) {
	return r.find(func(b *entity.Booking) bool { return b.OrderID != nil && *b.OrderID == orderID }), nil
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, _ uuid.UUID, _, _ int) ([]*entity.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) CountByUserID(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected int, status entity.BookingStatus, f repository.StatusFields) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return nil, err
	}
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook(b)
	}
	if b.Version != expected {
		return nil, repository.ErrVersionConflict
	}

	r.updates++
	b.Status = status
	applyFields(b, f)
	b.Version++
	b.UpdatedAt = time.Now()
	return clone(b), nil
}

func applyFields(b *entity.Booking, f repository.StatusFields) {
	if f.PaymentStatus != nil {
		b.PaymentStatus = *f.PaymentStatus
	}
	if f.PaymentID != nil {
		b.PaymentID = f.PaymentID
	}
	if f.OrderID != nil {
		b.OrderID = f.OrderID
	}
	if f.AppointmentDate != nil {
		b.AppointmentDate = *f.AppointmentDate
	}
	if f.AppointmentTime != nil {
		b.AppointmentTime = *f.AppointmentTime
	}
	if f.Notes != nil {
		b.Notes = *f.Notes
	}
	if f.ApprovedBy != nil {
		b.ApprovedBy = f.ApprovedBy
	}
	if f.ApprovedAt != nil {
		b.ApprovedAt = f.ApprovedAt
	}
	if f.RejectedBy != nil {
		b.RejectedBy = f.RejectedBy
	}
	if f.RejectedAt != nil {
		b.RejectedAt = f.RejectedAt
	}
	if f.RejectionReason != nil {
		b.RejectionReason = f.RejectionReason
	}
	if f.RescheduledBy != nil {
		b.RescheduledBy = f.RescheduledBy
	}
	if f.RescheduleReason != nil {
		b.RescheduleReason = f.RescheduleReason
	}
	if f.CompletedAt != nil {
		b.CompletedAt = f.CompletedAt
	}
	if f.CancelledAt != nil {
		b.CancelledAt = f.CancelledAt
	}
	if f.CancellationReason != nil {
		b.CancellationReason = f.CancellationReason
	}
	if f.PaymentFailureReason != nil {
		b.PaymentFailureReason = f.PaymentFailureReason
	}
}

func (r *fakeBookingRepo) FindPending(_ context.Context, filter repository.PendingFilter) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.byID {
		if b.PaymentStatus != entity.PaymentStatusCompleted {
			continue
		}
		if b.Status != entity.BookingStatusPaid && b.Status != entity.BookingStatusPaymentPending {
			continue
		}
		if filter.BookingType != "" && b.BookingType != filter.BookingType {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out, nil
}

func (r *fakeBookingRepo) ListStatusTypes(_ context.Context) ([]repository.StatusType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repository.StatusType, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, repository.StatusType{Status: b.Status, BookingType: b.BookingType})
	}
	return out, nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients []*entity.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, p *entity.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients = append(r.patients, p)
	return nil
}

func (r *fakePatientRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.UserID != nil && *p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakePatientRepo) Update(_ context.Context, p *entity.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.patients {
		if existing.ID == p.ID {
			c := *p
			r.patients[i] = &c
			return nil
		}
	}
	return errors.New("patient not found")
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*entity.Payment
}

func (r *fakePaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) FindByBookingID(_ context.Context, id uuid.UUID) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.payments {
		if p.BookingID == id {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	mu        sync.Mutex
	rows      []*entity.OutboxMessage
	insertErr error
}

func (r *fakeOutboxRepo) InsertBatch(_ context.Context, msgs []*entity.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows = append(r.rows, msgs...)
	return nil
}

func (r *fakeOutboxRepo) ClaimDue(context.Context, int, time.Duration) ([]*entity.OutboxMessage, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkDelivered(context.Context, uuid.UUID) error { return nil }

func (r *fakeOutboxRepo) MarkFailed(context.Context, uuid.UUID, int, string, time.Time, bool) error {
	return nil
}

func (r *fakeOutboxRepo) ListDead(_ context.Context, limit, offset int) ([]*entity.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dead []*entity.OutboxMessage
	for _, m := range r.rows {
		if m.Status == entity.OutboxStatusDead {
			dead = append(dead, m)
		}
	}
	if offset >= len(dead) {
		return nil, nil
	}
	end := offset + limit
	if end > len(dead) {
		end = len(dead)
	}
	return dead[offset:end], nil
}

func (r *fakeOutboxRepo) channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.rows {
		out = append(out, m.Channel)
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions == nil {
		r.sessions = make(map[uuid.UUID]*entity.Session)
	}
	r.sessions[s.Token] = s
	return nil
}

func (r *fakeSessionRepo) FindActive(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, token uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	s.RevokedAt = &now
	return true, nil
}

type fakeStaffRepo struct {
	staff map[uuid.UUID]*entity.Staff
}

func (r *fakeStaffRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Staff, error) {
	return r.staff[userID], nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*entity.Doctor
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *entity.Doctor) error {
	if r.doctors == nil {
		r.doctors = make(map[uuid.UUID]*entity.Doctor)
	}
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Doctor, error) {
	return r.doctors[id], nil
}

func (r *fakeDoctorRepo) FindAvailable(context.Context, string, int, int) ([]*entity.Doctor, error) {
	var out []*entity.Doctor
	for _, d := range r.doctors {
		if d.IsAvailable {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDoctorRepo) CountAvailable(ctx context.Context, specialization string) (int64, error) {
	out, _ := r.FindAvailable(ctx, specialization, 0, 0)
	return int64(len(out)), nil
}

type fakeTestRepo struct {
	tests map[string]*entity.LabTest
}

func (r *fakeTestRepo) Upsert(_ context.Context, t *entity.LabTest) (bool, error) {
	if r.tests == nil {
		r.tests = make(map[string]*entity.LabTest)
	}
	_, exists := r.tests[t.Code]
	r.tests[t.Code] = t
	return !exists, nil
}

func (r *fakeTestRepo) FindByCode(_ context.Context, code string) (*entity.LabTest, error) {
	return r.tests[code], nil
}

func (r *fakeTestRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.LabTest, error) {
	for _, t := range r.tests {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTestRepo) FindActive(context.Context, string, int, int) ([]*entity.LabTest, error) {
	var out []*entity.LabTest
	for _, t := range r.tests {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTestRepo) CountActive(ctx context.Context, category string) (int64, error) {
	out, _ := r.FindActive(ctx, category, 0, 0)
	return int64(len(out)), nil
}

type fakeGateway struct {
	mu     sync.Mutex
	orders []gateway.OrderRequest
	err    error
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.orders = append(g.orders, req)
	return &gateway.Order{ID: "order_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

type fakeGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
	// forgetCtxErr is the context error observed by the last Forget.
	forgetCtxErr error
	forgets      int
}

func (g *fakeGuard) MarkOnce(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

func (g *fakeGuard) Forget(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forgets++
	g.forgetCtxErr = ctx.Err()
	delete(g.seen, key)
	return nil
}

type notifyCall struct {
	event NotificationEvent
	ref   string
	extra map[string]string
}

// recordingNotifier stands in for the outbox-backed notifier.
type recordingNotifier struct {
	mu     sync.Mutex
	calls  []notifyCall
	result bool
}

func (n *recordingNotifier) Notify(_ context.Context, event NotificationEvent, b *entity.Booking, extra map[string]string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{event: event, ref: b.ReferenceNumber, extra: extra})
	return n.result
}

func (n *recordingNotifier) ListDeadLetters(context.Context, *utils.Session, request.PaginatedRequest) (*response.PaginatedResponse[response.OutboxMessageResponse], error) {
	return nil, nil
}

func (n *recordingNotifier) events() []NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationEvent, 0, len(n.calls))
	for _, c := range n.calls {
		out = append(out, c.event)
	}
	return out
}

type fixture struct {
	repo     *repository.Repository
	bookings *fakeBookingRepo
	patients *fakePatientRepo
	payments *fakePaymentRepo
	outbox   *fakeOutboxRepo
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	staff    *fakeStaffRepo
	doctors  *fakeDoctorRepo
	tests    *fakeTestRepo
	gateway  *fakeGateway
	guard    *fakeGuard
	notifier *recordingNotifier
	config   *utils.Config
	log      *zap.Logger
}

func newFixture() *fixture {
	f := &fixture{
		bookings: newFakeBookingRepo(),
		patients: &fakePatientRepo{},
		payments: &fakePaymentRepo{},
		outbox:   &fakeOutboxRepo{},
		users:    &fakeUserRepo{},
		sessions: &fakeSessionRepo{},
		staff:    &fakeStaffRepo{staff: map[uuid.UUID]*entity.Staff{}},
		doctors:  &fakeDoctorRepo{},
		tests:    &fakeTestRepo{},
		gateway:  &fakeGateway{},
		guard:    &fakeGuard{},
		notifier: &recordingNotifier{result: true},
		log:      zap.NewNop(),
		config: &utils.Config{
			JWT:      utils.JWTConfig{Secret: "jwt-secret", ExpiryHours: 24},
			Razorpay: utils.RazorpayConfig{KeySecret: testKeySecret, WebhookSecret: testWebhookSecret, CompanyName: "Care Diagnostics"},
			Staff:    utils.StaffConfig{EmailDomain: "clinic.example"},
		},
	}
	f.repo = &repository.Repository{
		User:    f.users,
		Session: f.sessions,
		Patient: f.patients,
		Staff:   f.staff,
		Test:    f.tests,
		Doctor:  f.doctors,
		Booking: f.bookings,
		Payment: f.payments,
		Outbox:  f.outbox,
	}
	return f
}

func (f *fixture) bookingService() *bookingService {
	return NewBookingService(f.repo, f.notifier, nil, f.log).(*bookingService)
}

func (f *fixture) paymentService() PaymentService {
	return NewPaymentService(f.repo, f.config, f.gateway, f.guard, f.notifier, nil, f.log)
}

func (f *fixture) staffService() StaffService {
	return NewStaffService(f.repo, f.notifier, nil, f.log)
}

// patientSession registers a patient profile for a fresh user.
func (f *fixture) patientSession() (*utils.Session, *entity.Patient) {
	userID := uuid.New()
	patient := &entity.Patient{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		UserID:       &userID,
		FullName:     "Asha Rao",
		Mobile:       "9876543210",
		Email:        "asha@example.com",
	}
	_ = f.patients.Create(context.Background(), patient)
	return &utils.Session{UserID: userID, Email: patient.Email, Role: entity.RolePatient, SessionID: uuid.NewString()}, patient
}

func staffSession() *utils.Session {
	return &utils.Session{UserID: uuid.New(), Email: "desk@clinic.example", Role: entity.RoleStaff, SessionID: uuid.NewString()}
}

func adminSession() *utils.Session {
	return &utils.Session{UserID: uuid.New(), Email: "admin@clinic.example", Role: entity.RoleAdmin, SessionID: uuid.NewString()}
}

// seedBooking stores a booking in status with a settled payment when the
// status implies one.
func (f *fixture) seedBooking(patient *entity.Patient, status entity.BookingStatus) *entity.Booking {
	b := &entity.Booking{
		ReferenceNumber: utils.GenerateReference("BK"),
		BookingType:     entity.BookingTypeTest,
		PatientName:     "Asha Rao",
		PatientMobile:   "9876543210",
		PatientEmail:    "asha@example.com",
		ItemName:        "CBC",
		AppointmentDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:30",
		TotalAmount:     1000,
		PaymentStatus:   entity.PaymentStatusPending,
		Status:          status,
	}
	if patient != nil {
		b.PatientID = &patient.ID
	}
	switch status {
	case entity.BookingStatusPaid, entity.BookingStatusApproved, entity.BookingStatusRejected,
		entity.BookingStatusRescheduled, entity.BookingStatusCompleted:
		b.PaymentStatus = entity.PaymentStatusCompleted
		pid := "pay_seed"
		b.PaymentID = &pid
	case entity.BookingStatusPaymentFailed:
		b.PaymentStatus = entity.PaymentStatusFailed
	}
	return f.bookings.put(b)
}

func callbackSignature(orderID, paymentID string) string {
	return gateway.Sign([]byte(orderID+"|"+paymentID), testKeySecret)
}
