// Package memstore is an in-memory shared.UnitOfWork used by unit tests. It
// serializes transactions with a single mutex and rolls back by snapshotting
// all tables before the callback runs, which is enough to exercise the same
// all-or-nothing semantics the durable store provides.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"tidebook/internal/domain/booking"
	"tidebook/internal/domain/payment"
	"tidebook/internal/domain/slot"
	"tidebook/internal/infra"
	"tidebook/internal/usecase/shared"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.Mutex
	timeSlots map[uuid.UUID]*slot.TimeSlot
	bookings  map[uuid.UUID]*booking.Booking
	holds     map[uuid.UUID]*booking.Hold // keyed by booking id
	payments  map[uuid.UUID]*payment.Payment

	// lastStamp keeps generated created_at values strictly increasing so
	// ordering by created_at is deterministic within one test.
	lastStamp time.Time
}

func (s *Store) nextStamp() time.Time {
	now := time.Now()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return now
}

func New() *Store {
	return &Store{
		timeSlots: make(map[uuid.UUID]*slot.TimeSlot),
		bookings:  make(map[uuid.UUID]*booking.Booking),
		holds:     make(map[uuid.UUID]*booking.Hold),
		payments:  make(map[uuid.UUID]*payment.Payment),
	}
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	tx := &memTx{store: s}
	if err := fn(ctx, tx); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// Seed helpers for test setup; they bypass the transactional surface.

func (s *Store) SeedTimeSlot(ts *slot.TimeSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeSlots[ts.ID] = cloneSlot(ts)
}

func (s *Store) SeedBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = cloneBooking(b)
}

func (s *Store) SeedHold(h *booking.Hold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[h.BookingID] = cloneHold(h)
}

func (s *Store) SeedPayment(p *payment.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = clonePayment(p)
}

func (s *Store) GetTimeSlot(id uuid.UUID) *slot.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts, ok := s.timeSlots[id]; ok {
		return cloneSlot(ts)
	}
	return nil
}

func (s *Store) GetBooking(id uuid.UUID) *booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		return cloneBooking(b)
	}
	return nil
}

func (s *Store) GetHold(bookingID uuid.UUID) *booking.Hold {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.holds[bookingID]; ok {
		return cloneHold(h)
	}
	return nil
}

func (s *Store) GetPayment(id uuid.UUID) *payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payments[id]; ok {
		return clonePayment(p)
	}
	return nil
}

func (s *Store) PaymentsByBooking(bookingID uuid.UUID) []*payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentsByBookingLocked(bookingID)
}

func (s *Store) paymentsByBookingLocked(bookingID uuid.UUID) []*payment.Payment {
	var out []*payment.Payment
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type tables struct {
	timeSlots map[uuid.UUID]*slot.TimeSlot
	bookings  map[uuid.UUID]*booking.Booking
	holds     map[uuid.UUID]*booking.Hold
	payments  map[uuid.UUID]*payment.Payment
}

func (s *Store) snapshot() tables {
	t := tables{
		timeSlots: make(map[uuid.UUID]*slot.TimeSlot, len(s.timeSlots)),
		bookings:  make(map[uuid.UUID]*booking.Booking, len(s.bookings)),
		holds:     make(map[uuid.UUID]*booking.Hold, len(s.holds)),
		payments:  make(map[uuid.UUID]*payment.Payment, len(s.payments)),
	}
	for k, v := range s.timeSlots {
		t.timeSlots[k] = cloneSlot(v)
	}
	for k, v := range s.bookings {
		t.bookings[k] = cloneBooking(v)
	}
	for k, v := range s.holds {
		t.holds[k] = cloneHold(v)
	}
	for k, v := range s.payments {
		t.payments[k] = clonePayment(v)
	}
	return t
}

func (s *Store) restore(t tables) {
	s.timeSlots = t.timeSlots
	s.bookings = t.bookings
	s.holds = t.holds
	s.payments = t.payments
}

type memTx struct {
	store *Store
}

func (t *memTx) TimeSlots() shared.TimeSlotRepository { return (*memTimeSlots)(t) }
func (t *memTx) Bookings() shared.BookingRepository   { return (*memBookings)(t) }
func (t *memTx) Holds() shared.HoldRepository         { return (*memHolds)(t) }
func (t *memTx) Payments() shared.PaymentRepository   { return (*memPayments)(t) }

type memTimeSlots memTx

func (r *memTimeSlots) FindByID(_ context.Context, id uuid.UUID) (*slot.TimeSlot, error) {
	ts, ok := r.store.timeSlots[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "time slot not found")
	}
	return cloneSlot(ts), nil
}

func (r *memTimeSlots) ClaimSeats(_ context.Context, id uuid.UUID, n int) error {
	ts, ok := r.store.timeSlots[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "time slot not found")
	}
	if !ts.IsOpen() || ts.SeatsLeft < n {
		return infra.NewRepoErr(infra.KindInsufficient, "not enough seats left")
	}
	ts.SeatsLeft -= n
	return nil
}

func (r *memTimeSlots) ReleaseSeats(_ context.Context, id uuid.UUID, n int) error {
	ts, ok := r.store.timeSlots[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "time slot not found")
	}
	if ts.SeatsLeft+n > ts.Capacity {
		return infra.NewRepoErr(infra.KindConflict, "release would exceed capacity")
	}
	ts.SeatsLeft += n
	return nil
}

type memBookings memTx

func (r *memBookings) Create(_ context.Context, b *booking.Booking) error {
	if _, exists := r.store.bookings[b.ID]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "booking already exists")
	}
	c := cloneBooking(b)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.store.nextStamp()
	}
	c.UpdatedAt = c.CreatedAt
	r.store.bookings[b.ID] = c
	return nil
}

func (r *memBookings) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return cloneBooking(b), nil
}

func (r *memBookings) UpdateStatus(_ context.Context, id uuid.UUID, from, to booking.Status) (bool, error) {
	b, ok := r.store.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *memBookings) SetDepositClaimed(_ context.Context, id uuid.UUID, claimedAt, verificationExpiresAt time.Time) error {
	b, ok := r.store.bookings[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	c, v := claimedAt, verificationExpiresAt
	b.DepositClaimedAt = &c
	b.VerificationExpiresAt = &v
	return nil
}

func (r *memBookings) ExpiredHeld(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, b := range r.store.bookings {
		if b.Status != booking.StatusHeld {
			continue
		}
		h, ok := r.store.holds[id]
		if !ok || h.ExpiresAt.After(now) {
			continue
		}
		ids = append(ids, id)
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

func (r *memBookings) ExpiredAwaitingVerification(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, b := range r.store.bookings {
		if b.Status != booking.StatusAwaitingVerification {
			continue
		}
		if b.VerificationExpiresAt == nil || b.VerificationExpiresAt.After(now) {
			continue
		}
		ids = append(ids, id)
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

type memHolds memTx

func (r *memHolds) Create(_ context.Context, h *booking.Hold) error {
	c := cloneHold(h)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.store.nextStamp()
	}
	r.store.holds[h.BookingID] = c
	return nil
}

func (r *memHolds) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*booking.Hold, error) {
	h, ok := r.store.holds[bookingID]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "hold not found")
	}
	return cloneHold(h), nil
}

func (r *memHolds) UpdateExpiry(_ context.Context, bookingID uuid.UUID, expiresAt time.Time) error {
	h, ok := r.store.holds[bookingID]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "hold not found")
	}
	h.ExpiresAt = expiresAt
	return nil
}

func (r *memHolds) DeleteByBookingID(_ context.Context, bookingID uuid.UUID) error {
	delete(r.store.holds, bookingID)
	return nil
}

type memPayments memTx

func (r *memPayments) Create(_ context.Context, p *payment.Payment) error {
	if p.IntentID != nil {
		for _, existing := range r.store.payments {
			if existing.IntentID != nil && *existing.IntentID == *p.IntentID {
				return infra.NewRepoErr(infra.KindDuplicateKey, "payment intent already recorded")
			}
		}
	}
	c := clonePayment(p)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.store.nextStamp()
	}
	c.UpdatedAt = c.CreatedAt
	r.store.payments[p.ID] = c
	return nil
}

func (r *memPayments) FindActiveByBookingID(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	for _, p := range latestFirst(r.store, bookingID) {
		if p.Status == payment.StatusInitiated {
			return p, nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "payment not found")
}

func (r *memPayments) FindLatestByBookingID(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	ps := latestFirst(r.store, bookingID)
	if len(ps) == 0 {
		return nil, infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	return ps[0], nil
}

func (r *memPayments) FindByIntentID(_ context.Context, intentID string) (*payment.Payment, error) {
	for _, p := range r.store.payments {
		if p.IntentID != nil && *p.IntentID == intentID {
			return clonePayment(p), nil
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "payment not found")
}

func (r *memPayments) UpdateManualClaim(_ context.Context, id uuid.UUID, payerName, utr string, screenshotURL *string) error {
	p, ok := r.store.payments[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	name, ref := payerName, utr
	p.PayerName = &name
	p.UTR = &ref
	p.ScreenshotURL = screenshotURL
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memPayments) UpdateStatus(_ context.Context, id uuid.UUID, status payment.Status) error {
	p, ok := r.store.payments[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memPayments) SetNote(_ context.Context, id uuid.UUID, note string) error {
	p, ok := r.store.payments[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	n := note
	p.Note = &n
	return nil
}

func (r *memPayments) MarkVerified(_ context.Context, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error {
	p, ok := r.store.payments[id]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "payment not found")
	}
	by, at := verifiedBy, verifiedAt
	p.Status = payment.StatusSucceeded
	p.IsVerified = true
	p.VerifiedBy = &by
	p.VerifiedAt = &at
	p.UpdatedAt = at
	return nil
}

func latestFirst(s *Store, bookingID uuid.UUID) []*payment.Payment {
	ps := s.paymentsByBookingLocked(bookingID)
	for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
		ps[i], ps[j] = ps[j], ps[i]
	}
	return ps
}

func cloneSlot(ts *slot.TimeSlot) *slot.TimeSlot {
	c := *ts
	return &c
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	c := *b
	if b.VerificationExpiresAt != nil {
		v := *b.VerificationExpiresAt
		c.VerificationExpiresAt = &v
	}
	if b.DepositClaimedAt != nil {
		v := *b.DepositClaimedAt
		c.DepositClaimedAt = &v
	}
	return &c
}

func cloneHold(h *booking.Hold) *booking.Hold {
	c := *h
	return &c
}

func clonePayment(p *payment.Payment) *payment.Payment {
	c := *p
	c.IntentID = cloneStr(p.IntentID)
	c.PayerName = cloneStr(p.PayerName)
	c.UTR = cloneStr(p.UTR)
	c.ScreenshotURL = cloneStr(p.ScreenshotURL)
	c.Note = cloneStr(p.Note)
	if p.VerifiedBy != nil {
		v := *p.VerifiedBy
		c.VerifiedBy = &v
	}
	if p.VerifiedAt != nil {
		v := *p.VerifiedAt
		c.VerifiedAt = &v
	}
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
