package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fleet/internal/domain"
	"fleet/internal/mq"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// MOCK STORE
// ──────────────────────────────────────────────

// MockStore is an in-memory record store shared by every mock repository.
// All conditional writes run under one mutex so they are atomic, like the
// single-statement writes of the PostgreSQL repositories.
// Transactions run one at a time and a failing one is rolled back to the
// snapshot taken when it began.
type MockStore struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	users    map[string]*domain.User
	trips    map[string]*domain.Trip
	drivers  map[string]*domain.Driver
	dealers  map[string]*domain.Dealer
	bookings map[string]*domain.Booking
	payments map[string]*domain.Payment
	payouts  map[string]*domain.Payout

	Users    *MockUserRepository
	Trips    *MockTripRepository
	Drivers  *MockDriverRepository
	Dealers  *MockDealerRepository
	Bookings *MockBookingRepository
	Payments *MockPaymentRepository
	Payouts  *MockPayoutRepository

	// Counters for verification
	WithinTxCallCount int32
	RollbackCount     int32

	// Error injection
	TxError error
}

// NewMockStore creates an empty store.
func NewMockStore() *MockStore {
	s := &MockStore{
		users:    make(map[string]*domain.User),
		trips:    make(map[string]*domain.Trip),
		drivers:  make(map[string]*domain.Driver),
		dealers:  make(map[string]*domain.Dealer),
		bookings: make(map[string]*domain.Booking),
		payments: make(map[string]*domain.Payment),
		payouts:  make(map[string]*domain.Payout),
	}
	s.Users = &MockUserRepository{s: s}
	s.Trips = &MockTripRepository{s: s}
	s.Drivers = &MockDriverRepository{s: s}
	s.Dealers = &MockDealerRepository{s: s}
	s.Bookings = &MockBookingRepository{s: s}
	s.Payments = &MockPaymentRepository{s: s}
	s.Payouts = &MockPayoutRepository{s: s}
	return s
}

// Repositories bundles the mock repositories.
func (s *MockStore) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:    s.Users,
		Trips:    s.Trips,
		Drivers:  s.Drivers,
		Dealers:  s.Dealers,
		Bookings: s.Bookings,
		Payments: s.Payments,
		Payouts:  s.Payouts,
	}
}

func (s *MockStore) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	atomic.AddInt32(&s.WithinTxCallCount, 1)
	if s.TxError != nil {
		return s.TxError
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Repositories()); err != nil {
		s.restore(snap)
		atomic.AddInt32(&s.RollbackCount, 1)
		return err
	}
	return nil
}

type storeSnapshot struct {
	users    map[string]*domain.User
	trips    map[string]*domain.Trip
	drivers  map[string]*domain.Driver
	dealers  map[string]*domain.Dealer
	bookings map[string]*domain.Booking
	payments map[string]*domain.Payment
	payouts  map[string]*domain.Payout
}

func (s *MockStore) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return storeSnapshot{
		users:    cloneRecords(s.users),
		trips:    cloneRecords(s.trips),
		drivers:  cloneRecords(s.drivers),
		dealers:  cloneRecords(s.dealers),
		bookings: cloneRecords(s.bookings),
		payments: cloneRecords(s.payments),
		payouts:  cloneRecords(s.payouts),
	}
}

func (s *MockStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.trips = snap.trips
	s.drivers = snap.drivers
	s.dealers = snap.dealers
	s.bookings = snap.bookings
	s.payments = snap.payments
	s.payouts = snap.payouts
}

func cloneRecords[T any](records map[string]*T) map[string]*T {
	out := make(map[string]*T, len(records))
	for id, r := range records {
		c := *r
		out[id] = &c
	}
	return out
}

// AddUser seeds a user.
func (s *MockStore) AddUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

// AddTrip seeds a trip.
func (s *MockStore) AddTrip(t *domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	s.trips[t.ID] = &c
}

// AddDriver seeds a driver.
func (s *MockStore) AddDriver(d *domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *d
	s.drivers[d.ID] = &c
}

// AddDealer seeds a dealer.
func (s *MockStore) AddDealer(d *domain.Dealer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *d
	s.dealers[d.ID] = &c
}

// AddBooking seeds a booking.
func (s *MockStore) AddBooking(b *domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	s.bookings[b.ID] = &c
}

// AddPayout seeds a payout.
func (s *MockStore) AddPayout(p *domain.Payout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.payouts[p.ID] = &c
}

// Booking returns a copy of a booking for assertions, nil if absent.
func (s *MockStore) Booking(id string) *domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil
	}
	c := *b
	return &c
}

// Driver returns a copy of a driver for assertions, nil if absent.
func (s *MockStore) Driver(id string) *domain.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil
	}
	c := *d
	return &c
}

// Dealer returns a copy of a dealer for assertions, nil if absent.
func (s *MockStore) Dealer(id string) *domain.Dealer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dealers[id]
	if !ok {
		return nil
	}
	c := *d
	return &c
}

// PayoutsForBooking returns copies of every payout referencing bookingID.
func (s *MockStore) PayoutsForBooking(bookingID string) []*domain.Payout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Payout
	for _, p := range s.payouts {
		if p.BookingID == bookingID {
			c := *p
			result = append(result, &c)
		}
	}
	return result
}

// CountPayments returns the number of stored payments.
func (s *MockStore) CountPayments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	s *MockStore

	CreateCallCount int32
	CreateError     error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	c := *user
	m.s.users[user.ID] = &c
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, u := range m.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.s.users))
	for _, u := range m.s.users {
		c := *u
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID) })
	return result, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.users), nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	s *MockStore

	CreateCallCount int32
	CreateError     error
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := *trip
	m.s.trips[trip.ID] = &c
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	t, ok := m.s.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (m *MockTripRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Trip, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.s.trips {
		if t.UserID == userID {
			c := *t
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID) })
	return capped(result, limit), nil
}

func (m *MockTripRepository) UpdateStatus(ctx context.Context, id, userID string, status domain.TripStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.trips[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	t.Status = status
	return nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	s *MockStore

	CreateCallCount      int32
	AddEarningsCallCount int32
	AddPayoutsCallCount  int32

	CreateError      error
	AddEarningsError error
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := *driver
	m.s.drivers[driver.ID] = &c
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	d, ok := m.s.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (m *MockDriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, d := range m.s.drivers {
		if d.UserID == userID {
			c := *d
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) List(ctx context.Context, filter repository.DriverFilter) ([]*domain.Driver, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []*domain.Driver
	for _, d := range m.s.drivers {
		if filter.DealerID != "" && d.DealerID != filter.DealerID {
			continue
		}
		if filter.VehicleType != "" && d.VehicleType != filter.VehicleType {
			continue
		}
		if filter.ActiveOnly && !d.IsActive {
			continue
		}
		c := *d
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID) })
	return capped(result, filter.Limit), nil
}

func (m *MockDriverRepository) AddEarnings(ctx context.Context, id string, delta float64) error {
	atomic.AddInt32(&m.AddEarningsCallCount, 1)
	if m.AddEarningsError != nil {
		return m.AddEarningsError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.TotalEarnings += delta
	return nil
}

func (m *MockDriverRepository) AddPayouts(ctx context.Context, id string, delta float64) error {
	atomic.AddInt32(&m.AddPayoutsCallCount, 1)
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.TotalPayouts += delta
	return nil
}

// ──────────────────────────────────────────────
// MOCK DEALER REPOSITORY
// ──────────────────────────────────────────────

// MockDealerRepository is a mock implementation of DealerRepository.
type MockDealerRepository struct {
	s *MockStore

	CreateCallCount int32
	CreateError     error
}

func (m *MockDealerRepository) Create(ctx context.Context, dealer *domain.Dealer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := *dealer
	m.s.dealers[dealer.ID] = &c
	return nil
}

func (m *MockDealerRepository) GetByID(ctx context.Context, id string) (*domain.Dealer, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	d, ok := m.s.dealers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (m *MockDealerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Dealer, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, d := range m.s.dealers {
		if d.UserID == userID {
			c := *d
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDealerRepository) AddEarnings(ctx context.Context, id string, delta float64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.dealers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.TotalEarnings += delta
	return nil
}

func (m *MockDealerRepository) AddPayouts(ctx context.Context, id string, delta float64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.dealers[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.TotalPayouts += delta
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	s *MockStore

	// Counters for verification
	CreateCallCount int32
	CASCallCount    int32
	CASWinCount     int32

	// Error injection
	CreateError error
	CASError    error
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := *booking
	m.s.bookings[booking.ID] = &c
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	b, ok := m.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *MockBookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.s.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.DriverID != "" && b.DriverID != filter.DriverID {
			continue
		}
		if filter.DealerID != "" && b.DealerID != filter.DealerID {
			continue
		}
		c := *b
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID) })
	return capped(result, filter.Limit), nil
}

func (m *MockBookingRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.BookingStatus, assign *domain.Assignment) (bool, error) {
	atomic.AddInt32(&m.CASCallCount, 1)
	if m.CASError != nil {
		return false, m.CASError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	if assign != nil {
		b.DriverID = assign.DriverID
		b.DealerID = assign.DealerID
	}
	atomic.AddInt32(&m.CASWinCount, 1)
	return true, nil
}

func (m *MockBookingRepository) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = status
	return nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	s *MockStore

	CreateCallCount int32
	CreateError     error
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := *payment
	m.s.payments[payment.ID] = &c
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	p, ok := m.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *MockPaymentRepository) List(ctx context.Context, filter repository.PaymentFilter) ([]*domain.Payment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.s.payments {
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		c := *p
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID) })
	return capped(result, filter.Limit), nil
}

// ──────────────────────────────────────────────
// MOCK PAYOUT REPOSITORY
// ──────────────────────────────────────────────

// MockPayoutRepository is a mock implementation of PayoutRepository.
// CreateIfAbsent enforces one payout per booking like the unique index.
type MockPayoutRepository struct {
	s *MockStore

	CreateCallCount int32
	CreateError     error
}

func (m *MockPayoutRepository) CreateIfAbsent(ctx context.Context, payout *domain.Payout) (bool, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return false, m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.payouts {
		if p.BookingID == payout.BookingID {
			return false, nil
		}
	}
	c := *payout
	m.s.payouts[payout.ID] = &c
	return true, nil
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	p, ok := m.s.payouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *MockPayoutRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payout, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, p := range m.s.payouts {
		if p.BookingID == bookingID {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPayoutRepository) List(ctx context.Context, filter repository.PayoutFilter) ([]*domain.Payout, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var result []*domain.Payout
	for _, p := range m.s.payouts {
		if filter.DriverID != "" && p.DriverID != filter.DriverID {
			continue
		}
		if filter.DealerID != "" && p.DealerID != filter.DealerID {
			continue
		}
		c := *p
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return newer(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID) })
	return capped(result, filter.Limit), nil
}

func (m *MockPayoutRepository) MarkProcessed(ctx context.Context, id, adminID string, at time.Time) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.payouts[id]
	if !ok || p.Status != domain.PayoutStatusPending {
		return false, nil
	}
	p.Status = domain.PayoutStatusProcessed
	p.AdminID = adminID
	p.ProcessedAt = at
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of redis.Locker.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]string

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]string)}
}

func (m *MockLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	n := atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[key]; held {
		return "", false, nil
	}
	token := fmt.Sprintf("%s#%d", key, n)
	m.locks[key] = token
	return token, true, nil
}

func (m *MockLockStore) Release(ctx context.Context, key, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] != token {
		return ErrMockLockNotHeld
	}
	delete(m.locks, key)
	return nil
}

// IsLocked reports whether key is held (for test assertions).
func (m *MockLockStore) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.locks[key]
	return held
}

// ──────────────────────────────────────────────
// MOCK PSP (Payment Service Provider)
// ──────────────────────────────────────────────

// MockPSP is a mock payment service provider.
type MockPSP struct {
	mu sync.Mutex

	// Control behavior
	ShouldDecline bool
	FailError     error

	// Counters
	ChargeCallCount int32
}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

func (m *MockPSP) Charge(ctx context.Context, amount float64, method domain.PaymentMethod) (service.ChargeResult, error) {
	atomic.AddInt32(&m.ChargeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailError != nil {
		return service.ChargeResult{}, m.FailError
	}
	if m.ShouldDecline {
		return service.ChargeResult{Approved: false}, nil
	}
	return service.ChargeResult{Approved: true, Reference: "mock-ref"}, nil
}

// SetFailure configures the PSP to decline or error.
func (m *MockPSP) SetFailure(decline bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShouldDecline = decline
	m.FailError = err
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []mq.Event

	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event mq.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Types returns the types of published events in order.
func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}

// Count returns how many events of eventType were published.
func (m *MockPublisher) Count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
	ErrMockLockNotHeld  = errors.New("mock: lock not held")
)

// newer orders by creation time descending, then by ID for stability.
func newer(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID < bID
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
