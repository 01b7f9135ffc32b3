package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/notify"
	"foodtruck-market/internal/payment"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memStore backs every fake repository with plain maps
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	sessions  map[uuid.UUID]*entity.Session
	listings  map[uuid.UUID]*entity.Listing
	required  map[uuid.UUID][]*entity.RequiredDocument
	bookings  map[uuid.UUID]*entity.BookingRequest
	documents map[uuid.UUID]*entity.BookingDocument
	claims    map[uuid.UUID]memClaim

	historyQueries atomic.Int32
	createErr      error
	transitionErr  map[uuid.UUID]error

	// beforeTransition runs ahead of the conditional write, letting a test
	// move the row underneath the caller
	beforeTransition func(id uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*entity.User{},
		sessions:      map[uuid.UUID]*entity.Session{},
		listings:      map[uuid.UUID]*entity.Listing{},
		required:      map[uuid.UUID][]*entity.RequiredDocument{},
		bookings:      map[uuid.UUID]*entity.BookingRequest{},
		documents:     map[uuid.UUID]*entity.BookingDocument{},
		claims:        map[uuid.UUID]memClaim{},
		transitionErr: map[uuid.UUID]error{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:             memUsers{m},
		Session:          memSessions{m},
		Listing:          memListings{m},
		RequiredDocument: memRequired{m},
		Booking:          memBookings{m},
		BookingDocument:  memDocuments{m},
	}
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) booking(id uuid.UUID) entity.BookingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memStore) claimed(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.claims[id]
	return ok
}

// ---- users ----

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *u
	r.m.users[u.ID] = &cp
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ---- sessions ----

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, s *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *s
	r.m.sessions[s.Token] = &cp
	return nil
}

func (r memSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[id]
	if !ok || s.RevokedAt != nil || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	cp := *s
	if u, ok := r.m.users[s.UserID]; ok {
		cp.Role = u.Role
	}
	return &cp, nil
}

func (r memSessions) Revoke(_ context.Context, token string) error {
	id, err := uuid.Parse(token)
	if err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.sessions[id]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r memSessions) CleanExpiredSessions(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for k, s := range r.m.sessions {
		if time.Now().After(s.ExpiresAt) {
			delete(r.m.sessions, k)
			n++
		}
	}
	return n, nil
}

// ---- listings ----

type memListings struct{ m *memStore }

func (r memListings) Create(_ context.Context, l *entity.Listing) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *l
	r.m.listings[l.ID] = &cp
	return nil
}

func (r memListings) FindByID(_ context.Context, id uuid.UUID) (*entity.Listing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if l, ok := r.m.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r memListings) FindAll(_ context.Context, category *entity.ListingCategory, limit, offset int) ([]*entity.Listing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Listing
	for _, l := range r.m.listings {
		if l.IsActive && (category == nil || l.Category == *category) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r memListings) CountAll(ctx context.Context, category *entity.ListingCategory) (int64, error) {
	all, _ := r.FindAll(ctx, category, 1<<30, 0)
	return int64(len(all)), nil
}

// ---- required documents ----

type memRequired struct{ m *memStore }

func (r memRequired) FindByListingID(_ context.Context, listingID uuid.UUID) ([]*entity.RequiredDocument, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]*entity.RequiredDocument(nil), r.m.required[listingID]...), nil
}

func (r memRequired) ReplaceForListing(_ context.Context, listingID uuid.UUID, docs []*entity.RequiredDocument) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.required[listingID] = append([]*entity.RequiredDocument(nil), docs...)
	return nil
}

// ---- bookings ----

type memBookings struct{ m *memStore }

func (r memBookings) Create(_ context.Context, b *entity.BookingRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.createErr != nil {
		return r.m.createErr
	}
	cp := *b
	r.m.bookings[b.ID] = &cp
	return nil
}

func (r memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.BookingRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if b, ok := r.m.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r memBookings) filter(keep func(*entity.BookingRequest) bool) []*entity.BookingRequest {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.BookingRequest
	for _, b := range r.m.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func page(in []*entity.BookingRequest, limit, offset int) []*entity.BookingRequest {
	if offset >= len(in) {
		return nil
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

func (r memBookings) FindByRenterID(_ context.Context, renterID uuid.UUID, limit, offset int) ([]*entity.BookingRequest, error) {
	return page(r.filter(func(b *entity.BookingRequest) bool { return b.RenterID == renterID }), limit, offset), nil
}

func (r memBookings) CountByRenterID(_ context.Context, renterID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(b *entity.BookingRequest) bool { return b.RenterID == renterID }))), nil
}

func hostFilter(hostID uuid.UUID, status *entity.BookingStatus) func(*entity.BookingRequest) bool {
	return func(b *entity.BookingRequest) bool {
		return b.HostID == hostID && (status == nil || b.Status == *status)
	}
}

func (r memBookings) FindByHostID(_ context.Context, hostID uuid.UUID, status *entity.BookingStatus, limit, offset int) ([]*entity.BookingRequest, error) {
	return page(r.filter(hostFilter(hostID, status)), limit, offset), nil
}

func (r memBookings) CountByHostID(_ context.Context, hostID uuid.UUID, status *entity.BookingStatus) (int64, error) {
	return int64(len(r.filter(hostFilter(hostID, status)))), nil
}

func (r memBookings) FindExpiredHolds(_ context.Context, now time.Time, limit int) ([]*entity.BookingRequest, error) {
	out := r.filter(func(b *entity.BookingRequest) bool {
		c, claimed := r.m.claims[b.ID]
		return b.IsHeld() && b.HoldExpiresAt != nil && b.HoldExpiresAt.Before(now) &&
			(!claimed || c.until.Before(now))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memBookings) TransitionFromHeld(_ context.Context, id uuid.UUID, t entity.BookingTransition) (bool, error) {
	if hook := r.m.beforeTransition; hook != nil {
		hook(id)
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.transitionErr[id]; err != nil {
		return false, err
	}
	b, ok := r.m.bookings[id]
	if !ok || !b.IsHeld() {
		return false, nil
	}
	applyTransition(b, t)
	delete(r.m.claims, id)
	return true, nil
}

type memClaim struct {
	token uuid.UUID
	until time.Time
}

func (r memBookings) Claim(_ context.Context, id, token uuid.UUID, until, now time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok || !b.IsHeld() {
		return false, nil
	}
	if c, ok := r.m.claims[id]; ok && !c.until.Before(now) {
		return false, nil
	}
	r.m.claims[id] = memClaim{token: token, until: until}
	return true, nil
}

func (r memBookings) ReleaseClaim(_ context.Context, id, token uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c, ok := r.m.claims[id]; ok && c.token == token {
		delete(r.m.claims, id)
	}
	return nil
}

// ---- booking documents ----

type memDocuments struct{ m *memStore }

func (r memDocuments) Upsert(_ context.Context, doc *entity.BookingDocument) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range r.m.documents {
		if sameSlot(d, doc) {
			if d.Status == entity.DocumentStatusApproved {
				return false, nil
			}
			doc.ID = d.ID
			doc.CreatedAt = d.CreatedAt
			break
		}
	}
	cp := *doc
	r.m.documents[doc.ID] = &cp
	return true, nil
}

// sameSlot mirrors the two unique keys: (booking, type) and, for drafts,
// (listing, renter, type)
func sameSlot(a, b *entity.BookingDocument) bool {
	if a.DocumentType != b.DocumentType || a.IsDraft() != b.IsDraft() {
		return false
	}
	if a.IsDraft() {
		return a.ListingID == b.ListingID && a.RenterID == b.RenterID
	}
	return *a.BookingID == *b.BookingID
}

func (r memDocuments) FindByID(_ context.Context, id uuid.UUID) (*entity.BookingDocument, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if d, ok := r.m.documents[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r memDocuments) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.BookingDocument, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.BookingDocument
	for _, d := range r.m.documents {
		if d.BookingID != nil && *d.BookingID == bookingID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentType < out[j].DocumentType })
	return out, nil
}

func (r memDocuments) FindDrafts(_ context.Context, listingID, renterID uuid.UUID) ([]*entity.BookingDocument, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.BookingDocument
	for _, d := range r.m.documents {
		if d.IsDraft() && d.ListingID == listingID && d.RenterID == renterID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentType < out[j].DocumentType })
	return out, nil
}

func (r memDocuments) AdoptDrafts(_ context.Context, listingID, renterID, bookingID uuid.UUID, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, d := range r.m.documents {
		if d.IsDraft() && d.ListingID == listingID && d.RenterID == renterID {
			id := bookingID
			d.BookingID = &id
			d.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r memDocuments) Review(_ context.Context, id uuid.UUID, status entity.DocumentStatus, reviewerID uuid.UUID, reviewedAt time.Time, reason *string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.documents[id]
	if !ok || d.Status != entity.DocumentStatusPending {
		return false, nil
	}
	d.Status = status
	d.ReviewerID = &reviewerID
	d.ReviewedAt = &reviewedAt
	d.RejectionReason = reason
	d.UpdatedAt = reviewedAt
	return true, nil
}

func (r memDocuments) typesWhere(renterID uuid.UUID, types []string, keep func(*entity.BookingDocument) bool) []string {
	r.m.historyQueries.Add(1)
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []string
	for _, d := range r.m.documents {
		if d.RenterID == renterID && want[d.DocumentType] && keep(d) {
			out = append(out, d.DocumentType)
		}
	}
	return out
}

func (r memDocuments) FindApprovedTypes(_ context.Context, renterID uuid.UUID, types []string, since time.Time) ([]string, error) {
	return r.typesWhere(renterID, types, func(d *entity.BookingDocument) bool {
		return d.Status == entity.DocumentStatusApproved && d.ReviewedAt != nil && !d.ReviewedAt.Before(since)
	}), nil
}

func (r memDocuments) FindPendingTypes(_ context.Context, listingID, renterID uuid.UUID, types []string, since time.Time) ([]string, error) {
	return r.typesWhere(renterID, types, func(d *entity.BookingDocument) bool {
		return d.IsDraft() && d.ListingID == listingID &&
			d.Status == entity.DocumentStatusPending && !d.UpdatedAt.Before(since)
	}), nil
}

// ---- payment ----

// fakeAuthorizer keeps provider-side hold state per reference, so capturing a
// released hold reports already_released the way a real provider would.
type fakeAuthorizer struct {
	mu        sync.Mutex
	holds     map[string]payment.Result
	authErr   error
	opErr     map[uuid.UUID]error
	panicOn   map[uuid.UUID]bool
	delay     time.Duration
	delayFor  map[uuid.UUID]time.Duration
	authorize atomic.Int32
	captures  atomic.Int32
	releases  atomic.Int32

	// onCall runs once the provider has accepted a capture or release and
	// before it answers
	onCall func(bookingID uuid.UUID)
}

func newFakeAuthorizer() *fakeAuthorizer {
	return &fakeAuthorizer{
		holds:    map[string]payment.Result{},
		opErr:    map[uuid.UUID]error{},
		panicOn:  map[uuid.UUID]bool{},
		delayFor: map[uuid.UUID]time.Duration{},
	}
}

func (f *fakeAuthorizer) Authorize(_ context.Context, req payment.HoldRequest) (*payment.Hold, error) {
	f.authorize.Add(1)
	if f.authErr != nil {
		return nil, f.authErr
	}
	ref := "pi_" + req.BookingID.String()
	f.mu.Lock()
	f.holds[ref] = ""
	f.mu.Unlock()
	return &payment.Hold{Reference: ref, Status: "requires_capture"}, nil
}

func (f *fakeAuthorizer) wait(ctx context.Context, bookingID uuid.UUID) error {
	delay := f.delay
	if d, ok := f.delayFor[bookingID]; ok {
		delay = d
	}
	if delay == 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAuthorizer) resolve(ctx context.Context, bookingID uuid.UUID, ref string, to, already, other payment.Result) (payment.Result, error) {
	if f.panicOn[bookingID] {
		panic("provider client blew up")
	}
	if err := f.wait(ctx, bookingID); err != nil {
		return "", err
	}
	if err := f.opErr[bookingID]; err != nil {
		return "", err
	}
	if hook := f.onCall; hook != nil {
		hook(bookingID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.holds[ref] {
	case payment.ResultCaptured:
		if to == payment.ResultCaptured {
			return already, nil
		}
		return other, nil
	case payment.ResultReleased:
		if to == payment.ResultReleased {
			return already, nil
		}
		return other, nil
	}
	f.holds[ref] = to
	return to, nil
}

func (f *fakeAuthorizer) Capture(ctx context.Context, bookingID uuid.UUID, ref string) (payment.Result, error) {
	f.captures.Add(1)
	return f.resolve(ctx, bookingID, ref, payment.ResultCaptured, payment.ResultAlreadyCaptured, payment.ResultAlreadyReleased)
}

func (f *fakeAuthorizer) Release(ctx context.Context, bookingID uuid.UUID, ref string) (payment.Result, error) {
	f.releases.Add(1)
	return f.resolve(ctx, bookingID, ref, payment.ResultReleased, payment.ResultAlreadyReleased, payment.ResultAlreadyCaptured)
}

func (f *fakeAuthorizer) markReleased(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[ref] = payment.ResultReleased
}

// markCaptured simulates a capture that reached the provider but never got written locally
func (f *fakeAuthorizer) markCaptured(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[ref] = payment.ResultCaptured
}

// ---- notifications ----

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Send(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) types() []notify.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Type, len(r.sent))
	for i, n := range r.sent {
		out[i] = n.Type
	}
	return out
}

func (r *recordingNotifier) to(recipient uuid.UUID) []notify.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Type
	for _, n := range r.sent {
		if n.RecipientID == recipient {
			out = append(out, n.Type)
		}
	}
	return out
}

// ---- storage ----

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (u *fakeUploader) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys = append(u.keys, key)
	return "http://files.test/booking-documents/" + key, nil
}

// ---- fixture ----

var errProvider = errors.New("provider unavailable")

type fixture struct {
	t          *testing.T
	now        time.Time
	store      *memStore
	repo       *repository.Repository
	authorizer *fakeAuthorizer
	notifier   *recordingNotifier
	uploader   *fakeUploader
	config     *utils.Config
	gate       *DocumentGate
	bookings   *bookingService
	documents  *documentService
	sweeper    *Sweeper
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:          t,
		now:        time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		store:      newMemStore(),
		authorizer: newFakeAuthorizer(),
		notifier:   &recordingNotifier{},
		uploader:   &fakeUploader{},
		config: &utils.Config{
			Booking: utils.BookingConfig{
				HoldWindow:     6 * 24 * time.Hour,
				PaymentTimeout: time.Second,
				OnFileWindow:   365 * 24 * time.Hour,
			},
			Sweeper: utils.SweeperConfig{
				BatchSize:      50,
				Concurrency:    4,
				BookingTimeout: 2 * time.Second,
			},
		},
	}
	f.repo = f.store.repository()

	log := zap.NewNop()
	f.gate = NewDocumentGate(f.repo, f.config.Booking.OnFileWindow, log)
	f.gate.now = f.clock
	f.bookings = newBookingService(f.repo, f.gate, f.authorizer, f.notifier, nil, f.config.Booking, log)
	f.bookings.now = f.clock
	f.documents = NewDocumentService(f.repo, f.uploader, f.notifier, nil, log).(*documentService)
	f.documents.now = f.clock
	f.sweeper = NewSweeper(f.repo, f.authorizer, f.notifier, nil, f.config, log)
	f.sweeper.now = f.clock

	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) addUser(role entity.UserRole) uuid.UUID {
	id := uuid.New()
	f.store.users[id] = &entity.User{
		Base:     entity.Base{ID: id, CreatedAt: f.now, UpdatedAt: f.now},
		Username: fmt.Sprintf("%s-%s", role, id.String()[:8]),
		Email:    id.String()[:8] + "@example.com",
		Role:     role,
		IsActive: true,
	}
	return id
}

type listingOpt func(*entity.Listing)

func instantBook(l *entity.Listing) { l.InstantBook = true }

func weekly(rate float64) listingOpt {
	return func(l *entity.Listing) { l.WeeklyRate = &rate }
}

func (f *fixture) addListing(hostID uuid.UUID, daily float64, opts ...listingOpt) uuid.UUID {
	l := &entity.Listing{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: f.now, UpdatedAt: f.now},
		HostID:       hostID,
		Title:        "Taco truck " + uuid.NewString()[:6],
		Category:     entity.CategoryFoodTruck,
		City:         "Austin",
		DailyRate:    daily,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(l)
	}
	f.store.listings[l.ID] = l
	return l.ID
}

func (f *fixture) require(listingID uuid.UUID, docType string, phase entity.DeadlinePhase) {
	f.store.required[listingID] = append(f.store.required[listingID], &entity.RequiredDocument{
		BaseSimple:    entity.BaseSimple{ID: uuid.New(), CreatedAt: f.now},
		ListingID:     listingID,
		DocumentType:  docType,
		DeadlinePhase: phase,
	})
}

// addApprovedDocument files an approved document on an unrelated past booking
func (f *fixture) addApprovedDocument(renterID uuid.UUID, docType string, reviewedAt time.Time) {
	id := uuid.New()
	reviewer := uuid.New()
	pastBooking := uuid.New()
	f.store.documents[id] = &entity.BookingDocument{
		BaseNoDelete: entity.BaseNoDelete{ID: id, CreatedAt: reviewedAt, UpdatedAt: reviewedAt},
		ListingID:    uuid.New(),
		BookingID:    &pastBooking,
		RenterID:     renterID,
		DocumentType: docType,
		FileURL:      "http://files.test/" + docType,
		Status:       entity.DocumentStatusApproved,
		ReviewedAt:   &reviewedAt,
		ReviewerID:   &reviewer,
	}
}

// addHeldBooking stores a pending/held booking with an open hold at the provider
func (f *fixture) addHeldBooking(listingID, renterID uuid.UUID, expiresAt time.Time) *entity.BookingRequest {
	listing := f.store.listings[listingID]
	held := entity.HoldStatusHeld
	id := uuid.New()
	ref := "pi_" + id.String()
	b := &entity.BookingRequest{
		BaseNoDelete:    entity.BaseNoDelete{ID: id, CreatedAt: f.now, UpdatedAt: f.now},
		ListingID:       listingID,
		RenterID:        renterID,
		HostID:          listing.HostID,
		StartDate:       truncateDay(f.now).AddDate(0, 0, 10),
		EndDate:         truncateDay(f.now).AddDate(0, 0, 12),
		TotalPrice:      3 * listing.DailyRate,
		Status:          entity.BookingStatusPending,
		HoldStatus:      &held,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		PaymentIntentID: &ref,
		HoldExpiresAt:   &expiresAt,
	}
	f.store.bookings[id] = b
	f.authorizer.holds[ref] = ""
	cp := *b
	return &cp
}

func dateStr(t time.Time) string { return t.Format(utils.DateLayout) }

func strPtr(s string) *string { return &s }
