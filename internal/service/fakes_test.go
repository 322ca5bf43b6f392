package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/storage"
)

// memStore is an in-memory stand-in for the postgres store. WithinTx snapshots
// rentals and returns and restores them when fn fails.
type memStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	users    map[string]domain.User
	rentals  map[int64]domain.Rental
	returns  map[int64]domain.Return
	notes    []domain.Notification
	nextID   int64
	inTx     bool
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]domain.Product{},
		users:    map[string]domain.User{},
		rentals:  map[int64]domain.Rental{},
		returns:  map[int64]domain.Return{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.inTx {
		m.mu.Unlock()
		return fn(ctx)
	}
	rentals := make(map[int64]domain.Rental, len(m.rentals))
	for k, v := range m.rentals {
		rentals[k] = v
	}
	returns := make(map[int64]domain.Return, len(m.returns))
	for k, v := range m.returns {
		returns[k] = v
	}
	m.inTx = true
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inTx = false
	if err != nil {
		m.rentals = rentals
		m.returns = returns
	}
	return err
}

func (m *memStore) rentalRepo() *memRentals { return &memRentals{m} }
func (m *memStore) returnRepo() *memReturns { return &memReturns{m} }
func (m *memStore) productRepo() *memProducts { return &memProducts{m} }
func (m *memStore) userRepo() *memUsers { return &memUsers{m} }
func (m *memStore) notificationRepo() *memNotes { return &memNotes{m} }
func (m *memStore) addProduct(p domain.Product) { m.products[p.ID] = p }
func (m *memStore) addUser(u domain.User) { m.users[u.ID] = u }

func (m *memStore) rental(id int64) domain.Rental {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rentals[id]
}

func (m *memStore) returnRow(id int64) domain.Return {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.returns[id]
}

func (m *memStore) notesFor(userID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) populateRental(rt domain.Rental) domain.Rental {
	if p, ok := m.products[rt.ProductID]; ok {
		rt.Product = &p
	}
	return rt
}

func (m *memStore) populateReturn(ret domain.Return) domain.Return {
	if ret.DeliveryPartnerID != nil {
		partner := *ret.DeliveryPartnerID
		ret.DeliveryPartnerID = &partner
	}
	if ret.Inspection != nil {
		insp := *ret.Inspection
		ret.Inspection = &insp
	}
	rt := m.populateRental(m.rentals[ret.RentalID])
	ret.Rental = &rt
	ret.Product = rt.Product
	if u, ok := m.users[ret.UserID]; ok {
		ret.Customer = &u
	}
	return ret
}

type memProducts struct{ *memStore }

func (r *memProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NotFound("product not found")
	}
	return &p, nil
}

type memUsers struct{ *memStore }

func (r *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &u, nil
}

type memRentals struct{ *memStore }

func (r *memRentals) Create(ctx context.Context, rt *domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt.ID = r.id()
	rt.Version = 1
	rt.CreatedAt = time.Now()
	rt.UpdatedAt = rt.CreatedAt
	stored := *rt
	stored.Product = nil
	r.rentals[rt.ID] = stored
	return nil
}

func (r *memRentals) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.rentals[id]
	if !ok {
		return nil, domain.NotFound("rental not found")
	}
	rt = r.populateRental(rt)
	return &rt, nil
}

func (r *memRentals) GetByRentalID(ctx context.Context, rentalID string) (*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.rentals {
		if rt.RentalID == rentalID {
			rt = r.populateRental(rt)
			return &rt, nil
		}
	}
	return nil, domain.NotFound("rental not found")
}

func (r *memRentals) ListByUser(ctx context.Context, userID string, view domain.RentalView) ([]domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := map[domain.RentalStatus]bool{}
	for _, s := range view.Statuses() {
		allowed[s] = true
	}
	out := []domain.Rental{}
	for _, rt := range r.rentals {
		if rt.UserID == userID && (len(allowed) == 0 || allowed[rt.Status]) {
			out = append(out, r.populateRental(rt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRentals) UpdateStatus(ctx context.Context, rt *domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rentals[rt.ID]
	if !ok || stored.Version != rt.Version {
		return domain.Conflict("rental %s was modified concurrently", rt.RentalID)
	}
	stored.Status = rt.Status
	stored.Version++
	r.rentals[rt.ID] = stored
	rt.Version = stored.Version
	return nil
}

func (r *memRentals) ListActiveEndingOn(ctx context.Context, day time.Time) ([]domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Rental{}
	for _, rt := range r.rentals {
		if rt.Status == domain.RentalStatusActive && rt.EndDate.Equal(day) {
			out = append(out, r.populateRental(rt))
		}
	}
	return out, nil
}

type memReturns struct{ *memStore }

func (r *memReturns) Create(ctx context.Context, ret *domain.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.returns {
		if existing.RentalID == ret.RentalID {
			return domain.Conflict("return already scheduled for this rental")
		}
	}
	ret.ID = r.id()
	ret.Version = 1
	ret.CreatedAt = time.Now()
	ret.UpdatedAt = ret.CreatedAt
	stored := *ret
	stored.Rental, stored.Product, stored.Customer = nil, nil, nil
	r.returns[ret.ID] = stored
	return nil
}

func (r *memReturns) find(match func(domain.Return) bool) (*domain.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ret := range r.returns {
		if match(ret) {
			ret = r.populateReturn(ret)
			return &ret, nil
		}
	}
	return nil, domain.NotFound("return not found")
}

func (r *memReturns) GetByReturnID(ctx context.Context, returnID string) (*domain.Return, error) {
	return r.find(func(ret domain.Return) bool { return ret.ReturnID == returnID })
}

func (r *memReturns) GetByRentalID(ctx context.Context, rentalID int64) (*domain.Return, error) {
	return r.find(func(ret domain.Return) bool { return ret.RentalID == rentalID })
}

func (r *memReturns) Update(ctx context.Context, ret *domain.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.returns[ret.ID]
	if !ok || stored.Version != ret.Version {
		return domain.Conflict("return %s was modified concurrently", ret.ReturnID)
	}
	stored.Status = ret.Status
	if ret.Inspection != nil {
		insp := *ret.Inspection
		stored.Inspection = &insp
	}
	stored.Version++
	stored.UpdatedAt = time.Now()
	r.returns[ret.ID] = stored
	ret.Version = stored.Version
	return nil
}

func (r *memReturns) Assign(ctx context.Context, returnID, partnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ret := range r.returns {
		if ret.ReturnID != returnID {
			continue
		}
		if ret.DeliveryPartnerID == nil {
			ret.DeliveryPartnerID = &partnerID
			ret.Version++
			r.returns[id] = ret
			return nil
		}
		if *ret.DeliveryPartnerID == partnerID {
			return nil
		}
		return domain.Conflict("return already assigned to another delivery partner")
	}
	return domain.NotFound("return not found")
}

func (r *memReturns) list(match func(domain.Return) bool) []domain.Return {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Return{}
	for _, ret := range r.returns {
		if match(ret) {
			out = append(out, r.populateReturn(ret))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memReturns) ListByUser(ctx context.Context, userID string) ([]domain.Return, error) {
	return r.list(func(ret domain.Return) bool { return ret.UserID == userID }), nil
}

func (r *memReturns) ListPending(ctx context.Context, partnerID string) ([]domain.Return, error) {
	return r.list(func(ret domain.Return) bool {
		return ret.Status == domain.ReturnStatusScheduled &&
			(ret.DeliveryPartnerID == nil || *ret.DeliveryPartnerID == partnerID)
	}), nil
}

func (r *memReturns) ListCompletedByPartner(ctx context.Context, partnerID string) ([]domain.Return, error) {
	return r.list(func(ret domain.Return) bool {
		return ret.DeliveryPartnerID != nil && *ret.DeliveryPartnerID == partnerID &&
			ret.Status != domain.ReturnStatusScheduled
	}), nil
}

func (r *memReturns) ListScheduledOn(ctx context.Context, day time.Time) ([]domain.Return, error) {
	return r.list(func(ret domain.Return) bool {
		return ret.Status == domain.ReturnStatusScheduled && ret.PickupDate.Equal(day)
	}), nil
}

type memNotes struct{ *memStore }

func (r *memNotes) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.id()
	n.CreatedAt = time.Now()
	r.notes = append(r.notes, *n)
	return nil
}

func (r *memNotes) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	notes := r.notesFor(userID)
	total := int32(len(notes))
	if offset >= total {
		return []domain.Notification{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return notes[offset:end], total, nil
}

func (r *memNotes) MarkAsRead(ctx context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id && r.notes[i].UserID == userID {
			r.notes[i].IsRead = true
			return nil
		}
	}
	return domain.NotFound("notification not found")
}

// fakeUploader records uploads and returns deterministic URLs.
type fakeUploader struct {
	mu      sync.Mutex
	folders []string
}

func (u *fakeUploader) UploadImage(ctx context.Context, folder string, img storage.Image) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.folders = append(u.folders, folder)
	return "https://cdn.example.com/" + folder + "/" + img.Filename, nil
}

type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) UploadImage(ctx context.Context, folder string, img storage.Image) (string, error) {
	args := m.Called(ctx, folder, img)
	return args.String(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendEmail(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	args := m.Called(ctx, to, toName, subject, plainText, htmlContent)
	return args.Error(0)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
