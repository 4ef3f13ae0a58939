package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/stocklens/catalog-api/internal/models"
)

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

// fakeTaxonomyStore is an in-memory TaxonomyStore with the same
// uniqueness behavior as the Postgres schema: unique names, unique
// codes, sequence-backed numbering.
type fakeTaxonomyStore struct {
	mu      sync.Mutex
	byName  map[models.TaxonomyKind]map[string]*models.TaxonomyEntry
	next    map[models.TaxonomyKind]int64
	// conflictsToInject makes the next n Creates fail with a unique
	// violation without inserting, simulating lost races. When set,
	// onConflict runs under the lock as the violation fires, so a test
	// can plant the racing winner's row.
	conflictsToInject int
	onConflict        func()
}

func newFakeTaxonomyStore() *fakeTaxonomyStore {
	return &fakeTaxonomyStore{
		byName: map[models.TaxonomyKind]map[string]*models.TaxonomyEntry{
			models.KindCategory:    {},
			models.KindBrand:       {},
			models.KindProductLine: {},
		},
		next: map[models.TaxonomyKind]int64{},
	}
}

func (f *fakeTaxonomyStore) GetByName(_ context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byName[kind][name]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTaxonomyStore) GetByCode(_ context.Context, kind models.TaxonomyKind, code string) (*models.TaxonomyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byName[kind] {
		if e.Code == code {
			copied := *e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTaxonomyStore) NextNumber(_ context.Context, kind models.TaxonomyKind) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next[kind]++
	return f.next[kind], nil
}

func (f *fakeTaxonomyStore) Create(_ context.Context, e *models.TaxonomyEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictsToInject > 0 {
		f.conflictsToInject--
		if f.onConflict != nil {
			f.onConflict()
		}
		return uniqueViolation()
	}
	if _, exists := f.byName[e.Kind][e.Name]; exists {
		return uniqueViolation()
	}
	for _, other := range f.byName[e.Kind] {
		if other.Code == e.Code {
			return uniqueViolation()
		}
	}
	e.CreatedAt = time.Now()
	copied := *e
	f.byName[e.Kind][e.Name] = &copied
	return nil
}

func (f *fakeTaxonomyStore) List(_ context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TaxonomyEntry
	for _, e := range f.byName[kind] {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeTaxonomyStore) SearchByName(_ context.Context, kind models.TaxonomyKind, query string) ([]models.TaxonomyEntry, error) {
	return f.List(context.Background(), kind)
}

func (f *fakeTaxonomyStore) UpdateName(_ context.Context, kind models.TaxonomyKind, code, name string) (*models.TaxonomyEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byName[kind][name]; taken {
		return nil, uniqueViolation()
	}
	for oldName, e := range f.byName[kind] {
		if e.Code == code {
			delete(f.byName[kind], oldName)
			e.Name = name
			f.byName[kind][name] = e
			copied := *e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

// fakeDraftStore is an in-memory DraftStore mirroring the (product,
// employee) unique pair: an upsert for an existing pair mutates the
// stored row and keeps its id.
type fakeDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*models.Draft
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: map[string]*models.Draft{}}
}

func (f *fakeDraftStore) Upsert(_ context.Context, d *models.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.drafts {
		if existing.ProductID == d.ProductID && existing.EmployeeID == d.EmployeeID {
			existing.Data = d.Data
			existing.SaveType = d.SaveType
			existing.LastSaved = time.Now()
			*d = *existing
			return nil
		}
	}
	d.LastSaved = time.Now()
	copied := *d
	f.drafts[d.ID] = &copied
	return nil
}

func (f *fakeDraftStore) GetByID(_ context.Context, id string) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.drafts[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDraftStore) GetByKey(_ context.Context, productID, employeeID string) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.drafts {
		if d.ProductID == productID && d.EmployeeID == employeeID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeDraftStore) UpdateByID(_ context.Context, id string, data models.DraftData, saveType models.SaveType) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d.Data = data
	d.SaveType = saveType
	d.LastSaved = time.Now()
	copied := *d
	return &copied, nil
}

func (f *fakeDraftStore) Delete(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drafts[id]; !ok {
		return 0, nil
	}
	delete(f.drafts, id)
	return 1, nil
}

func (f *fakeDraftStore) ListByEmployee(_ context.Context, employeeID string, saveType models.SaveType) ([]models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Draft
	for _, d := range f.drafts {
		if d.EmployeeID != employeeID {
			continue
		}
		if saveType != "" && d.SaveType != saveType {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDraftStore) ListPending(_ context.Context) ([]models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Draft
	for _, d := range f.drafts {
		if d.SaveType == models.SaveTypeSubmitted && !d.IsPublished {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDraftStore) DeleteStaleAuto(_ context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, d := range f.drafts {
		if d.SaveType == models.SaveTypeAuto && d.LastSaved.Before(olderThan) {
			delete(f.drafts, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeDraftStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.drafts)
}

// fakeProductStore is an in-memory ProductStore keyed by barcode for
// live rows. writes counts every mutating call so tests can assert a
// failed approval touched nothing.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]*models.Product // by barcode, live rows only
	writes   int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]*models.Product{}}
}

func (f *fakeProductStore) add(p *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	copied := *p
	f.products[p.Barcode] = &copied
}

func (f *fakeProductStore) get(barcode string) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[barcode]; ok {
		copied := *p
		return &copied
	}
	return nil
}

func (f *fakeProductStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeProductStore) GetByProductID(_ context.Context, productID string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ProductID == productID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProductStore) GetByBarcode(_ context.Context, barcode string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[barcode]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProductStore) SetReviewStatusByProductID(_ context.Context, productID string, status models.ReviewStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ProductID == productID {
			p.ReviewStatus = status
			f.writes++
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeProductStore) SetReviewStatusByBarcode(_ context.Context, barcode string, status models.ReviewStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[barcode]; ok {
		p.ReviewStatus = status
		f.writes++
		return 1, nil
	}
	return 0, nil
}

func (f *fakeProductStore) UpsertByBarcode(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if existing, ok := f.products[p.Barcode]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = uuid.New().String()
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	copied := *p
	f.products[p.Barcode] = &copied
	return nil
}

// fakeFeatureStore records whole-list replacements per product.
type fakeFeatureStore struct {
	mu       sync.Mutex
	features map[string][]string
	writes   int
}

func newFakeFeatureStore() *fakeFeatureStore {
	return &fakeFeatureStore{features: map[string][]string{}}
}

func (f *fakeFeatureStore) Replace(_ context.Context, productID string, features []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.features[productID] = append([]string(nil), features...)
	return nil
}

// fakeSpecStore records whole-map replacements per product.
type fakeSpecStore struct {
	mu     sync.Mutex
	specs  map[string]models.SpecMap
	writes int
}

func newFakeSpecStore() *fakeSpecStore {
	return &fakeSpecStore{specs: map[string]models.SpecMap{}}
}

func (f *fakeSpecStore) Replace(_ context.Context, productID string, spec models.SpecMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	copied := models.SpecMap{}
	for k, v := range spec {
		copied[k] = v
	}
	f.specs[productID] = copied
	return nil
}

// fakeNotificationStore is an in-memory NotificationStore.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.Timestamp = time.Now()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationStore) DeleteMatching(_ context.Context, relatedID, senderID, notifType string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Notification
	var removed int64
	for _, n := range f.notifications {
		if n.RelatedID == relatedID && n.SenderID == senderID && n.Type == notifType {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return removed, nil
}

func (f *fakeNotificationStore) ListByType(_ context.Context, notifType string) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].Type == notifType {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = true
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications)
}

// fakeUserStore is an in-memory UserStore with unique emails.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) ListPending(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if !u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return uniqueViolation()
		}
	}
	u.CreatedAt = time.Now()
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserStore) SetActive(_ context.Context, id string, active bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return 0, nil
	}
	u.IsActive = active
	return 1, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return 0, nil
	}
	delete(f.users, id)
	return 1, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}
