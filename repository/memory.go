package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
	"xportconnect/utils"
)

// NewMemoryRepositories returns in-process repositories with the same
// semantics as the Mongo ones. Used for local development and tests.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Users:    NewMemoryUserRepository(),
		Products: NewMemoryProductRepository(),
		Orders:   NewMemoryOrderRepository(),
		Ping:     func(ctx context.Context) error { return ctx.Err() },
	}
}

// table is an insertion-ordered map guarded by a mutex.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[primitive.ObjectID]T
	keys []primitive.ObjectID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[primitive.ObjectID]T)}
}

func (t *table[T]) put(id primitive.ObjectID, v T) {
	if _, ok := t.rows[id]; !ok {
		t.keys = append(t.keys, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id primitive.ObjectID) {
	delete(t.rows, id)
	for i, k := range t.keys {
		if k == id {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			return
		}
	}
}

func (t *table[T]) scan(match func(T) bool) []T {
	out := []T{}
	for _, k := range t.keys {
		if v := t.rows[k]; match(v) {
			out = append(out, v)
		}
	}
	return out
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	t *table[models.User]
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{t: newTable[models.User]()}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.t.rows {
		if existing.Email == u.Email {
			return fmt.Errorf("email %w", utils.ErrConflict)
		}
	}
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	r.t.put(u.ID, *u)
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	u, ok := r.t.rows[id]
	if !ok {
		return nil, fmt.Errorf("user %w", utils.ErrNotFound)
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	for _, u := range r.t.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %w", utils.ErrNotFound)
}

func (r *MemoryUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set := idSet(ids)
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.scan(func(u models.User) bool { return set[u.ID] }), nil
}

func (r *MemoryUserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.t.scan(func(u models.User) bool { return u.Role == role }), nil
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, up models.ProfileUpdate) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	u, ok := r.t.rows[id]
	if !ok {
		return nil, fmt.Errorf("user %w", utils.ErrNotFound)
	}
	u.Apply(up)
	u.UpdatedAt = time.Now().UTC()
	r.t.put(id, u)
	return &u, nil
}

// MemoryProductRepository is an in-memory ProductRepository.
type MemoryProductRepository struct {
	t *table[models.Product]
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{t: newTable[models.Product]()}
}

func cloneProduct(p models.Product) models.Product {
	if p.Certifications != nil {
		p.Certifications = append([]string(nil), p.Certifications...)
	}
	return p
}

func (r *MemoryProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	r.t.put(p.ID, cloneProduct(*p))
	return nil
}

func (r *MemoryProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	p, ok := r.t.rows[id]
	if !ok {
		return nil, fmt.Errorf("product %s %w", id.Hex(), utils.ErrNotFound)
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *MemoryProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set := idSet(ids)
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.cloneAll(r.t.scan(func(p models.Product) bool { return set[p.ID] })), nil
}

func (r *MemoryProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	return r.cloneAll(r.t.scan(func(p models.Product) bool {
		if f.Exporter != nil && p.Exporter != *f.Exporter {
			return false
		}
		return !f.ActiveOnly || p.IsActive
	})), nil
}

func (r *MemoryProductRepository) cloneAll(ps []models.Product) []models.Product {
	for i := range ps {
		ps[i] = cloneProduct(ps[i])
	}
	return ps
}

func (r *MemoryProductRepository) UpdateOwned(ctx context.Context, id, exporter primitive.ObjectID, up models.ProductUpdate) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	p, ok := r.t.rows[id]
	if !ok || p.Exporter != exporter {
		return nil, fmt.Errorf("product %w or not authorized", utils.ErrNotFound)
	}
	p.Apply(up)
	p.UpdatedAt = time.Now().UTC()
	p = cloneProduct(p)
	r.t.put(id, p)
	out := cloneProduct(p)
	return &out, nil
}

func (r *MemoryProductRepository) DeleteOwned(ctx context.Context, id, exporter primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	p, ok := r.t.rows[id]
	if !ok || p.Exporter != exporter {
		return fmt.Errorf("product %w or not authorized", utils.ErrNotFound)
	}
	r.t.remove(id)
	return nil
}

func (r *MemoryProductRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	p, ok := r.t.rows[id]
	if !ok {
		return fmt.Errorf("product %s %w", id.Hex(), utils.ErrNotFound)
	}
	if p.AvailableQuantity < qty {
		return fmt.Errorf("%w for product %s", utils.ErrInsufficientStock, id.Hex())
	}
	p.AvailableQuantity -= qty
	p.UpdatedAt = time.Now().UTC()
	r.t.put(id, p)
	return nil
}

func (r *MemoryProductRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	p, ok := r.t.rows[id]
	if !ok {
		return nil
	}
	p.AvailableQuantity += qty
	p.UpdatedAt = time.Now().UTC()
	r.t.put(id, p)
	return nil
}

// MemoryOrderRepository is an in-memory OrderRepository.
type MemoryOrderRepository struct {
	t *table[models.Order]
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{t: newTable[models.Order]()}
}

func cloneOrder(o models.Order) models.Order {
	o.Products = append([]models.OrderLine(nil), o.Products...)
	if o.Shipper != nil {
		s := *o.Shipper
		o.Shipper = &s
	}
	if o.TrackingInfo.EstimatedDelivery != nil {
		eta := *o.TrackingInfo.EstimatedDelivery
		o.TrackingInfo.EstimatedDelivery = &eta
	}
	return o
}

func (r *MemoryOrderRepository) Create(ctx context.Context, o *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.Version = 1
	o.CreatedAt, o.UpdatedAt = now, now
	r.t.put(o.ID, cloneOrder(*o))
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	o, ok := r.t.rows[id]
	if !ok {
		return nil, fmt.Errorf("order %w", utils.ErrNotFound)
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	orders := r.t.scan(func(o models.Order) bool {
		if f.Buyer != nil && o.Buyer != *f.Buyer {
			return false
		}
		if f.Exporter != nil && o.Exporter != *f.Exporter {
			return false
		}
		if f.Shipper != nil && !o.AssignedTo(*f.Shipper) {
			return false
		}
		return true
	})
	for i := range orders {
		orders[i] = cloneOrder(orders[i])
	}
	return orders, nil
}

func (r *MemoryOrderRepository) UpdateTracking(ctx context.Context, o *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	stored, ok := r.t.rows[o.ID]
	if !ok {
		return fmt.Errorf("order %w", utils.ErrNotFound)
	}
	if stored.Version != o.Version {
		return fmt.Errorf("%w: order was modified concurrently, reload and retry", utils.ErrConflict)
	}
	now := time.Now().UTC()
	if o.Shipper != nil {
		s := *o.Shipper
		stored.Shipper = &s
	}
	stored.TrackingInfo = o.TrackingInfo
	stored.Version++
	stored.UpdatedAt = now
	r.t.put(o.ID, cloneOrder(stored))

	o.Version = stored.Version
	o.UpdatedAt = now
	return nil
}
