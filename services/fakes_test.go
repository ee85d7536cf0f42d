package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/models"
	"github.com/alvine998/marketplace-backend/repository"
)

// In-memory repository fakes. They mirror the conditional-update semantics of
// the real Gorm stores so the services' concurrency and rollback behavior can
// be exercised without a database.

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	decErr   error
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	m := make(map[uuid.UUID]*models.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProductRepo{products: m}
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) List(context.Context, repository.ProductFilter, int, int) ([]models.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decErr != nil {
		return f.decErr
	}
	p, ok := f.products[id]
	if !ok || p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (f *fakeProductRepo) stock(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type fakeCartRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID][]models.CartItem // keyed by user
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[uuid.UUID][]models.CartItem)}
}

func (f *fakeCartRepo) seed(userID uuid.UUID, items ...models.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[userID] = append(f.items[userID], items...)
}

func (f *fakeCartRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CartItem(nil), f.items[userID]...), nil
}

func (f *fakeCartRepo) FindByID(_ context.Context, id uuid.UUID) (*models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, items := range f.items {
		for _, it := range items {
			if it.ID == id {
				cp := it
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) AddOrIncrement(_ context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := models.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: qty}
	f.items[userID] = append(f.items[userID], item)
	return &item, nil
}

func (f *fakeCartRepo) UpdateQuantity(context.Context, uuid.UUID, int) error { return nil }

func (f *fakeCartRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeCartRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, userID)
	return nil
}

func (f *fakeCartRepo) count(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[userID])
}

type fakeVoucherRepo struct {
	mu       sync.Mutex
	vouchers map[string]*models.Voucher
}

func newFakeVoucherRepo(vouchers ...*models.Voucher) *fakeVoucherRepo {
	m := make(map[string]*models.Voucher, len(vouchers))
	for _, v := range vouchers {
		m[v.Code] = v
	}
	return &fakeVoucherRepo{vouchers: m}
}

func (f *fakeVoucherRepo) FindByCode(_ context.Context, code string) (*models.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vouchers[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVoucherRepo) FindActiveByCode(ctx context.Context, code string) (*models.Voucher, error) {
	v, err := f.FindByCode(ctx, code)
	if err != nil || !v.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeVoucherRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vouchers {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVoucherRepo) ListAll(context.Context) ([]models.Voucher, error) { return nil, nil }

func (f *fakeVoucherRepo) ListActive(context.Context, time.Time) ([]models.Voucher, error) {
	return nil, nil
}

func (f *fakeVoucherRepo) Create(_ context.Context, v *models.Voucher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vouchers[v.Code] = v
	return nil
}

func (f *fakeVoucherRepo) Update(_ context.Context, v *models.Voucher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vouchers[v.Code] = v
	return nil
}

func (f *fakeVoucherRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeVoucherRepo) DecrementQuota(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vouchers {
		if v.ID == id {
			if v.Quota <= 0 {
				return repository.ErrQuotaExhausted
			}
			v.Quota--
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeVoucherRepo) quota(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vouchers[code].Quota
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	notifs    []models.PaymentNotification
	createErr error
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	m := make(map[uuid.UUID]*models.Order, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeOrderRepo{orders: m}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) TransitionFromPending(_ context.Context, id uuid.UUID, status models.OrderStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != models.OrderStatusPending {
		return false, nil
	}
	o.Status = status
	switch status {
	case models.OrderStatusCompleted:
		o.CompletedAt = &at
	case models.OrderStatusCancelled:
		o.CancelledAt = &at
	}
	return true, nil
}

func (f *fakeOrderRepo) SetPaymentSession(_ context.Context, id uuid.UUID, token, redirectURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.PaymentToken = token
	o.PaymentURL = redirectURL
	return nil
}

func (f *fakeOrderRepo) RecordNotification(_ context.Context, n *models.PaymentNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifs = append(f.notifs, *n)
	return nil
}

func (f *fakeOrderRepo) status(id uuid.UUID) models.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Status
}

func (f *fakeOrderRepo) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	m := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

// fakeUnitOfWork runs the callback against a fixed bundle. Transactions are
// serialized; on error the mutable stores are restored from deep copies taken
// before the callback, mimicking rollback under serializable isolation.
type fakeUnitOfWork struct {
	txMu     sync.Mutex
	repos    *repository.Repositories
	products *fakeProductRepo
	vouchers *fakeVoucherRepo
	orders   *fakeOrderRepo
	carts    *fakeCartRepo
}

func newFakeUnitOfWork(products *fakeProductRepo, carts *fakeCartRepo, vouchers *fakeVoucherRepo, orders *fakeOrderRepo) *fakeUnitOfWork {
	return &fakeUnitOfWork{
		repos: &repository.Repositories{
			Users:    newFakeUserRepo(),
			Products: products,
			Carts:    carts,
			Vouchers: vouchers,
			Orders:   orders,
		},
		products: products,
		vouchers: vouchers,
		orders:   orders,
		carts:    carts,
	}
}

func (f *fakeUnitOfWork) Do(_ context.Context, fn func(r *repository.Repositories) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	productSnap := snapshotProducts(f.products)
	voucherSnap := snapshotVouchers(f.vouchers)
	orderSnap := snapshotOrders(f.orders)
	cartSnap := snapshotCarts(f.carts)

	if err := fn(f.repos); err != nil {
		restoreProducts(f.products, productSnap)
		restoreVouchers(f.vouchers, voucherSnap)
		restoreOrders(f.orders, orderSnap)
		restoreCarts(f.carts, cartSnap)
		return err
	}
	return nil
}

func snapshotProducts(f *fakeProductRepo) map[uuid.UUID]models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[uuid.UUID]models.Product, len(f.products))
	for id, p := range f.products {
		snap[id] = *p
	}
	return snap
}

func restoreProducts(f *fakeProductRepo, snap map[uuid.UUID]models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = make(map[uuid.UUID]*models.Product, len(snap))
	for id, p := range snap {
		cp := p
		f.products[id] = &cp
	}
}

func snapshotVouchers(f *fakeVoucherRepo) map[string]models.Voucher {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]models.Voucher, len(f.vouchers))
	for code, v := range f.vouchers {
		snap[code] = *v
	}
	return snap
}

func restoreVouchers(f *fakeVoucherRepo, snap map[string]models.Voucher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vouchers = make(map[string]*models.Voucher, len(snap))
	for code, v := range snap {
		cp := v
		f.vouchers[code] = &cp
	}
}

func snapshotOrders(f *fakeOrderRepo) map[uuid.UUID]models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[uuid.UUID]models.Order, len(f.orders))
	for id, o := range f.orders {
		snap[id] = *o
	}
	return snap
}

func restoreOrders(f *fakeOrderRepo, snap map[uuid.UUID]models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = make(map[uuid.UUID]*models.Order, len(snap))
	for id, o := range snap {
		cp := o
		f.orders[id] = &cp
	}
}

func snapshotCarts(f *fakeCartRepo) map[uuid.UUID][]models.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[uuid.UUID][]models.CartItem, len(f.items))
	for id, items := range f.items {
		snap[id] = append([]models.CartItem(nil), items...)
	}
	return snap
}

func restoreCarts(f *fakeCartRepo, snap map[uuid.UUID][]models.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[uuid.UUID][]models.CartItem, len(snap))
	for id, items := range snap {
		f.items[id] = append([]models.CartItem(nil), items...)
	}
}

// fakeProducer records published events.
type fakeProducer struct {
	mu       sync.Mutex
	messages [][]byte
}

func (f *fakeProducer) Publish(_ context.Context, _, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, value)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// fakeProcessor is a scriptable payment gateway.
type fakeProcessor struct {
	session    *PaymentSession
	sessionErr error
	notif      *ProcessorNotification
	verifyErr  error
}

func (f *fakeProcessor) CreateTransaction(string, int64, CustomerDetails) (*PaymentSession, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeProcessor) VerifyNotification(context.Context, string) (*ProcessorNotification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.notif, nil
}
