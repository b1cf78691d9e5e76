package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/skniyajali/PoposRoom-sub013/internal/catalog"
)

// memRepo implements Repository in memory with real table-like state so the
// service semantics (upsert, cascade, status guard) can be exercised without
// a database.
type memRepo struct {
	mu      sync.Mutex
	orders  map[int64]*Order
	lines   map[[2]int64]int
	lineSeq [][2]int64
	addons  map[[2]int64]struct{}
	charges map[[2]int64]struct{}
	clock   time.Time

	failWith error // next mutating call fails without side effects
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:  make(map[int64]*Order),
		lines:   make(map[[2]int64]int),
		addons:  make(map[[2]int64]struct{}),
		charges: make(map[[2]int64]struct{}),
		clock:   time.Unix(1700000000, 0),
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memRepo) fail() error {
	if m.failWith != nil {
		err := m.failWith
		m.failWith = nil
		return err
	}
	return nil
}

func (m *memRepo) GetOrder(_ context.Context, orderID int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) OrdersByTypeStatus(_ context.Context, typ OrderType, status OrderStatus) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if o.Type == typ && o.Status == status {
			out = append(out, *o)
		}
	}
	// created_at descending, like the SQL implementation
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memRepo) UpsertLine(_ context.Context, orderID, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	if _, ok := m.orders[orderID]; !ok {
		m.orders[orderID] = &Order{ID: orderID, Type: DineIn, Status: StatusProcessing, CreatedAt: m.tick()}
	}
	k := [2]int64{orderID, productID}
	if _, ok := m.lines[k]; !ok {
		m.lineSeq = append(m.lineSeq, k)
	}
	m.lines[k] = qty
	return nil
}

func (m *memRepo) DeleteLine(_ context.Context, orderID, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.dropLine([2]int64{orderID, productID})
	return nil
}

func (m *memRepo) dropLine(k [2]int64) {
	delete(m.lines, k)
	for i, s := range m.lineSeq {
		if s == k {
			m.lineSeq = append(m.lineSeq[:i], m.lineSeq[i+1:]...)
			break
		}
	}
}

func (m *memRepo) Quantity(_ context.Context, orderID, productID int64) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qty, ok := m.lines[[2]int64{orderID, productID}]
	return qty, ok, nil
}

func (m *memRepo) LineItems(_ context.Context, orderID int64) ([]LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LineItem
	for _, k := range m.lineSeq {
		if k[0] == orderID {
			out = append(out, LineItem{OrderID: k[0], ProductID: k[1], Quantity: m.lines[k]})
		}
	}
	return out, nil
}

func (m *memRepo) HasAddOn(_ context.Context, orderID, itemID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.addons[[2]int64{orderID, itemID}]
	return ok, nil
}

func (m *memRepo) AddAddOn(_ context.Context, orderID, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.addons[[2]int64{orderID, itemID}] = struct{}{}
	return nil
}

func (m *memRepo) RemoveAddOn(_ context.Context, orderID, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.addons, [2]int64{orderID, itemID})
	return nil
}

func (m *memRepo) AddOnIDs(_ context.Context, orderID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return assocIDs(m.addons, orderID), nil
}

func (m *memRepo) HasCharge(_ context.Context, orderID, chargesID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.charges[[2]int64{orderID, chargesID}]
	return ok, nil
}

func (m *memRepo) AddCharge(_ context.Context, orderID, chargesID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	m.charges[[2]int64{orderID, chargesID}] = struct{}{}
	return nil
}

func (m *memRepo) RemoveCharge(_ context.Context, orderID, chargesID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.charges, [2]int64{orderID, chargesID})
	return nil
}

func (m *memRepo) ChargeIDs(_ context.Context, orderID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return assocIDs(m.charges, orderID), nil
}

func (m *memRepo) PlaceOrders(_ context.Context, orderIDs []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return 0, err
	}
	var placed int64
	now := m.tick()
	for _, id := range orderIDs {
		o, ok := m.orders[id]
		if !ok || o.Status != StatusProcessing {
			continue
		}
		o.Status = StatusPlaced
		t := now
		o.UpdatedAt = &t
		placed++
	}
	return placed, nil
}

func (m *memRepo) DeleteOrders(_ context.Context, orderIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(); err != nil {
		return err
	}
	for _, id := range orderIDs {
		delete(m.orders, id)
		for k := range m.lines {
			if k[0] == id {
				m.dropLine(k)
			}
		}
		for k := range m.addons {
			if k[0] == id {
				delete(m.addons, k)
			}
		}
		for k := range m.charges {
			if k[0] == id {
				delete(m.charges, k)
			}
		}
	}
	return nil
}

func (m *memRepo) OrderIDsByCustomer(_ context.Context, customerID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for id, o := range m.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memRepo) OrderIDsByAddress(_ context.Context, addressID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for id, o := range m.orders {
		if o.AddressID != nil && *o.AddressID == addressID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memRepo) SetOrderCustomer(_ context.Context, orderID, customerID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != StatusProcessing {
		return false, nil
	}
	o.CustomerID = &customerID
	t := m.tick()
	o.UpdatedAt = &t
	return true, nil
}

func (m *memRepo) SetOrderAddress(_ context.Context, orderID, addressID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != StatusProcessing {
		return false, nil
	}
	o.AddressID = &addressID
	t := m.tick()
	o.UpdatedAt = &t
	return true, nil
}

func (m *memRepo) lineCount(orderID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.lines {
		if k[0] == orderID {
			n++
		}
	}
	return n
}

func (m *memRepo) assocCount(orderID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.addons {
		if k[0] == orderID {
			n++
		}
	}
	for k := range m.charges {
		if k[0] == orderID {
			n++
		}
	}
	return n
}

func assocIDs(set map[[2]int64]struct{}, orderID int64) []int64 {
	var out []int64
	for k := range set {
		if k[0] == orderID {
			out = append(out, k[1])
		}
	}
	// deterministic order for assertions
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j] < out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// fakeCatalog implements catalog.Reader from fixed maps.
type fakeCatalog struct {
	products map[int64]catalog.Product
	addons   map[int64]catalog.AddOnItem
	charges  map[int64]catalog.Charge
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[int64]catalog.Product),
		addons:   make(map[int64]catalog.AddOnItem),
		charges:  make(map[int64]catalog.Charge),
	}
}

func (f *fakeCatalog) ProductByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) ProductsByIDs(_ context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := make(map[int64]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context, q catalog.Query) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if q.Q == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) AddOnItemsByIDs(_ context.Context, ids []int64) ([]catalog.AddOnItem, error) {
	var out []catalog.AddOnItem
	for _, id := range ids {
		if a, ok := f.addons[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ChargesByIDs(_ context.Context, ids []int64) ([]catalog.Charge, error) {
	var out []catalog.Charge
	for _, id := range ids {
		if c, ok := f.charges[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
