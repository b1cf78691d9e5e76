package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/skniyajali/PoposRoom-sub013/internal/watch"
)

// Manager drives the order state machine and cascading deletion. Placement
// and deletion of ids that no longer exist are no-ops so bulk operations
// survive stale selection sets.
type Manager struct {
	repo Repository
	hub  *watch.Hub
	log  *zap.Logger
}

func NewManager(repo Repository, hub *watch.Hub, log *zap.Logger) *Manager {
	return &Manager{repo: repo, hub: hub, log: log}
}

// PlaceOrder moves the order to Placed. Idempotent: an already-Placed order
// keeps its status and updated_at untouched.
func (m *Manager) PlaceOrder(ctx context.Context, orderID int64) error {
	return m.PlaceAllOrders(ctx, []int64{orderID})
}

// PlaceAllOrders transitions every listed order in a single transaction.
// Missing or already-Placed ids are skipped; a storage failure rolls the
// whole batch back.
func (m *Manager) PlaceAllOrders(ctx context.Context, orderIDs []int64) error {
	placed, err := m.repo.PlaceOrders(ctx, orderIDs)
	if err != nil {
		return err
	}
	if placed > 0 {
		m.log.Info("orders placed", zap.Int64("count", placed))
		m.notify(orderIDs)
	}
	return nil
}

// DeleteOrder removes the order and, through the cascade, all its line items
// and add-on/charge associations.
func (m *Manager) DeleteOrder(ctx context.Context, orderID int64) error {
	return m.DeleteOrders(ctx, []int64{orderID})
}

func (m *Manager) DeleteOrders(ctx context.Context, orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if err := m.repo.DeleteOrders(ctx, orderIDs); err != nil {
		return err
	}
	m.notify(orderIDs)
	return nil
}

// DeleteOrdersForCustomer enumerates the customer's orders first, then
// deletes them; used by the customer-deletion flow.
func (m *Manager) DeleteOrdersForCustomer(ctx context.Context, customerID int64) error {
	ids, err := m.repo.OrderIDsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return m.DeleteOrders(ctx, ids)
}

// DeleteOrdersForAddress is the address-deletion counterpart.
func (m *Manager) DeleteOrdersForAddress(ctx context.Context, addressID int64) error {
	ids, err := m.repo.OrderIDsByAddress(ctx, addressID)
	if err != nil {
		return err
	}
	return m.DeleteOrders(ctx, ids)
}

// AssignCustomer attaches a customer to a Processing order (dine-out flow).
func (m *Manager) AssignCustomer(ctx context.Context, orderID, customerID int64) error {
	ok, err := m.repo.SetOrderCustomer(ctx, orderID, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	m.notify([]int64{orderID})
	return nil
}

// AssignAddress attaches a delivery address to a Processing order.
func (m *Manager) AssignAddress(ctx context.Context, orderID, addressID int64) error {
	ok, err := m.repo.SetOrderAddress(ctx, orderID, addressID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	m.notify([]int64{orderID})
	return nil
}

func (m *Manager) notify(orderIDs []int64) {
	topics := make([]string, 0, len(orderIDs)+1)
	for _, id := range orderIDs {
		topics = append(topics, OrderTopic(id))
	}
	topics = append(topics, ListTopic)
	m.hub.Notify(topics...)
}
