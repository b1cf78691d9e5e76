package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skniyajali/PoposRoom-sub013/internal/catalog"
	"github.com/skniyajali/PoposRoom-sub013/internal/pricing"
	"github.com/skniyajali/PoposRoom-sub013/internal/watch"
)

// ListTopic is notified on any change that can affect an order list.
const ListTopic = "cart:list"

// OrderTopic names the change topic of a single order.
func OrderTopic(orderID int64) string { return fmt.Sprintf("cart:order:%d", orderID) }

// Store owns cart line items and add-on/charge selections, and assembles
// CartItem aggregates with the price recomputed on every read.
type Store struct {
	repo    Repository
	catalog catalog.Reader
	hub     *watch.Hub
	log     *zap.Logger
}

func NewStore(repo Repository, cr catalog.Reader, hub *watch.Hub, log *zap.Logger) *Store {
	return &Store{repo: repo, catalog: cr, hub: hub, log: log}
}

// SetQuantity upserts the (orderID, productID) row. Quantity zero deletes the
// row; the first add for a new order id creates the owning Processing order.
func (s *Store) SetQuantity(ctx context.Context, orderID, productID int64, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		if err := s.repo.DeleteLine(ctx, orderID, productID); err != nil {
			return err
		}
		s.notify(orderID)
		return nil
	}
	if err := s.repo.UpsertLine(ctx, orderID, productID, qty); err != nil {
		return err
	}
	s.notify(orderID)
	return nil
}

// Increment raises the quantity by one, creating the line (and the order)
// when absent. Concurrent increments to the same row are last-writer-wins.
func (s *Store) Increment(ctx context.Context, orderID, productID int64) error {
	qty, _, err := s.repo.Quantity(ctx, orderID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertLine(ctx, orderID, productID, qty+1); err != nil {
		return err
	}
	s.notify(orderID)
	return nil
}

// Decrement lowers the quantity by one; dropping below one deletes the row.
// Decrementing an absent row is a no-op.
func (s *Store) Decrement(ctx context.Context, orderID, productID int64) error {
	qty, ok, err := s.repo.Quantity(ctx, orderID, productID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if qty <= 1 {
		if err := s.repo.DeleteLine(ctx, orderID, productID); err != nil {
			return err
		}
	} else {
		if err := s.repo.UpsertLine(ctx, orderID, productID, qty-1); err != nil {
			return err
		}
	}
	s.notify(orderID)
	return nil
}

// ToggleAddOn adds the association if absent and removes it if present.
func (s *Store) ToggleAddOn(ctx context.Context, orderID, itemID int64) error {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return err
	}
	has, err := s.repo.HasAddOn(ctx, orderID, itemID)
	if err != nil {
		return err
	}
	if has {
		err = s.repo.RemoveAddOn(ctx, orderID, itemID)
	} else {
		err = s.repo.AddAddOn(ctx, orderID, itemID)
	}
	if err != nil {
		return err
	}
	s.notify(orderID)
	return nil
}

// ToggleCharge adds the association if absent and removes it if present.
func (s *Store) ToggleCharge(ctx context.Context, orderID, chargesID int64) error {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return err
	}
	has, err := s.repo.HasCharge(ctx, orderID, chargesID)
	if err != nil {
		return err
	}
	if has {
		err = s.repo.RemoveCharge(ctx, orderID, chargesID)
	} else {
		err = s.repo.AddCharge(ctx, orderID, chargesID)
	}
	if err != nil {
		return err
	}
	s.notify(orderID)
	return nil
}

// CartItem assembles the aggregate for one order: line items resolved against
// the catalog, selected add-ons/charges and the freshly computed price.
func (s *Store) CartItem(ctx context.Context, orderID int64) (*CartItem, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, o)
}

// ListCartItems returns the aggregates of every order matching the type and
// status, newest first. An empty status defaults to Processing.
func (s *Store) ListCartItems(ctx context.Context, typ OrderType, status OrderStatus) ([]CartItem, error) {
	if status == "" {
		status = StatusProcessing
	}
	orders, err := s.repo.OrdersByTypeStatus(ctx, typ, status)
	if err != nil {
		return nil, err
	}
	out := make([]CartItem, 0, len(orders))
	for i := range orders {
		ci, err := s.assemble(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	return out, nil
}

// WatchCartItem emits the current aggregate, then re-assembles and re-emits
// on every change to the order. The stream closes when ctx is cancelled or
// the order disappears; storage failures are logged and end the stream.
func (s *Store) WatchCartItem(ctx context.Context, orderID int64) <-chan CartItem {
	sub := s.hub.Subscribe(ctx, OrderTopic(orderID))
	out := make(chan CartItem, 1)
	go func() {
		defer close(out)
		for {
			ci, err := s.CartItem(ctx, orderID)
			if err != nil {
				if !errors.Is(err, ErrOrderNotFound) && ctx.Err() == nil {
					s.log.Error("watch cart item", zap.Int64("order_id", orderID), zap.Error(err))
				}
				return
			}
			select {
			case out <- *ci:
			case <-ctx.Done():
				return
			}
			if _, ok := <-sub; !ok {
				return
			}
		}
	}()
	return out
}

// WatchCartItems is the list counterpart of WatchCartItem.
func (s *Store) WatchCartItems(ctx context.Context, typ OrderType, status OrderStatus) <-chan []CartItem {
	sub := s.hub.Subscribe(ctx, ListTopic)
	out := make(chan []CartItem, 1)
	go func() {
		defer close(out)
		for {
			items, err := s.ListCartItems(ctx, typ, status)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("watch cart items", zap.String("order_type", string(typ)), zap.Error(err))
				}
				return
			}
			select {
			case out <- items:
			case <-ctx.Done():
				return
			}
			if _, ok := <-sub; !ok {
				return
			}
		}
	}()
	return out
}

func (s *Store) assemble(ctx context.Context, o *Order) (*CartItem, error) {
	lines, err := s.repo.LineItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	productIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}
	products, err := s.catalog.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	addOnIDs, err := s.repo.AddOnIDs(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	addOns, err := s.catalog.AddOnItemsByIDs(ctx, addOnIDs)
	if err != nil {
		return nil, err
	}
	chargeIDs, err := s.repo.ChargeIDs(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	charges, err := s.catalog.ChargesByIDs(ctx, chargeIDs)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lines))
	priceLines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("order %d line %d: %w", o.ID, l.ProductID, catalog.ErrNotFound)
		}
		items = append(items, Item{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductPrice: p.Price,
			Quantity:     l.Quantity,
		})
		priceLines = append(priceLines, pricing.Line{Price: p.Price, Quantity: l.Quantity})
	}

	priceAddOns := make([]pricing.Extra, 0, len(addOns))
	for _, a := range addOns {
		priceAddOns = append(priceAddOns, pricing.Extra{Price: a.Price, Applicable: a.IsApplicable})
	}
	priceCharges := make([]pricing.Extra, 0, len(charges))
	for _, c := range charges {
		priceCharges = append(priceCharges, pricing.Extra{Price: c.Price, Applicable: c.IsApplicable})
	}

	return &CartItem{
		Order:   *o,
		Items:   items,
		AddOns:  addOns,
		Charges: charges,
		Price:   pricing.Compute(priceLines, priceAddOns, priceCharges),
	}, nil
}

func (s *Store) notify(orderID int64) {
	s.hub.Notify(OrderTopic(orderID), ListTopic)
}
