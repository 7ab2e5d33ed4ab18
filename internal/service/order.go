package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultNotifyTimeout = 5 * time.Second

// Actor is the authenticated caller. A nil *Actor means guest checkout.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

type OrderService struct {
	Repo          *repo.GormRepo
	Notifier      notify.Notifier
	NotifyTimeout time.Duration
	Created       prometheus.Counter

	wg sync.WaitGroup
}

// Create places an order from cart entries. Line items snapshot the product's
// current name and price; the order total is recalculated before commit.
func (s *OrderService) Create(ctx context.Context, req transport.CreateOrderRequest, actor *Actor) (*models.Order, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = emptyToNil(req.CustomerPhone)
	req.Notes = emptyToNil(req.Notes)

	verr := validateStruct(req)
	checkItemRefs(verr, "items", req.Items)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Repo.WithinTx(ctx, func(tx *repo.GormRepo) error {
		o := &models.Order{
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Notes:         req.Notes,
			Status:        models.StatusPending,
			TotalPrice:    decimal.Zero,
		}
		if actor != nil {
			uid := actor.UserID
			o.UserID = &uid
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		if err := addLines(ctx, tx, o.ID, req.Items); err != nil {
			return err
		}
		if err := recalculate(ctx, tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}

	if s.Created != nil {
		s.Created.Inc()
	}
	s.dispatchConfirmation(ctx, order)
	return order, nil
}

// ReplaceItems swaps the whole item set of an order for a new one.
func (s *OrderService) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []transport.OrderItemRequest) (*models.Order, error) {
	req := transport.ReplaceItemsRequest{Items: items}
	verr := validateStruct(req)
	checkItemRefs(verr, "items", req.Items)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(tx *repo.GormRepo, o *models.Order) error {
		if err := tx.DeleteItems(ctx, o.ID); err != nil {
			return err
		}
		return addLines(ctx, tx, o.ID, items)
	})
}

// Update applies a partial change of customer fields and, when req.Items is
// set, replaces the item set.
func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, req transport.UpdateOrderRequest) (*models.Order, error) {
	req.CustomerName = trimPtr(req.CustomerName)
	req.CustomerEmail = trimPtr(req.CustomerEmail)

	verr := validateStruct(req)
	if req.Items != nil {
		checkItemRefs(verr, "items", *req.Items)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(tx *repo.GormRepo, o *models.Order) error {
		if req.CustomerName != nil {
			o.CustomerName = *req.CustomerName
		}
		if req.CustomerEmail != nil {
			o.CustomerEmail = *req.CustomerEmail
		}
		if req.CustomerPhone != nil {
			o.CustomerPhone = emptyToNil(req.CustomerPhone)
		}
		if req.Notes != nil {
			o.Notes = emptyToNil(req.Notes)
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}

		if req.Items == nil {
			return nil
		}
		if err := tx.DeleteItems(ctx, o.ID); err != nil {
			return err
		}
		return addLines(ctx, tx, o.ID, *req.Items)
	})
}

func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req transport.AddItemRequest) (*models.Order, error) {
	verr := validateStruct(req)
	if req.ProductID == uuid.Nil {
		verr.add("product_id", "is required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(tx *repo.GormRepo, o *models.Order) error {
		return addLine(ctx, tx, o.ID, transport.OrderItemRequest{ProductID: req.ProductID, Quantity: req.Quantity}, "product_id")
	})
}

// UpdateItem corrects one line. Name and price may override the snapshot.
func (s *OrderService) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, req transport.ItemPatchRequest) (*models.Order, error) {
	req.Name = trimPtr(req.Name)

	verr := validateStruct(req)
	checkPrice(verr, "price", req.Price)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(tx *repo.GormRepo, o *models.Order) error {
		item, err := tx.GetItem(ctx, o.ID, itemID)
		if err != nil {
			return translate(err, "order item")
		}
		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Price != nil {
			item.Price = *req.Price
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		item.Reprice()
		return tx.SaveItem(ctx, item)
	})
}

func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(tx *repo.GormRepo, o *models.Order) error {
		return translate(tx.DeleteItem(ctx, o.ID, itemID), "order item")
	})
}

func (s *OrderService) SetStatus(ctx context.Context, orderID uuid.UUID, req transport.SetStatusRequest) (*models.Order, error) {
	next := models.Status(strings.TrimSpace(req.Status))
	if !next.Valid() {
		return nil, fieldError("status", "must be one of "+models.StatusList())
	}

	var order *models.Order
	err := s.Repo.WithinTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return translate(err, "order")
		}
		if !CanTransition(o.Status, next) {
			return fmt.Errorf("%w: order cannot move from %s to %s", ErrConflict, o.Status, next)
		}
		o.Status = next
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		if o.Items, err = tx.ListItems(ctx, o.ID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}
	return order, nil
}

// Delete removes the order and its items in one transaction.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	err := s.Repo.WithinTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.DeleteItems(ctx, o.ID); err != nil {
			return err
		}
		return tx.DeleteOrder(ctx, o.ID)
	})
	return translate(err, "order")
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, translate(err, "order")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, q transport.ListOrdersQuery) ([]models.Order, util.Meta, error) {
	status := models.Status(strings.TrimSpace(q.Status))
	if status != "" && !status.Valid() {
		return nil, util.Meta{}, fieldError("status", "must be one of "+models.StatusList())
	}

	offset, limit := util.Calculate(q.Page, q.PerPage)
	total, orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{
		Status: status,
		Query:  q.Q,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, util.Meta{}, err
	}
	return orders, util.NewMeta(q.Page, offset, limit, total), nil
}

// Wait blocks until in-flight confirmation dispatches finish.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

// mutate locks the order row, applies change and recalculates the total, all
// in one transaction.
func (s *OrderService) mutate(ctx context.Context, orderID uuid.UUID, change func(tx *repo.GormRepo, o *models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.WithinTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return translate(err, "order")
		}
		if err := change(tx, o); err != nil {
			return err
		}
		if err := recalculate(ctx, tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}
	return order, nil
}

// addLines resolves each product inside tx and inserts a priced snapshot line.
// An unknown product aborts the whole transaction.
func addLines(ctx context.Context, tx *repo.GormRepo, orderID uuid.UUID, items []transport.OrderItemRequest) error {
	for i, in := range items {
		if err := addLine(ctx, tx, orderID, in, fmt.Sprintf("items[%d].product_id", i)); err != nil {
			return err
		}
	}
	return nil
}

// addLine inserts one snapshot line. field names the request field that
// carried the product id, for error reporting.
func addLine(ctx context.Context, tx *repo.GormRepo, orderID uuid.UUID, in transport.OrderItemRequest, field string) error {
	product, err := tx.GetProduct(ctx, in.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &UnknownProductError{Field: field, ProductID: in.ProductID}
	}
	if err != nil {
		return err
	}
	pid := product.ID
	item := &models.OrderItem{
		OrderID:   orderID,
		ProductID: &pid,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  in.Quantity,
	}
	item.Reprice()
	return tx.CreateItem(ctx, item)
}

// recalculate reloads the order's items, recomputes the total and persists it.
func recalculate(ctx context.Context, tx *repo.GormRepo, o *models.Order) error {
	items, err := tx.ListItems(ctx, o.ID)
	if err != nil {
		return err
	}
	o.Items = items
	o.Recalculate()
	if !pricing.Fits(o.TotalPrice) {
		return fieldError("items", "order total must not exceed "+pricing.Format(pricing.MaxAmount))
	}
	return tx.SetOrderTotal(ctx, o.ID, o.TotalPrice)
}

func (s *OrderService) dispatchConfirmation(ctx context.Context, order *models.Order) {
	if s.Notifier == nil {
		return
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	msg := notify.NewConfirmation(order)
	l := logging.FromContext(ctx).With("svc", "order.notify", "order_id", order.ID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(logging.IntoContext(context.WithoutCancel(ctx), l), timeout)
		defer cancel()
		if err := s.Notifier.Notify(nctx, msg); err != nil {
			l.Error("order_confirmation_failed", "error", err)
			return
		}
		l.Debug("order_confirmation_dispatched")
	}()
}
