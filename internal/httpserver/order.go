package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/idempotency"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (result string, reserved bool, err error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

type OrderHTTP struct {
	Svc         *service.OrderService
	Idempotency IdempotencyStore
}

func actorFrom(c echo.Context) *service.Actor {
	sub, role, ok := middleware.Identity(c)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil
	}
	return &service.Actor{UserID: id, Role: role}
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func orderJSON(c echo.Context, status int, o *models.Order) error {
	return c.JSON(status, transport.NewOrderResponse(o))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "create_order_error", err)
	}

	key := idempotency.Key(c.Request())
	if key != "" && h.Idempotency != nil {
		prior, reserved, err := h.Idempotency.Reserve(ctx, key)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			l.Warn("create_order_error", "status", 409, "reason", "duplicate request in progress")
			return echo.NewHTTPError(http.StatusConflict, "a request with this Idempotency-Key is in progress")
		case errors.Is(err, idempotency.ErrInvalidKey):
			l.Warn("create_order_error", "status", 400, "reason", "invalid idempotency key")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid Idempotency-Key")
		case err != nil:
			l.Error("idempotency_unavailable", "error", err)
			key = ""
		case !reserved:
			return h.replay(c, prior)
		}
	}

	completed := false
	if key != "" {
		// runs on error returns and on panics unwinding to the recover middleware
		defer func() {
			if completed {
				return
			}
			if err := h.Idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
				l.Error("idempotency_release_error", "error", err)
			}
		}()
	}

	order, err := h.Svc.Create(ctx, req, actorFrom(c))
	if err != nil {
		return writeError(c, l, "create_order_error", productFieldError(err))
	}

	if key != "" {
		if err := h.Idempotency.Complete(ctx, key, order.ID.String()); err != nil {
			l.Error("idempotency_complete_error", "error", err)
		}
		completed = true
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalPrice.StringFixed(2))
	return orderJSON(c, http.StatusCreated, order)
}

func (h *OrderHTTP) replay(c echo.Context, prior string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	id, err := uuid.Parse(prior)
	if err != nil {
		l.Error("create_order_error", "status", 500, "reason", "corrupt idempotency record", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	order, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, l, "create_order_error", err)
	}
	l.Info("create_order_replayed", "order_id", order.ID)
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	orders, meta, err := h.Svc.List(ctx, transport.ListOrdersQuery{
		Status:  c.QueryParam("status"),
		Q:       c.QueryParam("q"),
		Page:    util.ParseIntDefault(c.QueryParam("page"), 1),
		PerPage: util.ParseIntDefault(c.QueryParam("per_page"), util.DefaultPageSize),
	})
	if err != nil {
		return writeError(c, l, "list_orders_error", err)
	}

	data := make([]transport.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, transport.NewOrderResponse(&orders[i]))
	}
	l.Info("list_orders_success")
	return c.JSON(http.StatusOK, transport.OrderListResponse{Data: data, Meta: meta})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	order, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, l, "get_order_error", err)
	}
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.UpdateOrderRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "update_order_error", productFieldError(err))
	}

	order, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return writeError(c, l, "update_order_error", err)
	}
	l.Info("update_order_success", "order_id", id)
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) ReplaceItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.replace_items")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("replace_items_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.ReplaceItemsRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "replace_items_error", productFieldError(err))
	}

	order, err := h.Svc.ReplaceItems(ctx, id, req.Items)
	if err != nil {
		return writeError(c, l, "replace_items_error", err)
	}
	l.Info("replace_items_success", "order_id", id)
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("delete_order_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return writeError(c, l, "delete_order_error", err)
	}
	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.add_item")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("add_item_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.AddItemRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "add_item_error", err)
	}

	order, err := h.Svc.AddItem(ctx, id, req)
	if err != nil {
		return writeError(c, l, "add_item_error", productFieldError(err))
	}
	l.Info("add_item_success", "order_id", id)
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_item")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("update_item_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}
	itemID, err := parseID(c, "item")
	if err != nil {
		l.Warn("update_item_error", "status", 400, "reason", "item id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "item id is not a uuid")
	}

	var req transport.ItemPatchRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "update_item_error", err)
	}

	order, err := h.Svc.UpdateItem(ctx, id, itemID, req)
	if err != nil {
		return writeError(c, l, "update_item_error", err)
	}
	l.Info("update_item_success", "order_id", id, "item_id", itemID)
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.remove_item")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("remove_item_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}
	itemID, err := parseID(c, "item")
	if err != nil {
		l.Warn("remove_item_error", "status", 400, "reason", "item id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "item id is not a uuid")
	}

	order, err := h.Svc.RemoveItem(ctx, id, itemID)
	if err != nil {
		return writeError(c, l, "remove_item_error", err)
	}
	l.Info("remove_item_success", "order_id", id, "item_id", itemID)
	return orderJSON(c, http.StatusOK, order)
}

func (h *OrderHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.set_status")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("set_status_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.SetStatusRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "set_status_error", err)
	}

	order, err := h.Svc.SetStatus(ctx, id, req)
	if err != nil {
		return writeError(c, l, "set_status_error", err)
	}
	l.Info("set_status_success", "order_id", id, "status", order.Status)
	return orderJSON(c, http.StatusOK, order)
}
