package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/labstack/echo/v4"
)

type ContactHTTP struct {
	Svc *service.ContactService
}

func (h *ContactHTTP) SubmitMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.submit_message")

	var req transport.ContactMessageRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "submit_message_error", err)
	}

	msg, err := h.Svc.Submit(ctx, req)
	if err != nil {
		return writeError(c, l, "submit_message_error", err)
	}

	l.Info("submit_message_success", "message_id", msg.ID)
	return c.JSON(http.StatusCreated, transport.NewContactMessageResponse(msg))
}

func (h *ContactHTTP) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.list_messages")

	msgs, meta, err := h.Svc.List(ctx, transport.ListContactMessagesQuery{
		Processed: c.QueryParam("processed"),
		Q:         c.QueryParam("q"),
		Page:      util.ParseIntDefault(c.QueryParam("page"), 1),
		PerPage:   util.ParseIntDefault(c.QueryParam("per_page"), util.DefaultPageSize),
	})
	if err != nil {
		return writeError(c, l, "list_messages_error", err)
	}

	data := make([]transport.ContactMessageResponse, 0, len(msgs))
	for i := range msgs {
		data = append(data, transport.NewContactMessageResponse(&msgs[i]))
	}
	l.Info("list_messages_success")
	return c.JSON(http.StatusOK, transport.ContactMessageListResponse{Data: data, Meta: meta})
}

func (h *ContactHTTP) GetMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.get_message")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("get_message_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	msg, err := h.Svc.Get(ctx, id)
	if err != nil {
		return writeError(c, l, "get_message_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewContactMessageResponse(msg))
}

func (h *ContactHTTP) ProcessMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.process_message")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("process_message_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.SetProcessedRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "process_message_error", err)
	}

	msg, err := h.Svc.SetProcessed(ctx, id, req)
	if err != nil {
		return writeError(c, l, "process_message_error", err)
	}

	l.Info("process_message_success", "message_id", id, "processed", msg.Processed)
	return c.JSON(http.StatusOK, transport.NewContactMessageResponse(msg))
}

func (h *ContactHTTP) DeleteMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.delete_message")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("delete_message_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return writeError(c, l, "delete_message_error", err)
	}

	l.Info("delete_message_success", "message_id", id)
	return c.NoContent(http.StatusNoContent)
}
