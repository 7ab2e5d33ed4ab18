package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return writeError(c, l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func isAdmin(c echo.Context) bool {
	_, role, ok := middleware.Identity(c)
	return ok && role == middleware.RoleAdmin
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, meta, err := h.Svc.ListProducts(ctx, transport.ListProductsQuery{
		Q:          c.QueryParam("q"),
		Sort:       c.QueryParam("sort"),
		Page:       util.ParseIntDefault(c.QueryParam("page"), 1),
		PerPage:    util.ParseIntDefault(c.QueryParam("per_page"), util.DefaultPageSize),
		ActiveOnly: !(c.QueryParam("all") == "1" && isAdmin(c)),
	})
	if err != nil {
		return writeError(c, l, "get_products_error", err)
	}

	data := make([]transport.ProductResponse, 0, len(items))
	for i := range items {
		data = append(data, transport.NewProductResponse(&items[i]))
	}
	l.Info("get_products_success")
	return c.JSON(http.StatusOK, transport.ProductListResponse{Data: data, Meta: meta})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "product_create_error", err)
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return writeError(c, l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	var req transport.PatchProductRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, l, "product_patch_error", err)
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return writeError(c, l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return writeError(c, l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
