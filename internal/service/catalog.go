package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/google/uuid"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ListProductsQuery) ([]models.Product, util.Meta, error) {
	switch q.Sort {
	case repo.SortNewest, repo.SortPriceAsc, repo.SortPriceDesc:
	default:
		return nil, util.Meta{}, fieldError("sort", "must be one of price_asc, price_desc")
	}

	offset, limit := util.Calculate(q.Page, q.PerPage)
	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		Query:      q.Q,
		Sort:       q.Sort,
		ActiveOnly: q.ActiveOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, util.Meta{}, err
	}
	return items, util.NewMeta(q.Page, offset, limit, total), nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = emptyToNil(req.SKU)

	verr := validateStruct(req)
	checkPrice(verr, "price", req.Price)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       pricing.Round(*req.Price),
		SKU:         req.SKU,
		IsActive:    true,
		Stock:       req.Stock,
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, translate(err, "product sku")
	}
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	req.Name = trimPtr(req.Name)

	verr := validateStruct(req)
	checkPrice(verr, "price", req.Price)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = pricing.Round(*req.Price)
	}
	if req.SKU != nil {
		prod.SKU = emptyToNil(req.SKU)
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.Stock != nil {
		prod.Stock = *req.Stock
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, translate(err, "product sku")
	}
	return prod, nil
}

// DeleteProduct removes the product. Order lines that referenced it keep
// their snapshot and lose the product link.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.WithinTx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.DetachProduct(ctx, id); err != nil {
			return err
		}
		return tx.DeleteProduct(ctx, id)
	})
	return translate(err, "product")
}
