package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SortNewest    = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

type ProductFilter struct {
	Query      string
	Sort       string
	ActiveOnly bool
	Offset     int
	Limit      int
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	switch f.Sort {
	case SortPriceAsc:
		q = q.Order("price ASC, id ASC")
	case SortPriceDesc:
		q = q.Order("price DESC, id ASC")
	default:
		q = q.Order("created_at DESC, id ASC")
	}

	items := make([]models.Product, 0, f.Limit)
	if err := q.Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Save(prod).Error
}

// DetachProduct clears product_id on order lines so order history survives
// the product's deletion.
func (r *GormRepo) DetachProduct(ctx context.Context, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("product_id = ?", productID).
		Update("product_id", nil).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
