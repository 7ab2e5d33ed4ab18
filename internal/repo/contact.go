package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactFilter struct {
	// Processed nil lists both states.
	Processed *bool
	Query     string
	Offset    int
	Limit     int
}

func (r *GormRepo) CreateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) GetContactMessage(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var m models.ContactMessage
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormRepo) ListContactMessages(ctx context.Context, f ContactFilter) (int64, []models.ContactMessage, error) {
	q := r.DB.WithContext(ctx).Model(&models.ContactMessage{})
	if f.Processed != nil {
		q = q.Where("processed = ?", *f.Processed)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(body) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	msgs := make([]models.ContactMessage, 0, f.Limit)
	if err := q.Order("created_at DESC, id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&msgs).Error; err != nil {
		return 0, nil, err
	}
	return total, msgs, nil
}

func (r *GormRepo) SaveContactMessage(ctx context.Context, m *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *GormRepo) DeleteContactMessage(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
