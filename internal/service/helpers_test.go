package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func seedProduct(t *testing.T, r *repo.GormRepo, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), IsActive: true, Stock: 10}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

type mockNotifier struct {
	mock.Mock
	mu   sync.Mutex
	sent []notify.Confirmation
}

func (m *mockNotifier) Notify(ctx context.Context, c notify.Confirmation) error {
	m.mu.Lock()
	m.sent = append(m.sent, c)
	m.mu.Unlock()
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockNotifier) Sent() []notify.Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Confirmation(nil), m.sent...)
}

func countRows(t *testing.T, r *repo.GormRepo, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(model).Count(&n).Error)
	return n
}
