package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) CatalogRepository {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunSQLiteMigrations(db, "./migrations/sqlite"))
	return NewCatalogRepository(db)
}

func TestCatalog_GetAllProducts_SeededAfterMigrations(t *testing.T) {
	repo := setupCatalog(t)

	products, err := repo.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 5)
	assert.Equal(t, int64(1), products[0].ID)
}

func TestCatalog_GetProduct(t *testing.T) {
	repo := setupCatalog(t)

	p, err := repo.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Mechanical Keyboard", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("89.50")))
	assert.False(t, p.CreatedAt.IsZero())

	_, err = repo.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_GetProducts_Batch(t *testing.T) {
	repo := setupCatalog(t)

	got, err := repo.GetProducts(context.Background(), []int64{1, 3, 404})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, int64(1))
	assert.Contains(t, got, int64(3))
	assert.NotContains(t, got, int64(404))

	empty, err := repo.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCatalog_CancelledContext(t *testing.T) {
	repo := setupCatalog(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAllProducts(ctx)
	assert.ErrorContains(t, err, "context canceled")
}
