package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bakery-service/internal/catalog"
	"bakery-service/internal/models"
	"bakery-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	products    []models.Product
	getErr      error
	gets        int
	sets        int
	invalidates int
}

func (f *fakeCache) GetCatalog(_ context.Context) ([]models.Product, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.products, nil
}

func (f *fakeCache) SetCatalog(_ context.Context, products []models.Product, _ time.Duration) error {
	f.sets++
	f.products = products
	return nil
}

func (f *fakeCache) InvalidateCatalog(_ context.Context) error {
	f.invalidates++
	f.products = nil
	return nil
}

func newCatalogService(repo ProductRepository, cache CatalogCache) *CatalogService {
	return NewCatalogService(repo, cache, 10, 30*time.Second, 0)
}

func TestMenuListOnlyShowsAvailable(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(&fakeRepo{products: testProducts()}, nil)

	// the caller cannot opt out of the availability filter
	page, err := svc.MenuList(ctx, catalog.ViewConfig{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 2, page.TotalCount)
	for _, item := range page.Items {
		assert.True(t, item.IsAvailable)
	}
}

func TestMenuListDecoratesItems(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{products: []models.Product{
		{ID: "p1", Name: "Brownie de Doce de Leite", Price: 11.9, HasDiscount: true, DiscountPrice: discountPtr(10.9), IsAvailable: true, CreatedAt: time.Now().Add(-24 * time.Hour)},
		{ID: "p2", Name: "Brownie Tradicional", Price: 8.9, IsAvailable: true, CreatedAt: time.Now().Add(-30 * 24 * time.Hour)},
	}}
	svc := newCatalogService(repo, nil)

	page, err := svc.MenuList(ctx, catalog.ViewConfig{SortKey: catalog.SortPriceDesc, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	promo := page.Items[0]
	assert.Equal(t, "p1", promo.ID)
	assert.Equal(t, 10.9, promo.EffectivePrice)
	assert.True(t, promo.IsPromotion)
	assert.True(t, promo.IsNew)

	plain := page.Items[1]
	assert.Equal(t, 8.9, plain.EffectivePrice)
	assert.False(t, plain.IsPromotion)
	assert.False(t, plain.IsNew)
}

func TestAdminListIgnoresPromotionFilter(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(&fakeRepo{products: testProducts()}, nil)

	page, err := svc.AdminList(ctx, catalog.ViewConfig{OnlyPromotion: true, Page: 1, PageSize: 10})
	require.NoError(t, err)

	// admins see the full collection, unavailable products included
	assert.Equal(t, 3, page.TotalCount)
}

func TestMenuListPopulatesCacheOnMiss(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{products: testProducts()}
	cache := &fakeCache{}
	svc := newCatalogService(repo, cache)

	_, err := svc.MenuList(ctx, catalog.ViewConfig{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// the second read is served from the cache, not the repository
	repo.listErr = fmt.Errorf("database down")
	page, err := svc.MenuList(ctx, catalog.ViewConfig{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 2, cache.gets)
}

func TestMenuListDegradesOnCacheError(t *testing.T) {
	ctx := context.Background()
	cache := &fakeCache{getErr: fmt.Errorf("redis down")}
	svc := newCatalogService(&fakeRepo{products: testProducts()}, cache)

	page, err := svc.MenuList(ctx, catalog.ViewConfig{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestMutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{products: testProducts()}
	cache := &fakeCache{products: testProducts()}
	svc := newCatalogService(repo, cache)

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Name: "Brownie Pistache", Price: 13.9})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidates)

	available := false
	_, err = svc.UpdateProduct(ctx, "p1", store.ProductUpdate{IsAvailable: &available})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidates)

	require.NoError(t, svc.DeleteProduct(ctx, "p1"))
	assert.Equal(t, 3, cache.invalidates)
}

func TestCreateProductRejectsTooManyImages(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(&fakeRepo{}, nil)

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{
		Name:   "Brownie",
		Price:  10,
		Images: []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
	})
	assert.Error(t, err)
}

func TestSeedProductsSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newCatalogService(repo, nil)

	inserted, err := svc.SeedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SampleProducts()), inserted)

	again, err := svc.SeedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
}
