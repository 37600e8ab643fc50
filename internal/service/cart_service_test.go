package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"bakery-service/internal/models"
	"bakery-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePersister stores carts as JSON, mirroring what the Redis client
// persists, so tests exercise the full serialize/deserialize round trip.
type fakePersister struct {
	data    map[string][]byte
	saveErr error
}

func newFakePersister() *fakePersister {
	return &fakePersister{data: map[string][]byte{}}
}

func (f *fakePersister) LoadCart(_ context.Context, sessionID string) ([]models.CartItem, error) {
	raw, ok := f.data[sessionID]
	if !ok {
		return nil, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("corrupt cart data: %w", err)
	}
	return items, nil
}

func (f *fakePersister) SaveCart(_ context.Context, sessionID string, items []models.CartItem) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	f.data[sessionID] = raw
	return nil
}

func (f *fakePersister) DeleteCart(_ context.Context, sessionID string) error {
	delete(f.data, sessionID)
	return nil
}

// fakeRepo is an in-memory ProductRepository
type fakeRepo struct {
	products []models.Product
	listErr  error
}

func (f *fakeRepo) ListProducts(_ context.Context) ([]models.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeRepo) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product not found: %s", id)
}

func (f *fakeRepo) CreateProduct(_ context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = fmt.Sprintf("p%d", len(f.products)+1)
	}
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeRepo) UpdateProduct(_ context.Context, id string, update store.ProductUpdate) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID != id {
			continue
		}
		if update.Name != nil {
			f.products[i].Name = *update.Name
		}
		if update.Price != nil {
			f.products[i].Price = *update.Price
		}
		if update.HasDiscount != nil {
			f.products[i].HasDiscount = *update.HasDiscount
		}
		if update.DiscountPrice != nil {
			f.products[i].DiscountPrice = update.DiscountPrice
		}
		if update.IsAvailable != nil {
			f.products[i].IsAvailable = *update.IsAvailable
		}
		p := f.products[i]
		return &p, nil
	}
	return nil, fmt.Errorf("product not found: %s", id)
}

func (f *fakeRepo) DeleteProduct(_ context.Context, id string) error {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product not found: %s", id)
}

func (f *fakeRepo) SeedProducts(_ context.Context, products []models.Product) (int, error) {
	existing := map[string]bool{}
	for _, p := range f.products {
		existing[p.Name] = true
	}
	inserted := 0
	for _, p := range products {
		if existing[p.Name] {
			continue
		}
		_ = f.CreateProduct(context.Background(), &p)
		inserted++
	}
	return inserted, nil
}

func discountPtr(v float64) *float64 { return &v }

func testProducts() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Brownie Tradicional", Price: 8.9, IsAvailable: true},
		{ID: "p2", Name: "Brownie de Doce de Leite", Price: 11.9, HasDiscount: true, DiscountPrice: discountPtr(10.9), IsAvailable: true},
		{ID: "p3", Name: "Brownie Nutella", Price: 12.9, IsAvailable: false},
	}
}

func TestCartServiceAddItemCapturesEffectivePrice(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakePersister(), &fakeRepo{products: testProducts()})

	summary, err := svc.AddItem(ctx, "sess", "p2", 1)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 10.9, summary.Items[0].Price)
}

func TestCartServiceMergeAcrossCalls(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakePersister(), &fakeRepo{products: testProducts()})

	_, err := svc.AddItem(ctx, "sess", "p1", 1)
	require.NoError(t, err)
	summary, err := svc.AddItem(ctx, "sess", "p1", 2)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
}

func TestCartServicePersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	persister := newFakePersister()
	repo := &fakeRepo{products: testProducts()}

	svc := NewCartService(persister, repo)
	_, err := svc.AddItem(ctx, "sess", "p1", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess", "p2", 1)
	require.NoError(t, err)

	// a fresh service over the same storage observes the mutation
	rehydrated := NewCartService(persister, repo)
	summary, err := rehydrated.GetCart(ctx, "sess")
	require.NoError(t, err)

	require.Len(t, summary.Items, 2)
	assert.Equal(t, "p1", summary.Items[0].ID)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, "p2", summary.Items[1].ID)
	assert.InDelta(t, 2*8.9+10.9, summary.Total, 1e-9)
}

func TestCartServiceCorruptStorageStartsEmpty(t *testing.T) {
	ctx := context.Background()
	persister := newFakePersister()
	persister.data["sess"] = []byte("{not json")

	svc := NewCartService(persister, &fakeRepo{products: testProducts()})

	summary, err := svc.GetCart(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0.0, summary.Total)
}

func TestCartServiceRejectsUnavailableProduct(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakePersister(), &fakeRepo{products: testProducts()})

	_, err := svc.AddItem(ctx, "sess", "p3", 1)
	assert.Error(t, err)
}

func TestCartServiceRejectsBadQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newFakePersister(), &fakeRepo{products: testProducts()})

	_, err := svc.AddItem(ctx, "sess", "p1", 0)
	assert.Error(t, err)
}

func TestCartServiceRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	persister := newFakePersister()
	svc := NewCartService(persister, &fakeRepo{products: testProducts()})

	_, err := svc.AddItem(ctx, "sess", "p1", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess", "p2", 1)
	require.NoError(t, err)

	summary, err := svc.RemoveItem(ctx, "sess", "p1")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)

	// removing an absent product is a no-op
	summary, err = svc.RemoveItem(ctx, "sess", "p1")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)

	require.NoError(t, svc.ClearCart(ctx, "sess"))
	summary, err = svc.GetCart(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestCartServicePersistFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	persister := newFakePersister()
	persister.saveErr = fmt.Errorf("storage down")

	svc := NewCartService(persister, &fakeRepo{products: testProducts()})

	_, err := svc.AddItem(ctx, "sess", "p1", 1)
	assert.Error(t, err)
}
