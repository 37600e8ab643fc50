package catalog

import (
	"testing"
	"time"

	"bakery-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []models.Product {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: "p1", Name: "Brownie Tradicional", Price: 8.9, IsAvailable: true, CreatedAt: base},
		{ID: "p2", Name: "Brownie com Nozes", Price: 10.5, IsAvailable: true, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "p3", Name: "Brownie de Doce de Leite", Price: 11.9, HasDiscount: true, DiscountPrice: floatPtr(10.9), IsAvailable: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p4", Name: "Brownie Nutella", Price: 12.9, IsAvailable: false, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "p5", Name: "Brownie NUTELLA Duplo", Price: 14.9, IsAvailable: true, CreatedAt: base.Add(4 * time.Hour)},
	}
}

func ids(items []models.Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestApplyTextFilterCaseInsensitive(t *testing.T) {
	view := NewView(10)

	page := view.Apply(sampleProducts(), ViewConfig{Query: "nutella", Page: 1, PageSize: 10})

	assert.Equal(t, 2, page.TotalCount)
	assert.ElementsMatch(t, []string{"p4", "p5"}, ids(page.Items))
}

func TestApplyEmptyQueryMatchesAll(t *testing.T) {
	view := NewView(10)

	page := view.Apply(sampleProducts(), ViewConfig{Page: 1, PageSize: 10})

	assert.Equal(t, 5, page.TotalCount)
}

func TestApplyAvailabilityFilter(t *testing.T) {
	view := NewView(10)

	page := view.Apply(sampleProducts(), ViewConfig{OnlyAvailable: true, Page: 1, PageSize: 10})

	assert.Equal(t, 4, page.TotalCount)
	for _, p := range page.Items {
		assert.True(t, p.IsAvailable)
	}
}

func TestApplyPromotionFilter(t *testing.T) {
	view := NewView(10)

	page := view.Apply(sampleProducts(), ViewConfig{OnlyPromotion: true, Page: 1, PageSize: 10})

	require.Len(t, page.Items, 1)
	assert.Equal(t, "p3", page.Items[0].ID)
}

func TestApplyFilterIdempotent(t *testing.T) {
	view := NewView(10)
	cfg := ViewConfig{Query: "brownie", OnlyAvailable: true, Page: 1, PageSize: 10}

	once := view.Apply(sampleProducts(), cfg)
	twice := view.Apply(once.Items, cfg)

	assert.Equal(t, ids(once.Items), ids(twice.Items))
}

func TestSortRecent(t *testing.T) {
	view := NewView(10)

	page := view.Apply(sampleProducts(), ViewConfig{SortKey: SortRecent, Page: 1, PageSize: 10})

	assert.Equal(t, []string{"p5", "p4", "p3", "p2", "p1"}, ids(page.Items))
}

func TestSortRecentMissingTimestampLast(t *testing.T) {
	view := NewView(10)
	products := []models.Product{
		{ID: "a"}, // no timestamp
		{ID: "b", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	page := view.Apply(products, ViewConfig{SortKey: SortRecent, Page: 1, PageSize: 10})

	assert.Equal(t, []string{"b", "a"}, ids(page.Items))
}

func TestSortByName(t *testing.T) {
	view := NewView(10)

	asc := view.Apply(sampleProducts(), ViewConfig{SortKey: SortNameAsc, Page: 1, PageSize: 10})
	assert.Equal(t, "Brownie com Nozes", asc.Items[0].Name)

	desc := view.Apply(sampleProducts(), ViewConfig{SortKey: SortNameDesc, Page: 1, PageSize: 10})
	assert.Equal(t, asc.Items[0].Name, desc.Items[len(desc.Items)-1].Name)
	assert.Equal(t, asc.Items[len(asc.Items)-1].Name, desc.Items[0].Name)
}

func TestSortByPriceUsesEffectivePrice(t *testing.T) {
	view := NewView(10)
	// p3 costs 11.9 nominally but 10.9 effective, so it ranks below p2 (10.5)
	// and above nothing over 10.9
	products := []models.Product{
		{ID: "p4", Name: "Nutella", Price: 12.9, IsAvailable: true},
		{ID: "p3", Name: "Doce de Leite", Price: 11.9, HasDiscount: true, DiscountPrice: floatPtr(10.9), IsAvailable: true},
		{ID: "p2", Name: "Nozes", Price: 10.5, IsAvailable: true},
	}

	page := view.Apply(products, ViewConfig{SortKey: SortPriceAsc, Page: 1, PageSize: 10})

	assert.Equal(t, []string{"p2", "p3", "p4"}, ids(page.Items))

	desc := view.Apply(products, ViewConfig{SortKey: SortPriceDesc, Page: 1, PageSize: 10})
	assert.Equal(t, []string{"p4", "p3", "p2"}, ids(desc.Items))
}

func TestSortStability(t *testing.T) {
	view := NewView(10)
	// equal prices keep their input order
	products := []models.Product{
		{ID: "first", Name: "A", Price: 10},
		{ID: "second", Name: "B", Price: 10},
		{ID: "third", Name: "C", Price: 10},
	}

	page := view.Apply(products, ViewConfig{SortKey: SortPriceAsc, Page: 1, PageSize: 10})

	assert.Equal(t, []string{"first", "second", "third"}, ids(page.Items))
}

func TestUnknownSortKeyKeepsOrder(t *testing.T) {
	view := NewView(10)
	products := sampleProducts()

	page := view.Apply(products, ViewConfig{SortKey: "bogus", Page: 1, PageSize: 10})

	assert.Equal(t, ids(products), ids(page.Items))
}

func TestPagination(t *testing.T) {
	view := NewView(10)
	products := sampleProducts()

	page := view.Apply(products, ViewConfig{Page: 1, PageSize: 2})
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.TotalCount)
	assert.Len(t, page.Items, 2)

	last := view.Apply(products, ViewConfig{Page: 3, PageSize: 2})
	assert.Len(t, last.Items, 1)
}

func TestPaginationClamps(t *testing.T) {
	view := NewView(10)
	products := sampleProducts()

	// page 0 clamps to the first page
	first := view.Apply(products, ViewConfig{Page: 0, PageSize: 2})
	assert.Equal(t, 1, first.Page)
	assert.Len(t, first.Items, 2)

	// page beyond the end clamps to the last page
	last := view.Apply(products, ViewConfig{Page: 99, PageSize: 2})
	assert.Equal(t, 3, last.Page)
	assert.Len(t, last.Items, 1)
}

func TestPaginationDefaultPageSize(t *testing.T) {
	view := NewView(3)

	page := view.Apply(sampleProducts(), ViewConfig{Page: 1, PageSize: 0})

	assert.Len(t, page.Items, 3)
	assert.Equal(t, 2, page.TotalPages)
}

func TestApplyEmptyCollection(t *testing.T) {
	view := NewView(10)

	page := view.Apply(nil, ViewConfig{Query: "anything", Page: 5, PageSize: 10})

	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.TotalCount)
}

func TestPageNeverExceedsPageSize(t *testing.T) {
	view := NewView(10)
	products := sampleProducts()

	for _, size := range []int{1, 2, 3, 10} {
		for p := 0; p <= 5; p++ {
			page := view.Apply(products, ViewConfig{Page: p, PageSize: size})
			assert.LessOrEqual(t, len(page.Items), size)
		}
	}
}
