package catalog

import (
	"sort"
	"strings"

	"bakery-service/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a catalog view.
type SortKey string

const (
	SortRecent    SortKey = "recent"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// ViewConfig describes one render of a product collection. Callers must
// reset Page to 1 whenever Query, the filter flags, SortKey or PageSize
// change; Apply is stateless per call and only clamps a stale page into
// range, which would otherwise show confusing results.
type ViewConfig struct {
	Query         string
	OnlyAvailable bool
	OnlyPromotion bool
	SortKey       SortKey
	Page          int
	PageSize      int
}

// Page is the result of applying a ViewConfig to a product collection.
type Page struct {
	Items      []models.Product `json:"items"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	TotalCount int              `json:"total_count"`
}

// View applies filter, sort and pagination rules to an in-memory product
// collection. It holds no per-call state and is safe for concurrent use.
type View struct {
	tag             language.Tag
	defaultPageSize int
}

// NewView creates a catalog view. defaultPageSize is used when a config
// carries a page size below 1.
func NewView(defaultPageSize int) *View {
	if defaultPageSize < 1 {
		defaultPageSize = 10
	}
	return &View{
		tag:             language.BrazilianPortuguese,
		defaultPageSize: defaultPageSize,
	}
}

// Apply runs the fixed pipeline: text filter, availability filter,
// promotion filter, stable sort, pagination. It is a total function over
// possibly-empty collections and never errors; an out-of-range page is
// clamped into [1, TotalPages].
func (v *View) Apply(products []models.Product, cfg ViewConfig) Page {
	filtered := v.filter(products, cfg)
	v.sortProducts(filtered, cfg.SortKey)
	return v.paginate(filtered, cfg)
}

func (v *View) filter(products []models.Product, cfg ViewConfig) []models.Product {
	query := strings.ToLower(strings.TrimSpace(cfg.Query))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if cfg.OnlyAvailable && !p.IsAvailable {
			continue
		}
		if cfg.OnlyPromotion && !HasPromotion(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// sortProducts sorts in place. The sort is stable so that items with equal
// keys keep their relative order from the previous pipeline stage. An
// unknown sort key leaves the order untouched.
func (v *View) sortProducts(products []models.Product, key SortKey) {
	switch key {
	case SortRecent:
		sort.SliceStable(products, func(i, j int) bool {
			// missing timestamps sort as epoch, i.e. last
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	case SortNameAsc, SortNameDesc:
		c := collate.New(v.tag)
		sort.SliceStable(products, func(i, j int) bool {
			cmp := c.CompareString(products[i].Name, products[j].Name)
			if key == SortNameDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return EffectivePrice(products[i]) < EffectivePrice(products[j])
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return EffectivePrice(products[i]) > EffectivePrice(products[j])
		})
	}
}

func (v *View) paginate(products []models.Product, cfg ViewConfig) Page {
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = v.defaultPageSize
	}

	total := len(products)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := cfg.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      products[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
