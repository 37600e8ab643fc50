package service

import (
	"context"
	"fmt"
	"time"

	"bakery-service/internal/catalog"
	"bakery-service/internal/models"
	"bakery-service/internal/store"
	"bakery-service/internal/util"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ProductRepository is the persistence contract the catalog depends on.
// *store.Store implements it; tests supply fakes.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id string, update store.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	SeedProducts(ctx context.Context, products []models.Product) (int, error)
}

// ProductPatch is the partial-update shape accepted by the admin API
type ProductPatch = store.ProductUpdate

// CatalogCache caches the full product collection between reloads.
// Implemented by redisclient.Client; may be nil to disable caching.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]models.Product, error)
	SetCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context) error
}

// CatalogService serves the admin and public catalog views and the product
// CRUD behind them. Views always operate on a full reload of the
// collection; there is no incremental sync.
type CatalogService struct {
	repo           ProductRepository
	cache          CatalogCache
	view           *catalog.View
	cacheTTL       time.Duration
	newBadgeWindow time.Duration
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo ProductRepository, cache CatalogCache, defaultPageSize int, cacheTTL, newBadgeWindow time.Duration) *CatalogService {
	if newBadgeWindow <= 0 {
		newBadgeWindow = catalog.DefaultNewBadgeWindow
	}
	return &CatalogService{
		repo:           repo,
		cache:          cache,
		view:           catalog.NewView(defaultPageSize),
		cacheTTL:       cacheTTL,
		newBadgeWindow: newBadgeWindow,
		logger:         util.Named("catalog"),
	}
}

// MenuItem is a product decorated with the derived fields the public menu
// renders
type MenuItem struct {
	models.Product
	EffectivePrice float64 `json:"effectivePrice"`
	IsPromotion    bool    `json:"isPromotion"`
	IsNew          bool    `json:"isNew"`
}

// MenuPage is one page of the public menu
type MenuPage struct {
	Items      []MenuItem `json:"items"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	TotalCount int        `json:"total_count"`
}

// AdminList serves the admin product list. Admins see unavailable products
// and may narrow to available ones; the promotion filter belongs to the
// public view and is ignored here.
func (cs *CatalogService) AdminList(ctx context.Context, cfg catalog.ViewConfig) (catalog.Page, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AdminList")
	defer span.End()

	util.CatalogQueriesTotal.WithLabelValues("admin").Inc()

	cfg.OnlyPromotion = false

	products, err := cs.repo.ListProducts(ctx)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("failed to load products: %w", err)
	}
	return cs.view.Apply(products, cfg), nil
}

// MenuList serves the public menu. Only available products are listable;
// the availability filter belongs to the admin view and is ignored here.
func (cs *CatalogService) MenuList(ctx context.Context, cfg catalog.ViewConfig) (MenuPage, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.MenuList")
	defer span.End()

	util.CatalogQueriesTotal.WithLabelValues("menu").Inc()

	cfg.OnlyAvailable = true

	products, err := cs.loadCatalog(ctx)
	if err != nil {
		return MenuPage{}, fmt.Errorf("failed to load products: %w", err)
	}

	page := cs.view.Apply(products, cfg)

	now := time.Now()
	items := make([]MenuItem, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, MenuItem{
			Product:        p,
			EffectivePrice: catalog.EffectivePrice(p),
			IsPromotion:    catalog.HasPromotion(p),
			IsNew:          catalog.IsNew(p, now, cs.newBadgeWindow),
		})
	}

	return MenuPage{
		Items:      items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		TotalCount: page.TotalCount,
	}, nil
}

// loadCatalog returns the full collection, preferring the cache on the
// public path. Cache failures degrade to the database, never to an error.
func (cs *CatalogService) loadCatalog(ctx context.Context) ([]models.Product, error) {
	if cs.cache != nil {
		cached, err := cs.cache.GetCatalog(ctx)
		if err != nil {
			cs.logger.Warn("Catalog cache read failed", zap.Error(err))
			util.CatalogCacheHitsTotal.WithLabelValues("error").Inc()
		} else if cached != nil {
			util.CatalogCacheHitsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		} else {
			util.CatalogCacheHitsTotal.WithLabelValues("miss").Inc()
		}
	}

	products, err := cs.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if cs.cache != nil {
		if err := cs.cache.SetCatalog(ctx, products, cs.cacheTTL); err != nil {
			cs.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// GetProduct retrieves one product
func (cs *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return cs.repo.GetProductByID(ctx, id)
}

// CreateProductRequest carries the fields of a new product
type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"min=0"`
	HasDiscount   bool     `json:"hasDiscount"`
	DiscountPrice *float64 `json:"discountPrice"`
	Images        []string `json:"images"`
	IsAvailable   *bool    `json:"isAvailable"`
}

// CreateProduct creates a product and invalidates the catalog cache
func (cs *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if len(req.Images) > 3 {
		return nil, fmt.Errorf("at most 3 images per product")
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		HasDiscount:   req.HasDiscount,
		DiscountPrice: req.DiscountPrice,
		Images:        pq.StringArray(req.Images),
		IsAvailable:   available,
	}

	if err := cs.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductMutationsTotal.WithLabelValues("create").Inc()
	cs.invalidate(ctx)
	cs.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct applies a partial update and invalidates the catalog cache
func (cs *CatalogService) UpdateProduct(ctx context.Context, id string, update store.ProductUpdate) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if update.Images != nil && len(*update.Images) > 3 {
		return nil, fmt.Errorf("at most 3 images per product")
	}

	product, err := cs.repo.UpdateProduct(ctx, id, update)
	if err != nil {
		return nil, err
	}

	util.ProductMutationsTotal.WithLabelValues("update").Inc()
	cs.invalidate(ctx)
	return product, nil
}

// DeleteProduct deletes a product and invalidates the catalog cache
func (cs *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if err := cs.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	util.ProductMutationsTotal.WithLabelValues("delete").Inc()
	cs.invalidate(ctx)
	return nil
}

// SeedProducts inserts the sample brownies, skipping names that already
// exist, and returns how many were inserted
func (cs *CatalogService) SeedProducts(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SeedProducts")
	defer span.End()

	inserted, err := cs.repo.SeedProducts(ctx, SampleProducts())
	if err != nil {
		return inserted, fmt.Errorf("failed to seed products: %w", err)
	}

	util.ProductMutationsTotal.WithLabelValues("seed").Inc()
	if inserted > 0 {
		cs.invalidate(ctx)
	}
	cs.logger.Info("Seed completed", zap.Int("inserted", inserted))
	return inserted, nil
}

func (cs *CatalogService) invalidate(ctx context.Context) {
	if cs.cache == nil {
		return
	}
	if err := cs.cache.InvalidateCatalog(ctx); err != nil {
		cs.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
