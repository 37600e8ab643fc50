package service

import (
	"context"
	"fmt"

	"bakery-service/internal/cart"
	"bakery-service/internal/catalog"
	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"go.uber.org/zap"
)

// CartPersister is the durable key-value storage behind session carts.
// Implemented by redisclient.Client.
type CartPersister interface {
	LoadCart(ctx context.Context, sessionID string) ([]models.CartItem, error)
	SaveCart(ctx context.Context, sessionID string, items []models.CartItem) error
	DeleteCart(ctx context.Context, sessionID string) error
}

// CartService runs session cart mutations with write-through persistence:
// every mutation is saved before the call returns, so a rehydration
// immediately afterwards observes it.
type CartService struct {
	persister CartPersister
	repo      ProductRepository
	logger    *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(persister CartPersister, repo ProductRepository) *CartService {
	return &CartService{
		persister: persister,
		repo:      repo,
		logger:    util.Named("cart"),
	}
}

// CartSummary is a cart with its derived totals
type CartSummary struct {
	Items     []models.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

// load rehydrates the session cart. Missing or corrupt persisted data
// yields an empty cart, never an error.
func (cs *CartService) load(ctx context.Context, sessionID string) *cart.Store {
	items, err := cs.persister.LoadCart(ctx, sessionID)
	if err != nil {
		cs.logger.Warn("Cart rehydration failed, starting empty",
			zap.String("session_id", sessionID),
			zap.Error(err))
		util.CartRehydrateFailures.Inc()
		return cart.NewStore(nil)
	}
	return cart.NewStore(items)
}

func (cs *CartService) save(ctx context.Context, sessionID string, s *cart.Store) error {
	if err := cs.persister.SaveCart(ctx, sessionID, s.Items()); err != nil {
		util.CartPersistFailures.Inc()
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func summarize(s *cart.Store) *CartSummary {
	return &CartSummary{
		Items:     s.Items(),
		Total:     s.Total(),
		ItemCount: s.Len(),
	}
}

// GetCart returns the current cart for a session
func (cs *CartService) GetCart(ctx context.Context, sessionID string) (*CartSummary, error) {
	return summarize(cs.load(ctx, sessionID)), nil
}

// AddItem adds a product to the session cart. The line price is the
// product's effective price at add time; adding the same product again
// only grows the quantity and never refreshes the captured price.
func (cs *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*CartSummary, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	product, err := cs.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, fmt.Errorf("product not available: %s", productID)
	}

	s := cs.load(ctx, sessionID)
	s.AddItem(models.CartItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    catalog.EffectivePrice(*product),
		Quantity: quantity,
	})

	if err := cs.save(ctx, sessionID, s); err != nil {
		return nil, err
	}

	util.CartOperationsTotal.WithLabelValues("add").Inc()
	return summarize(s), nil
}

// RemoveItem removes a product from the session cart. Removing an absent
// product is a no-op.
func (cs *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*CartSummary, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	s := cs.load(ctx, sessionID)
	s.RemoveItem(productID)

	if err := cs.save(ctx, sessionID, s); err != nil {
		return nil, err
	}

	util.CartOperationsTotal.WithLabelValues("remove").Inc()
	return summarize(s), nil
}

// ClearCart empties the session cart and drops its persisted state
func (cs *CartService) ClearCart(ctx context.Context, sessionID string) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := cs.persister.DeleteCart(ctx, sessionID); err != nil {
		util.CartPersistFailures.Inc()
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	util.CartOperationsTotal.WithLabelValues("clear").Inc()
	return nil
}
