package catalog

import (
	"time"

	"bakery-service/internal/models"
)

// DefaultNewBadgeWindow is how long a product counts as "new" after creation.
const DefaultNewBadgeWindow = 14 * 24 * time.Hour

// EffectivePrice returns the price a customer pays for a product: the
// discount price when the product has an active discount, the base price
// otherwise. A nil or zero discount price never counts as a discount; the
// same policy applies everywhere a promotion is detected.
//
// This is a total function. Malformed numeric fields are passed through
// as-is; validating them is the repository's job, not this rule's.
func EffectivePrice(p models.Product) float64 {
	if p.HasDiscount && p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

// HasPromotion reports whether a product is discounted under the same
// policy EffectivePrice uses for its discount branch.
func HasPromotion(p models.Product) bool {
	return p.HasDiscount && p.DiscountPrice != nil && *p.DiscountPrice > 0
}

// IsNew reports whether a product is young enough to carry the "new" badge.
// Products without a creation timestamp are never new.
func IsNew(p models.Product, now time.Time, window time.Duration) bool {
	if p.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(p.CreatedAt) <= window
}
