package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MiulesiKulasekara/cart-service/internal/cache"
	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"github.com/MiulesiKulasekara/cart-service/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// PriceResolver provides live product records from the catalog service.
type PriceResolver interface {
	GetProduct(ctx context.Context, productID, token string) (*domain.Product, error)
}

// CouponResolver provides the current coupon list.
type CouponResolver interface {
	GetCoupons(ctx context.Context, token string) ([]domain.Coupon, error)
}

// ItemRequest is one validated line of an inbound merge request.
type ItemRequest struct {
	ProductID string
	Count     int
}

type CartService struct {
	store    repository.CartStore
	cache    cache.CartCache
	catalog  PriceResolver
	coupons  CouponResolver
	maxItems int
	logger   zerolog.Logger
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(store repository.CartStore, cartCache cache.CartCache, catalog PriceResolver, coupons CouponResolver, maxItems int, logger zerolog.Logger) *CartService {
	return &CartService{
		store:    store,
		cache:    cartCache,
		catalog:  catalog,
		coupons:  coupons,
		maxItems: maxItems,
		logger:   logger,
	}
}

// MergeCart reconciles the requested items into the owner's cart.
// Existing lines accumulate count and keep their stored price; unseen
// lines are priced through the catalog. Repeated merges keep adding.
//
// The load-then-upsert below is not guarded per owner: two concurrent
// merges for the same owner can lose an update.
func (s *CartService) MergeCart(ctx context.Context, ownerID string, requested []ItemRequest, token string) (*domain.Cart, error) {
	if len(requested) == 0 || len(requested) > s.maxItems {
		return nil, ErrInvalidCartData
	}
	for _, r := range requested {
		if r.ProductID == "" || r.Count <= 0 {
			return nil, ErrInvalidCartData
		}
	}

	cart, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if cart == nil {
		cart, err = s.buildCart(ctx, ownerID, requested, token)
		if err != nil {
			return nil, err
		}
	} else {
		s.mergeInto(ctx, cart, requested, token)
	}

	cart.Subtotal = CalculateCartTotal(cart.Items)
	cart.Tax = cart.Subtotal * taxRate
	cart.CartTotal = cart.Subtotal + cart.Tax

	if err := s.store.Upsert(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.invalidateCache(ownerID)
	return cart, nil
}

// buildCart prices every requested item. There is no fallback state on
// first creation, so any lookup failure aborts the whole merge.
func (s *CartService) buildCart(ctx context.Context, ownerID string, requested []ItemRequest, token string) (*domain.Cart, error) {
	cart := &domain.Cart{
		OwnerID: ownerID,
		Items:   make([]domain.CartItem, 0, len(requested)),
	}

	for _, r := range requested {
		// Fold duplicates within one request; product ids stay unique.
		if i := cart.FindItem(r.ProductID); i >= 0 {
			cart.Items[i].Count += r.Count
			continue
		}

		product, err := s.catalog.GetProduct(ctx, r.ProductID, token)
		if err != nil {
			return nil, fmt.Errorf("price lookup for %s: %w", r.ProductID, err)
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: r.ProductID,
			Count:     r.Count,
			UnitPrice: product.Price,
		})
	}

	return cart, nil
}

// mergeInto folds the requested items into an existing cart. A failed
// price lookup drops that single item and the merge carries on.
func (s *CartService) mergeInto(ctx context.Context, cart *domain.Cart, requested []ItemRequest, token string) {
	for _, r := range requested {
		if i := cart.FindItem(r.ProductID); i >= 0 {
			// Price deliberately not refreshed on existing lines.
			cart.Items[i].Count += r.Count
			continue
		}

		product, err := s.catalog.GetProduct(ctx, r.ProductID, token)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("owner_id", cart.OwnerID).
				Str("product_id", r.ProductID).
				Msg("price lookup failed, skipping item")
			continue
		}

		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: r.ProductID,
			Count:     r.Count,
			UnitPrice: product.Price,
		})
	}
}

// ApplyCoupon matches the code case-insensitively against the coupon
// service's list and persists the discounted total. The discount is
// always taken off the stored pre-discount total, so re-applying a
// coupon never compounds.
func (s *CartService) ApplyCoupon(ctx context.Context, ownerID, couponName, token string) (float64, error) {
	coupons, err := s.coupons.GetCoupons(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch coupons: %w", err)
	}

	var valid *domain.Coupon
	for i := range coupons {
		if strings.EqualFold(coupons[i].Name, couponName) {
			valid = &coupons[i]
			break
		}
	}
	if valid == nil {
		return 0, ErrInvalidCoupon
	}

	cart, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return 0, ErrCartNotFound
		}
		return 0, fmt.Errorf("failed to load cart: %w", err)
	}

	discounted := discountedTotal(cart.CartTotal, valid.Discount)

	err = s.store.UpdateFields(ctx, ownerID, map[string]interface{}{
		"discounted_total": discounted,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to persist discounted total: %w", err)
	}

	s.invalidateCache(ownerID)
	return discounted, nil
}

// RemoveItem drops the matching line and recomputes totals. Removing
// from a missing cart, or removing an absent item, is a no-op success.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	err := s.store.RemoveItem(ctx, ownerID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	cart, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}

	cart.Subtotal = CalculateCartTotal(cart.Items)
	cart.Tax = cart.Subtotal * taxRate
	cart.CartTotal = cart.Subtotal + cart.Tax

	if err := s.store.Upsert(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.invalidateCache(ownerID)
	return cart, nil
}

// GetCart returns the owner's cart with every stored product reference
// replaced by the live catalog record. Any single enrichment failure
// fails the whole read; the stored document keeps only the reference.
func (s *CartService) GetCart(ctx context.Context, ownerID, token string) (*domain.EnrichedCart, error) {
	cart, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.EnrichedItem, len(cart.Items))
	for i, item := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID, token)
		if err != nil {
			return nil, fmt.Errorf("failed to enrich item %s: %w", item.ProductID, err)
		}
		items[i] = domain.EnrichedItem{
			ProductID: item.ProductID,
			Count:     item.Count,
			UnitPrice: item.UnitPrice,
			Product:   *product,
		}
	}

	return &domain.EnrichedCart{Cart: *cart, Items: items}, nil
}

// loadCart prunes null item entries, then reads the stored cart through
// the cache. A missing cart and a cart that pruned down to zero items
// both surface as ErrCartNotFound.
func (s *CartService) loadCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	if err := s.store.PruneNullItems(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("prune null items failed")
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, ownerID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("cache get error") // log cache error but continue
		}

		cart, errGet := s.store.FindByOwner(ctx, ownerID)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrCartNotFound) {
				return nil, ErrCartNotFound
			}
			return nil, errGet
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), ownerID, cart); errSet != nil {
				s.logger.Warn().Err(errSet).Msg("cache set error")
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	cart := v.(*domain.Cart)
	if len(cart.Items) == 0 {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// EmptyCart deletes the owner's cart and returns what was deleted, or
// nil when there was nothing to delete. Idempotent.
func (s *CartService) EmptyCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	removed, err := s.store.DeleteByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to empty cart: %w", err)
	}

	s.invalidateCache(ownerID)
	return removed, nil
}

func (s *CartService) invalidateCache(ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("cache invalidate error")
	}
}
