package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/MiulesiKulasekara/cart-service/internal/cache"
	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"github.com/MiulesiKulasekara/cart-service/internal/repository"
)

type mockStore struct {
	m       sync.RWMutex
	cart    *domain.Cart
	err     error
	upserts int
}

func (m *mockStore) FindByOwner(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	copied := *m.cart
	copied.Items = append([]domain.CartItem(nil), m.cart.Items...)
	return &copied, nil
}

func (m *mockStore) Upsert(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	if m.cart != nil {
		copied.DiscountedTotal = m.cart.DiscountedTotal
	}
	m.cart = &copied
	m.upserts++
	return nil
}

func (m *mockStore) UpdateFields(_ context.Context, _ string, fields map[string]interface{}) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	if v, ok := fields["discounted_total"].(float64); ok {
		m.cart.DiscountedTotal = &v
	}
	return nil
}

func (m *mockStore) RemoveItem(_ context.Context, _ string, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	for i, item := range m.cart.Items {
		if item.ProductID == productID {
			m.cart.Items = append(m.cart.Items[:i], m.cart.Items[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockStore) PruneNullItems(context.Context, string) error {
	return nil
}

func (m *mockStore) DeleteByOwner(context.Context, string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	removed := m.cart
	m.cart = nil
	return removed, nil
}

func (m *mockStore) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockCatalog struct {
	m      sync.Mutex
	prices map[string]float64
	fail   map[string]bool
	calls  []string
}

func (m *mockCatalog) GetProduct(_ context.Context, productID, _ string) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls = append(m.calls, productID)
	if m.fail[productID] {
		return nil, fmt.Errorf("catalog unavailable")
	}
	price, ok := m.prices[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	return &domain.Product{
		ID:    productID,
		Title: "product " + productID,
		Price: price,
	}, nil
}

func (m *mockCatalog) lookups(productID string) int {
	m.m.Lock()
	defer m.m.Unlock()
	n := 0
	for _, id := range m.calls {
		if id == productID {
			n++
		}
	}
	return n
}

type mockCoupons struct {
	coupons []domain.Coupon
	err     error
}

func (m *mockCoupons) GetCoupons(context.Context, string) ([]domain.Coupon, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.coupons, nil
}
