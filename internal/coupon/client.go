package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client fetches the current coupon list from the coupon service.
// Matching by name happens locally in the cart service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) GetCoupons(ctx context.Context, token string) ([]domain.Coupon, error) {
	url := c.baseURL + "/api/coupon/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build coupon request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coupon lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coupon lookup returned status %d", resp.StatusCode)
	}

	var coupons []domain.Coupon
	if err := json.NewDecoder(resp.Body).Decode(&coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupon response: %w", err)
	}

	return coupons, nil
}
