package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"
)

var _ ports.Catalog = (*Client)(nil)

// Client resolves products from the catalog service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the catalog client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// productPayload mirrors the catalog service's product representation.
type productPayload struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	MinOrderQuantity int     `json:"minOrderQuantity"`
	Stock            int     `json:"stock"`
	SupplierID       string  `json:"supplierId"`
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*ports.Product, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("catalog client not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ports.ErrProductNotFound
	}
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog API: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		var payload productPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode catalog response: %w", err)
		}
		return &ports.Product{
			ID:               payload.ID,
			Name:             payload.Name,
			Price:            payload.Price,
			Status:           ports.ProductStatus(payload.Status),
			MinOrderQuantity: payload.MinOrderQuantity,
			Stock:            payload.Stock,
			SupplierID:       payload.SupplierID,
		}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ports.ErrProductNotFound
	default:
		return nil, fmt.Errorf("catalog API unexpected status: %s", resp.Status)
	}
}
