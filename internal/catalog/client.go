package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/domain"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/httpclient"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/money"
)

const cacheKey = "catalog:snapshot"

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// productDTO mirrors one product in the product service's list response.
// Prices cross the wire as decimal strings.
type productDTO struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	UnitPrice      string `json:"unit_price"`
	AvailableStock int    `json:"available_stock"`
}

type listResponse struct {
	Data struct {
		Products []productDTO `json:"products"`
	} `json:"data"`
}

// cachedSnapshot is the Redis representation of a catalog snapshot.
type cachedSnapshot struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Products  []domain.Product `json:"products"`
}

// Client fetches point-in-time catalog snapshots from the product service,
// with a short Redis cache in front so a burst of draft edits does not
// hammer the catalog. Cache failures degrade to a direct fetch.
type Client struct {
	httpClient HTTPDoer
	redis      *redis.Client
	baseURL    string
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewClient creates a new catalog client.
func NewClient(httpClient HTTPDoer, redisClient *redis.Client, baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		redis:      redisClient,
		baseURL:    baseURL,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Snapshot returns the current catalog snapshot, from cache when fresh.
func (c *Client) Snapshot(ctx context.Context) (*domain.Catalog, error) {
	if snap, ok := c.fromCache(ctx); ok {
		return snap, nil
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, snap)
	return snap, nil
}

func (c *Client) fetch(ctx context.Context) (*domain.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/products", nil)
	if err != nil {
		return nil, fmt.Errorf("create product list request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call product service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "product")
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}

	products := make([]domain.Product, 0, len(list.Data.Products))
	for _, dto := range list.Data.Products {
		cents, err := money.ParseCents(dto.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s has unparseable price %q: %w", dto.ProductID, dto.UnitPrice, err)
		}
		products = append(products, domain.Product{
			ProductID:      dto.ProductID,
			Name:           dto.Name,
			SKU:            dto.SKU,
			UnitPrice:      cents,
			AvailableStock: dto.AvailableStock,
		})
	}

	return domain.NewCatalog(products, time.Now().UTC()), nil
}

func (c *Client) fromCache(ctx context.Context) (*domain.Catalog, bool) {
	if c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "catalog cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var snap cachedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.WarnContext(ctx, "catalog cache entry corrupt", slog.String("error", err.Error()))
		return nil, false
	}

	return domain.NewCatalog(snap.Products, snap.FetchedAt), true
}

func (c *Client) toCache(ctx context.Context, catalog *domain.Catalog) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(cachedSnapshot{
		FetchedAt: catalog.FetchedAt(),
		Products:  catalog.Products(),
	})
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", slog.String("error", err.Error()))
	}
}
