package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/service"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/httputil"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/money"
)

// CatalogHandler serves the read-only catalog snapshot clients pick
// products from.
type CatalogHandler struct {
	catalog service.CatalogSource
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog service.CatalogSource, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ProductView is one catalog product in API responses.
type ProductView struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	UnitPrice        int64  `json:"unit_price"`
	UnitPriceDisplay string `json:"unit_price_display"`
	AvailableStock   int    `json:"available_stock"`
}

// CatalogView is the catalog snapshot in API responses.
type CatalogView struct {
	Products  []ProductView `json:"products"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// ListProducts handles GET /api/v1/catalog
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	products := make([]ProductView, 0, snap.Len())
	for _, p := range snap.Products() {
		products = append(products, ProductView{
			ProductID:        p.ProductID,
			Name:             p.Name,
			SKU:              p.SKU,
			UnitPrice:        p.UnitPrice,
			UnitPriceDisplay: money.FormatCents(p.UnitPrice),
			AvailableStock:   p.AvailableStock,
		})
	}

	httputil.WriteData(w, http.StatusOK, CatalogView{
		Products:  products,
		FetchedAt: snap.FetchedAt(),
	})
}
