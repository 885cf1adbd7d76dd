package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/domain"
	"github.com/bafoyewv/SupplyChainLite-sub000/internal/service"
	apperrors "github.com/bafoyewv/SupplyChainLite-sub000/pkg/errors"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/httputil"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/money"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/validator"
)

// DraftHandler handles HTTP requests for draft order endpoints.
type DraftHandler struct {
	service *service.DraftService
	logger  *slog.Logger
}

// NewDraftHandler creates a new draft order HTTP handler.
func NewDraftHandler(svc *service.DraftService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddLineRequest is the JSON request body for adding a line to the draft.
// Quantity is optional and defaults to 1; zero or negative values are
// rejected by the draft itself so they surface as INVALID_QUANTITY, not as
// a validation error.
type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

// SetQuantityRequest is the JSON request body for changing a line quantity.
// Range checks are left to the draft for the same reason as AddLineRequest.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetProductRequest is the JSON request body for repointing a line at a
// different product.
type SetProductRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// --- Response views ---

// LineView is one draft line in API responses. Amounts appear both as cents
// and as formatted decimal strings.
type LineView struct {
	LineID           string        `json:"line_id"`
	ProductID        string        `json:"product_id"`
	ProductName      string        `json:"product_name"`
	Quantity         int           `json:"quantity"`
	UnitPrice        int64         `json:"unit_price"`
	UnitPriceDisplay string        `json:"unit_price_display"`
	Subtotal         int64         `json:"subtotal"`
	SubtotalDisplay  string        `json:"subtotal_display"`
	StockWarning     *stockWarning `json:"stock_warning,omitempty"`
}

type stockWarning struct {
	Requested      int `json:"requested"`
	AvailableStock int `json:"available_stock"`
}

// DraftView is the draft in API responses.
type DraftView struct {
	UserID       string     `json:"user_id"`
	Lines        []LineView `json:"lines"`
	LineCount    int        `json:"line_count"`
	Total        int64      `json:"total"`
	TotalDisplay string     `json:"total_display"`
	Currency     string     `json:"currency"`
	Version      int64      `json:"version"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SubmitView is the response for a successful submission.
type SubmitView struct {
	OrderID string                    `json:"order_id"`
	Order   *domain.SubmissionPayload `json:"order"`
}

func draftView(result *service.DraftResult) DraftView {
	draft := result.Draft

	warningsByLine := make(map[string]domain.StockWarning, len(result.Warnings))
	for _, w := range result.Warnings {
		warningsByLine[w.LineID] = w
	}

	lines := make([]LineView, len(draft.Lines))
	for i, l := range draft.Lines {
		view := LineView{
			LineID:           l.LineID,
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			UnitPriceDisplay: money.FormatCents(l.UnitPrice),
			Subtotal:         l.Subtotal(),
			SubtotalDisplay:  money.FormatCents(l.Subtotal()),
		}
		if w, ok := warningsByLine[l.LineID]; ok {
			view.StockWarning = &stockWarning{
				Requested:      w.Quantity,
				AvailableStock: w.AvailableStock,
			}
		}
		lines[i] = view
	}

	return DraftView{
		UserID:       draft.UserID,
		Lines:        lines,
		LineCount:    len(draft.Lines),
		Total:        draft.GrandTotal(),
		TotalDisplay: money.FormatCents(draft.GrandTotal()),
		Currency:     domain.Currency,
		Version:      draft.Version,
		UpdatedAt:    draft.UpdatedAt,
	}
}

// --- Handlers ---

// GetDraft handles GET /api/v1/draft
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	result, err := h.service.GetDraft(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, draftView(result))
}

// AddLine handles POST /api/v1/draft/lines
func (h *DraftHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	result, err := h.service.AddLine(r.Context(), userID, service.AddLineInput{
		ProductID: req.ProductID,
		Quantity:  quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, draftView(result))
}

// SetLineQuantity handles PUT /api/v1/draft/lines/{lineId}/quantity
func (h *DraftHandler) SetLineQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	lineID := chi.URLParam(r, "lineId")
	if lineID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("lineId is required"), h.logger)
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.SetLineQuantity(r.Context(), userID, lineID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, draftView(result))
}

// SetLineProduct handles PUT /api/v1/draft/lines/{lineId}/product
func (h *DraftHandler) SetLineProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	lineID := chi.URLParam(r, "lineId")
	if lineID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("lineId is required"), h.logger)
		return
	}

	var req SetProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.SetLineProduct(r.Context(), userID, lineID, req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, draftView(result))
}

// RemoveLine handles DELETE /api/v1/draft/lines/{lineId}
func (h *DraftHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	lineID := chi.URLParam(r, "lineId")
	if lineID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("lineId is required"), h.logger)
		return
	}

	result, err := h.service.RemoveLine(r.Context(), userID, lineID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, draftView(result))
}

// DiscardDraft handles DELETE /api/v1/draft
func (h *DraftHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	if err := h.service.DiscardDraft(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "discarded"})
}

// SubmitDraft handles POST /api/v1/draft/submit
func (h *DraftHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	result, err := h.service.SubmitDraft(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, SubmitView{
		OrderID: result.OrderID,
		Order:   result.Payload,
	})
}
