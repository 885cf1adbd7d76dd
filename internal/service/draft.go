package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/domain"
	"github.com/bafoyewv/SupplyChainLite-sub000/internal/repository"
	apperrors "github.com/bafoyewv/SupplyChainLite-sub000/pkg/errors"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/httpclient"
)

// Draft operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single line.
	MaxQuantityPerLine = 100
	// MaxLinesPerDraft is the maximum number of lines allowed in a draft.
	MaxLinesPerDraft = 50
)

// CircuitOpenFallback returns a structured error with a retry hint when the
// downstream circuit is open, instead of letting the raw ErrCircuitOpen
// propagate to the API.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("downstream service is temporarily unavailable, please retry after 30 seconds")
}

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CatalogSource provides point-in-time catalog snapshots. Every draft
// mutation resolves product references against exactly one snapshot.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*domain.Catalog, error)
}

// EventPublisher publishes draft lifecycle events. Publishing is
// best-effort: failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishDraftUpdated(ctx context.Context, draft *domain.Draft) error
	PublishDraftDiscarded(ctx context.Context, userID string) error
	PublishOrderSubmitted(ctx context.Context, userID, orderID string, lineCount int, totalAmount int64) error
}

// AddLineInput holds the parameters for adding a line to the draft.
type AddLineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// DraftResult pairs a draft with the advisory stock warnings derived from
// the catalog snapshot the operation ran against.
type DraftResult struct {
	Draft    *domain.Draft
	Warnings []domain.StockWarning
}

// DraftService implements the business logic for draft order operations.
type DraftService struct {
	repo            repository.DraftRepository
	catalog         CatalogSource
	producer        EventPublisher
	httpClient      HTTPDoer
	orderServiceURL string
	logger          *slog.Logger
	submitTimeout   time.Duration
}

// NewDraftService creates a new draft order service.
func NewDraftService(
	repo repository.DraftRepository,
	catalog CatalogSource,
	producer EventPublisher,
	httpClient HTTPDoer,
	orderServiceURL string,
	logger *slog.Logger,
) *DraftService {
	return &DraftService{
		repo:            repo,
		catalog:         catalog,
		producer:        producer,
		httpClient:      httpClient,
		orderServiceURL: orderServiceURL,
		logger:          logger,
		submitTimeout:   10 * time.Second,
	}
}

// GetDraft retrieves the draft for a user. If no draft exists, an empty one
// is returned without being persisted.
func (s *DraftService) GetDraft(ctx context.Context, userID string) (*DraftResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	draft, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &DraftResult{Draft: domain.NewDraft(userID)}, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		// Warnings are advisory; the draft itself is still served.
		s.logger.WarnContext(ctx, "catalog snapshot unavailable, omitting stock warnings",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return &DraftResult{Draft: draft}, nil
	}

	return &DraftResult{Draft: draft, Warnings: draft.StockWarnings(snap)}, nil
}

// AddLine adds a line item to the user's draft, snapshotting the product's
// current price. Optimistic locking guards concurrent draft edits.
func (s *DraftService) AddLine(ctx context.Context, userID string, input AddLineInput) (*DraftResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidQuantity(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	draft, err := s.getOrCreateDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(draft.Lines) >= MaxLinesPerDraft {
		return nil, apperrors.InvalidInput(fmt.Sprintf("draft must not contain more than %d lines", MaxLinesPerDraft))
	}

	line, err := draft.AddLine(snap, input.ProductID, input.Quantity)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, draft)

	s.logger.InfoContext(ctx, "line added to draft",
		slog.String("user_id", userID),
		slog.String("line_id", line.LineID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return &DraftResult{Draft: draft, Warnings: draft.StockWarnings(snap)}, nil
}

// RemoveLine removes a line from the user's draft. Removing the last line
// leaves an empty draft; emptiness is only rejected at submission.
func (s *DraftService) RemoveLine(ctx context.Context, userID, lineID string) (*DraftResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}

	draft, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("line", lineID)
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if err := draft.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, draft)

	s.logger.InfoContext(ctx, "line removed from draft",
		slog.String("user_id", userID),
		slog.String("line_id", lineID),
	)

	return s.resultWithWarnings(ctx, draft), nil
}

// SetLineQuantity changes the quantity of an existing line. The line's
// price snapshot is kept.
func (s *DraftService) SetLineQuantity(ctx context.Context, userID, lineID string, quantity int) (*DraftResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidQuantity(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	draft, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("line", lineID)
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if _, err := draft.SetLineQuantity(lineID, quantity); err != nil {
		return nil, err
	}

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, draft)

	s.logger.InfoContext(ctx, "line quantity updated",
		slog.String("user_id", userID),
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)

	return s.resultWithWarnings(ctx, draft), nil
}

// SetLineProduct repoints a line at a different product, re-snapshotting
// its unit price from the current catalog.
func (s *DraftService) SetLineProduct(ctx context.Context, userID, lineID, productID string) (*DraftResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	draft, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("line", lineID)
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if _, err := draft.SetLineProduct(snap, lineID, productID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, draft)

	s.logger.InfoContext(ctx, "line product updated",
		slog.String("user_id", userID),
		slog.String("line_id", lineID),
		slog.String("product_id", productID),
	)

	return &DraftResult{Draft: draft, Warnings: draft.StockWarnings(snap)}, nil
}

// DiscardDraft deletes the user's draft. Discarding a missing draft is a
// no-op.
func (s *DraftService) DiscardDraft(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	if err := s.producer.PublishDraftDiscarded(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish draft.discarded event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "draft discarded", slog.String("user_id", userID))
	return nil
}

// SubmitResult is the outcome of a successful draft submission.
type SubmitResult struct {
	OrderID string
	Payload *domain.SubmissionPayload
}

// SubmitDraft validates the draft against a fresh catalog snapshot, posts
// the submission payload to the order service, and on success deletes the
// draft and publishes order.submitted. A draft that fails validation leaves
// everything untouched.
func (s *DraftService) SubmitDraft(ctx context.Context, userID string) (*SubmitResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	draft, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.EmptyOrder()
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	payload, err := draft.ToSubmissionPayload(snap)
	if err != nil {
		return nil, err
	}

	orderID, err := s.createOrder(ctx, payload)
	if err != nil {
		return nil, err
	}

	// The order exists downstream; local cleanup failures must not fail the
	// submission. A leftover draft expires with its TTL.
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete draft after submission",
			slog.String("user_id", userID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderSubmitted(ctx, userID, orderID, len(payload.Items), draft.GrandTotal()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.submitted event",
			slog.String("user_id", userID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "draft submitted",
		slog.String("user_id", userID),
		slog.String("order_id", orderID),
		slog.Int("line_count", len(payload.Items)),
		slog.String("total", payload.Total),
	)

	return &SubmitResult{OrderID: orderID, Payload: payload}, nil
}

// createOrder posts the submission payload to the order service.
func (s *DraftService) createOrder(ctx context.Context, payload *domain.SubmissionPayload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	type createOrderResponse struct {
		Data struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal submission payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.orderServiceURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call order service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpclient.ParseResponseError(resp, "order")
	}

	var orderResp createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if orderResp.Data.OrderID == "" {
		return "", fmt.Errorf("order service returned no order id")
	}

	return orderResp.Data.OrderID, nil
}

func (s *DraftService) getOrCreateDraft(ctx context.Context, userID string) (*domain.Draft, error) {
	draft, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewDraft(userID), nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

// save persists the draft under optimistic locking, bumping its version.
func (s *DraftService) save(ctx context.Context, draft *domain.Draft) error {
	expected := draft.Version
	draft.Version++

	if err := s.repo.SaveIfVersion(ctx, draft, expected); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return apperrors.Conflict("draft was modified concurrently, please retry")
		}
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftService) publishUpdated(ctx context.Context, draft *domain.Draft) {
	if err := s.producer.PublishDraftUpdated(ctx, draft); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish draft.updated event",
			slog.String("user_id", draft.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// resultWithWarnings recomputes stock warnings for operations that did not
// already hold a snapshot. Snapshot failures just omit the warnings.
func (s *DraftService) resultWithWarnings(ctx context.Context, draft *domain.Draft) *DraftResult {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return &DraftResult{Draft: draft}
	}
	return &DraftResult{Draft: draft, Warnings: draft.StockWarnings(snap)}
}
