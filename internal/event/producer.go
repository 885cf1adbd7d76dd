package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/domain"
	pkgkafka "github.com/bafoyewv/SupplyChainLite-sub000/pkg/kafka"
)

// Kafka topic constants for draft order domain events.
const (
	TopicDraftUpdated   = "supply.draft.updated"
	TopicDraftDiscarded = "supply.draft.discarded"
	TopicOrderSubmitted = "supply.order.submitted"
)

// Aggregate type constant.
const AggregateTypeDraft = "draft"

// Source identifier for events originating from the draft order service.
const SourceDraftService = "draft-order-service"

// DraftUpdatedData is the payload for a draft.updated event.
type DraftUpdatedData struct {
	UserID      string     `json:"user_id"`
	Lines       []LineData `json:"lines"`
	LineCount   int        `json:"line_count"`
	TotalAmount int64      `json:"total_amount"`
	Currency    string     `json:"currency"`
	Version     int64      `json:"version"`
}

// LineData is the line payload within draft events.
type LineData struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// DraftDiscardedData is the payload for a draft.discarded event.
type DraftDiscardedData struct {
	UserID string `json:"user_id"`
}

// OrderSubmittedData is the payload for an order.submitted event.
type OrderSubmittedData struct {
	UserID      string `json:"user_id"`
	OrderID     string `json:"order_id"`
	LineCount   int    `json:"line_count"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// Producer publishes draft order domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the draft order service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishDraftUpdated publishes a draft.updated event.
func (p *Producer) PublishDraftUpdated(ctx context.Context, draft *domain.Draft) error {
	lines := make([]LineData, len(draft.Lines))
	for i, l := range draft.Lines {
		lines[i] = LineData{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Name:      l.ProductName,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
	}

	data := DraftUpdatedData{
		UserID:      draft.UserID,
		Lines:       lines,
		LineCount:   len(draft.Lines),
		TotalAmount: draft.GrandTotal(),
		Currency:    domain.Currency,
		Version:     draft.Version,
	}

	event, err := pkgkafka.NewEvent(TopicDraftUpdated, draft.UserID, AggregateTypeDraft, SourceDraftService, data)
	if err != nil {
		return fmt.Errorf("create draft.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicDraftUpdated, event); err != nil {
		return fmt.Errorf("publish draft.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published draft.updated event",
		slog.String("user_id", draft.UserID),
		slog.Int("line_count", len(draft.Lines)),
	)

	return nil
}

// PublishDraftDiscarded publishes a draft.discarded event.
func (p *Producer) PublishDraftDiscarded(ctx context.Context, userID string) error {
	data := DraftDiscardedData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicDraftDiscarded, userID, AggregateTypeDraft, SourceDraftService, data)
	if err != nil {
		return fmt.Errorf("create draft.discarded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicDraftDiscarded, event); err != nil {
		return fmt.Errorf("publish draft.discarded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published draft.discarded event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishOrderSubmitted publishes an order.submitted event after the order
// service accepted the draft.
func (p *Producer) PublishOrderSubmitted(ctx context.Context, userID, orderID string, lineCount int, totalAmount int64) error {
	data := OrderSubmittedData{
		UserID:      userID,
		OrderID:     orderID,
		LineCount:   lineCount,
		TotalAmount: totalAmount,
		Currency:    domain.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicOrderSubmitted, userID, AggregateTypeDraft, SourceDraftService, data)
	if err != nil {
		return fmt.Errorf("create order.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderSubmitted, event); err != nil {
		return fmt.Errorf("publish order.submitted event: %w", err)
	}

	p.logger.InfoContext(ctx, "published order.submitted event",
		slog.String("user_id", userID),
		slog.String("order_id", orderID),
	)

	return nil
}
