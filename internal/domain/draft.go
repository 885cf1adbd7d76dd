package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bafoyewv/SupplyChainLite-sub000/pkg/errors"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/money"
)

// Currency is the single currency all drafts are priced in.
const Currency = "USD"

// Line is one line item of a draft order. UnitPrice is in cents and is
// snapshotted from the catalog when the line is added or its product is
// changed; quantity edits never touch it.
type Line struct {
	LineID      string    `json:"line_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	AddedAt     time.Time `json:"added_at"`
}

// Subtotal returns quantity times unit price in cents.
func (l Line) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// Draft is a user's order-in-progress: an ordered list of line items plus
// the metadata the repository needs for optimistic concurrency. All
// mutation methods are fail-fast: they validate every input before touching
// any field, so a returned error means the draft is unchanged.
type Draft struct {
	UserID    string    `json:"user_id"`
	Lines     []Line    `json:"lines"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft creates an empty draft for the given user.
func NewDraft(userID string) *Draft {
	return &Draft{
		UserID:    userID,
		Lines:     []Line{},
		Version:   0,
		UpdatedAt: time.Now().UTC(),
	}
}

// IsEmpty reports whether the draft has no lines.
func (d *Draft) IsEmpty() bool {
	return len(d.Lines) == 0
}

// GrandTotal returns the sum of all line subtotals in cents. An empty draft
// totals zero.
func (d *Draft) GrandTotal() int64 {
	var total int64
	for _, l := range d.Lines {
		total += l.Subtotal()
	}
	return total
}

// FindLine returns the line with the given ID and its index.
func (d *Draft) FindLine(lineID string) (Line, int, bool) {
	for i, l := range d.Lines {
		if l.LineID == lineID {
			return l, i, true
		}
	}
	return Line{}, -1, false
}

// AddLine appends a new line for the given product, snapshotting its current
// unit price from the catalog. The same product may appear on several lines;
// each keeps its own snapshot. Returns the created line.
func (d *Draft) AddLine(catalog *Catalog, productID string, quantity int) (Line, error) {
	if quantity < 1 {
		return Line{}, apperrors.InvalidQuantity(fmt.Sprintf("quantity must be at least 1, got %d", quantity))
	}
	product, ok := catalog.Lookup(productID)
	if !ok {
		return Line{}, apperrors.InvalidReference(productID)
	}

	line := Line{
		LineID:      uuid.New().String(),
		ProductID:   product.ProductID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
		AddedAt:     time.Now().UTC(),
	}
	d.Lines = append(d.Lines, line)
	d.touch()
	return line, nil
}

// RemoveLine deletes the line with the given ID. Removing the last line is
// allowed; the resulting empty draft is only rejected at submission time.
func (d *Draft) RemoveLine(lineID string) error {
	_, i, ok := d.FindLine(lineID)
	if !ok {
		return apperrors.NotFound("line", lineID)
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
	d.touch()
	return nil
}

// SetLineProduct repoints an existing line at a different product and
// re-snapshots the unit price from the catalog. Quantity is kept.
func (d *Draft) SetLineProduct(catalog *Catalog, lineID, productID string) (Line, error) {
	_, i, ok := d.FindLine(lineID)
	if !ok {
		return Line{}, apperrors.NotFound("line", lineID)
	}
	product, ok := catalog.Lookup(productID)
	if !ok {
		return Line{}, apperrors.InvalidReference(productID)
	}

	d.Lines[i].ProductID = product.ProductID
	d.Lines[i].ProductName = product.Name
	d.Lines[i].UnitPrice = product.UnitPrice
	d.touch()
	return d.Lines[i], nil
}

// SetLineQuantity changes the quantity of an existing line. The unit price
// snapshot is deliberately left alone.
func (d *Draft) SetLineQuantity(lineID string, quantity int) (Line, error) {
	if quantity < 1 {
		return Line{}, apperrors.InvalidQuantity(fmt.Sprintf("quantity must be at least 1, got %d", quantity))
	}
	_, i, ok := d.FindLine(lineID)
	if !ok {
		return Line{}, apperrors.NotFound("line", lineID)
	}

	d.Lines[i].Quantity = quantity
	d.touch()
	return d.Lines[i], nil
}

// ValidateForSubmission checks that the draft is submittable: non-empty,
// every quantity at least 1, and every product still present in the given
// catalog snapshot. The first failure is returned.
func (d *Draft) ValidateForSubmission(catalog *Catalog) error {
	if d.IsEmpty() {
		return apperrors.EmptyOrder()
	}
	for _, l := range d.Lines {
		if _, ok := catalog.Lookup(l.ProductID); !ok {
			return apperrors.InvalidReference(l.ProductID)
		}
		if l.Quantity < 1 {
			return apperrors.InvalidQuantity(fmt.Sprintf("line %s has quantity %d", l.LineID, l.Quantity))
		}
	}
	return nil
}

// StockWarning flags a line whose quantity exceeds the catalog's advisory
// stock level. Warnings never block submission.
type StockWarning struct {
	LineID         string `json:"line_id"`
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	AvailableStock int    `json:"available_stock"`
}

// StockWarnings returns advisory warnings for lines whose quantity exceeds
// the snapshot's available stock. Lines whose product is missing from the
// snapshot are skipped; ValidateForSubmission covers those.
func (d *Draft) StockWarnings(catalog *Catalog) []StockWarning {
	var warnings []StockWarning
	for _, l := range d.Lines {
		product, ok := catalog.Lookup(l.ProductID)
		if !ok {
			continue
		}
		if l.Quantity > product.AvailableStock {
			warnings = append(warnings, StockWarning{
				LineID:         l.LineID,
				ProductID:      l.ProductID,
				Quantity:       l.Quantity,
				AvailableStock: product.AvailableStock,
			})
		}
	}
	return warnings
}

// PayloadItem is one line of a submission payload. Prices are decimal
// strings with exactly two fraction digits.
type PayloadItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// SubmissionPayload is the order the draft turns into on submission.
type SubmissionPayload struct {
	UserID   string        `json:"user_id"`
	Items    []PayloadItem `json:"items"`
	Currency string        `json:"currency"`
	Total    string        `json:"total"`
}

// ToSubmissionPayload validates the draft against the catalog snapshot and,
// if it passes, renders the submission payload. A draft that fails
// validation yields a NOT_READY error wrapping the underlying failure.
func (d *Draft) ToSubmissionPayload(catalog *Catalog) (*SubmissionPayload, error) {
	if err := d.ValidateForSubmission(catalog); err != nil {
		notReady := apperrors.NotReady("draft is not ready for submission")
		notReady.Err = fmt.Errorf("%w: %w", apperrors.ErrNotReady, err)
		return nil, notReady
	}

	items := make([]PayloadItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, PayloadItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money.FormatCents(l.UnitPrice),
			Subtotal:  money.FormatCents(l.Subtotal()),
		})
	}
	return &SubmissionPayload{
		UserID:   d.UserID,
		Items:    items,
		Currency: Currency,
		Total:    money.FormatCents(d.GrandTotal()),
	}, nil
}

func (d *Draft) touch() {
	d.UpdatedAt = time.Now().UTC()
}
