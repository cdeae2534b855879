package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultGSTRate is used when no document-level default is configured.
const DefaultGSTRate = 18.0

// LineItem is one editable row of an invoice or quotation. Quantity, Rate
// and GSTRate are the inputs; Amount, CGST, SGST and Total are derived and
// recomputed in full after every edit.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	GSTRate  float64 `json:"gstRate"`
	Unit     string  `json:"unit,omitempty"`

	Amount float64 `json:"amount"`
	CGST   float64 `json:"cgst"`
	SGST   float64 `json:"sgst"`
	Total  float64 `json:"total"`
}

// Totals holds the document-level sums over the current line items.
type Totals struct {
	SubTotal   float64 `json:"subTotal"`
	TotalCGST  float64 `json:"totalCGST"`
	TotalSGST  float64 `json:"totalSGST"`
	GrandTotal float64 `json:"grandTotal"`
}

// ValidationError marks a business-rule rejection (last item removal,
// nothing valid to save). Malformed user input never produces one.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Ledger owns the editable line items of one document. It never talks to
// the network or the database; callers serialize it through wire.go.
type Ledger struct {
	items          []LineItem
	defaultGSTRate float64
}

// New returns an empty ledger. defaultGSTRate seeds the gstRate of newly
// added items; pass DefaultGSTRate when no profile value is configured.
func New(defaultGSTRate float64) *Ledger {
	return &Ledger{defaultGSTRate: defaultGSTRate}
}

// FromItems builds a ledger around existing items (e.g. a document loaded
// from the store). Derived fields are recomputed so the invariants hold
// regardless of what the source carried.
func FromItems(items []LineItem, defaultGSTRate float64) *Ledger {
	l := New(defaultGSTRate)
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		recompute(&it)
		l.items = append(l.items, it)
	}
	return l
}

// AddItem appends a fresh row with default values and returns it.
// Always succeeds.
func (l *Ledger) AddItem() LineItem {
	item := LineItem{
		ID:       uuid.NewString(),
		Quantity: 1,
		Rate:     0,
		GSTRate:  l.defaultGSTRate,
	}
	recompute(&item)
	l.items = append(l.items, item)
	return item
}

// RemoveItem deletes the row with the given id. Removing the last
// remaining row is rejected: a document must keep at least one line.
func (l *Ledger) RemoveItem(id string) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return validationErrorf("item %s not found", id)
	}
	if len(l.items) == 1 {
		return validationErrorf("at least one item required")
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return nil
}

// UpdateItem sets one input field and recomputes every derived field.
// Numeric fields that fail to parse are treated as zero rather than
// rejected, so half-typed input never breaks the derivation.
func (l *Ledger) UpdateItem(id, field, value string) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return validationErrorf("item %s not found", id)
	}
	item := &l.items[idx]

	switch strings.TrimSpace(field) {
	case "name":
		item.Name = value
	case "unit":
		item.Unit = value
	case "quantity":
		item.Quantity = parseNumber(value)
	case "rate":
		item.Rate = parseNumber(value)
	case "gstRate":
		item.GSTRate = parseNumber(value)
	default:
		return validationErrorf("unknown field %q", field)
	}

	recompute(item)
	return nil
}

// Items returns a copy of the current rows in presentation order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len reports the number of rows, valid or not.
func (l *Ledger) Len() int {
	return len(l.items)
}

// DocumentTotals sums the current items. It is pure: the ledger keeps no
// separate totals state, so the result is re-derivable at any time.
func (l *Ledger) DocumentTotals() Totals {
	var t Totals
	for _, it := range l.items {
		t.SubTotal += it.Amount
		t.TotalCGST += it.CGST
		t.TotalSGST += it.SGST
		t.GrandTotal += it.Total
	}
	return t
}

// FlatGSTTotals applies a single document-level GST percentage to a
// subtotal. The invoice form uses this flat model; quotations sum the
// per-line CGST/SGST instead.
func FlatGSTTotals(subTotal, gstPercentage float64) Totals {
	tax := subTotal * gstPercentage / 100
	return Totals{
		SubTotal:   subTotal,
		TotalCGST:  tax / 2,
		TotalSGST:  tax / 2,
		GrandTotal: subTotal + tax,
	}
}

// ValidItems returns the rows that qualify for submission: non-empty name
// and a positive total. Failing rows are only filtered here; they stay in
// the ledger untouched.
func (l *Ledger) ValidItems() []LineItem {
	var out []LineItem
	for _, it := range l.items {
		if strings.TrimSpace(it.Name) != "" && it.Total > 0 {
			out = append(out, it)
		}
	}
	return out
}

// ValidateForSave rejects a save when no row qualifies for submission.
func (l *Ledger) ValidateForSave() error {
	if len(l.ValidItems()) == 0 {
		return validationErrorf("at least one item with a name and a total greater than zero is required")
	}
	return nil
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

// recompute derives amount, tax split and total from the three numeric
// inputs. Always total, never incremental.
func recompute(item *LineItem) {
	item.Amount = item.Quantity * item.Rate
	tax := item.Amount * item.GSTRate / 100
	item.CGST = tax / 2
	item.SGST = tax / 2
	item.Total = item.Amount + tax
}

// parseNumber coerces user input to a float, treating anything malformed
// as zero so a bad keystroke yields a zero contribution instead of an
// error.
func parseNumber(value string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return n
}
