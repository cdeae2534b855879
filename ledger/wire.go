package ledger

import (
	"encoding/json"

	"github.com/google/uuid"
)

// The invoice and quotation endpoints spell structurally identical item
// data differently: invoices use Name/lineAmount/lineTotal, quotations use
// Name/amount/total (plus a free-text unit). Writes use the spelling the
// target endpoint expects; reads tolerate either.

// InvoiceWireItem is the invoice endpoint's item shape.
type InvoiceWireItem struct {
	Name       string  `json:"Name"`
	Quantity   float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	GSTRate    float64 `json:"gstRate"`
	LineAmount float64 `json:"lineAmount"`
	CGST       float64 `json:"cgst"`
	SGST       float64 `json:"sgst"`
	LineTotal  float64 `json:"lineTotal"`
}

// QuotationWireItem is the quotation endpoint's item shape.
type QuotationWireItem struct {
	Name     string  `json:"Name"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	GSTRate  float64 `json:"gstRate"`
	Unit     string  `json:"unit,omitempty"`
	Amount   float64 `json:"amount"`
	CGST     float64 `json:"cgst"`
	SGST     float64 `json:"sgst"`
	Total    float64 `json:"total"`
}

// InvoiceItems serializes the submittable rows in the invoice spelling.
// Rows without a name or a positive total are filtered out here, never
// mutated or removed from the ledger.
func (l *Ledger) InvoiceItems() []InvoiceWireItem {
	items := l.ValidItems()
	out := make([]InvoiceWireItem, 0, len(items))
	for _, it := range items {
		out = append(out, InvoiceWireItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			Rate:       it.Rate,
			GSTRate:    it.GSTRate,
			LineAmount: it.Amount,
			CGST:       it.CGST,
			SGST:       it.SGST,
			LineTotal:  it.Total,
		})
	}
	return out
}

// QuotationItems serializes the submittable rows in the quotation
// spelling.
func (l *Ledger) QuotationItems() []QuotationWireItem {
	items := l.ValidItems()
	out := make([]QuotationWireItem, 0, len(items))
	for _, it := range items {
		out = append(out, QuotationWireItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Rate:     it.Rate,
			GSTRate:  it.GSTRate,
			Unit:     it.Unit,
			Amount:   it.Amount,
			CGST:     it.CGST,
			SGST:     it.SGST,
			Total:    it.Total,
		})
	}
	return out
}

// wireItem carries every accepted spelling of an incoming item. Pointer
// fields distinguish absent from zero so absent numerics default cleanly.
type wireItem struct {
	Name     string   `json:"Name"`
	AltName  string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Rate     *float64 `json:"rate"`
	GSTRate  *float64 `json:"gstRate"`
	Unit     string   `json:"unit"`

	LineAmount *float64 `json:"lineAmount"`
	Amount     *float64 `json:"amount"`
	CGST       *float64 `json:"cgst"`
	SGST       *float64 `json:"sgst"`
	LineTotal  *float64 `json:"lineTotal"`
	Total      *float64 `json:"total"`
}

// normalizeItem maps one wire row to the internal shape. Each target field
// takes the first present source field, in order:
//
//	name   <- Name, name
//	amount <- lineAmount, amount
//	total  <- lineTotal, total
//
// Missing numerics become zero.
func normalizeItem(w wireItem) LineItem {
	item := LineItem{
		ID:       uuid.NewString(),
		Name:     firstString(w.Name, w.AltName),
		Quantity: firstNumber(w.Quantity),
		Rate:     firstNumber(w.Rate),
		GSTRate:  firstNumber(w.GSTRate),
		Unit:     w.Unit,
		Amount:   firstNumber(w.LineAmount, w.Amount),
		CGST:     firstNumber(w.CGST),
		SGST:     firstNumber(w.SGST),
		Total:    firstNumber(w.LineTotal, w.Total),
	}
	return item
}

// ParseWireItems decodes a JSON array of items in either document kind's
// spelling and returns normalized line items with derived fields as sent.
// Callers that need the invariants re-established wrap the result in
// FromItems, which recomputes them from quantity/rate/gstRate.
func ParseWireItems(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []wireItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(raw))
	for _, w := range raw {
		items = append(items, normalizeItem(w))
	}
	return items, nil
}

func firstString(candidates ...string) string {
	for _, s := range candidates {
		if s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(candidates ...*float64) float64 {
	for _, n := range candidates {
		if n != nil {
			return *n
		}
	}
	return 0
}
