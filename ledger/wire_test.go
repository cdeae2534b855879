package ledger

import (
	"encoding/json"
	"testing"
)

func seededLedger(t *testing.T) *Ledger {
	t.Helper()
	l := New(DefaultGSTRate)

	a := l.AddItem()
	l.UpdateItem(a.ID, "name", "Precast wall panel")
	l.UpdateItem(a.ID, "unit", "sqm")
	l.UpdateItem(a.ID, "quantity", "3")
	l.UpdateItem(a.ID, "rate", "100")

	b := l.AddItem()
	l.UpdateItem(b.ID, "name", "Transport")
	l.UpdateItem(b.ID, "quantity", "1")
	l.UpdateItem(b.ID, "rate", "500")
	l.UpdateItem(b.ID, "gstRate", "5")

	return l
}

func TestInvoiceWireRoundTrip(t *testing.T) {
	l := seededLedger(t)

	data, err := json.Marshal(l.InvoiceItems())
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseWireItems(data)
	if err != nil {
		t.Fatal(err)
	}
	back := FromItems(parsed, DefaultGSTRate)

	want := l.ValidItems()
	got := back.Items()
	if len(got) != len(want) {
		t.Fatalf("round trip returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name ||
			got[i].Quantity != want[i].Quantity ||
			got[i].Rate != want[i].Rate ||
			got[i].GSTRate != want[i].GSTRate ||
			got[i].Amount != want[i].Amount ||
			got[i].CGST != want[i].CGST ||
			got[i].SGST != want[i].SGST ||
			got[i].Total != want[i].Total {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestQuotationWireRoundTrip(t *testing.T) {
	l := seededLedger(t)

	data, err := json.Marshal(l.QuotationItems())
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseWireItems(data)
	if err != nil {
		t.Fatal(err)
	}
	back := FromItems(parsed, DefaultGSTRate)

	want := l.ValidItems()
	got := back.Items()
	if len(got) != len(want) {
		t.Fatalf("round trip returned %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].Unit != want[i].Unit ||
			got[i].Total != want[i].Total || got[i].Amount != want[i].Amount {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseWireItemsToleratesBothSpellings(t *testing.T) {
	payload := []byte(`[
		{"Name": "Invoice style", "quantity": 2, "rate": 100, "gstRate": 18, "lineAmount": 200, "cgst": 18, "sgst": 18, "lineTotal": 236},
		{"name": "Quotation style", "quantity": 1, "rate": 118, "gstRate": 0, "amount": 118, "total": 118, "unit": "nos"}
	]`)

	items, err := ParseWireItems(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("parsed %d rows, want 2", len(items))
	}
	if items[0].Name != "Invoice style" || items[0].Amount != 200 || items[0].Total != 236 {
		t.Errorf("invoice spelling not honoured: %+v", items[0])
	}
	if items[1].Name != "Quotation style" || items[1].Amount != 118 || items[1].Total != 118 || items[1].Unit != "nos" {
		t.Errorf("quotation spelling not honoured: %+v", items[1])
	}
}

func TestParseWireItemsMissingNumericsDefaultToZero(t *testing.T) {
	payload := []byte(`[{"Name": "Bare"}]`)
	items, err := ParseWireItems(payload)
	if err != nil {
		t.Fatal(err)
	}
	it := items[0]
	if it.Quantity != 0 || it.Rate != 0 || it.GSTRate != 0 || it.Amount != 0 || it.CGST != 0 || it.SGST != 0 || it.Total != 0 {
		t.Fatalf("missing numerics must default to zero: %+v", it)
	}
	if it.ID == "" {
		t.Fatal("parsed rows need a local id")
	}
}

func TestParseWireItemsPrefersInvoiceSpelling(t *testing.T) {
	// When both spellings appear, the ordered fallback picks
	// lineAmount/lineTotal first.
	payload := []byte(`[{"Name": "Both", "lineAmount": 10, "amount": 99, "lineTotal": 11, "total": 98}]`)
	items, err := ParseWireItems(payload)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Amount != 10 || items[0].Total != 11 {
		t.Fatalf("ordered fallback broken: %+v", items[0])
	}
}

func TestParseWireItemsEmptyAndInvalid(t *testing.T) {
	if items, err := ParseWireItems(nil); err != nil || items != nil {
		t.Fatalf("nil payload: items=%v err=%v", items, err)
	}
	if _, err := ParseWireItems([]byte(`{"not": "an array"}`)); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}

func TestSerializationFiltersInvalidRows(t *testing.T) {
	l := New(DefaultGSTRate)
	l.AddItem() // nameless, zero total

	if got := l.InvoiceItems(); len(got) != 0 {
		t.Fatalf("invoice payload = %d rows, want 0", len(got))
	}
	if got := l.QuotationItems(); len(got) != 0 {
		t.Fatalf("quotation payload = %d rows, want 0", len(got))
	}
	if l.Len() != 1 {
		t.Fatal("serialization must leave ledger rows in place")
	}
}
