package ledger

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func checkInvariants(t *testing.T, it LineItem) {
	t.Helper()
	if !almostEqual(it.Amount, it.Quantity*it.Rate) {
		t.Errorf("amount = %v, want quantity*rate = %v", it.Amount, it.Quantity*it.Rate)
	}
	wantTax := it.Amount * it.GSTRate / 100
	if !almostEqual(it.CGST, wantTax/2) || !almostEqual(it.SGST, wantTax/2) {
		t.Errorf("cgst/sgst = %v/%v, want %v each", it.CGST, it.SGST, wantTax/2)
	}
	if !almostEqual(it.CGST, it.SGST) {
		t.Errorf("cgst %v != sgst %v, tax must split evenly", it.CGST, it.SGST)
	}
	if !almostEqual(it.Total, it.Amount+it.CGST+it.SGST) {
		t.Errorf("total = %v, want amount+cgst+sgst = %v", it.Total, it.Amount+it.CGST+it.SGST)
	}
}

func TestAddItemDefaults(t *testing.T) {
	l := New(DefaultGSTRate)
	item := l.AddItem()

	if item.ID == "" {
		t.Fatal("expected a generated local id")
	}
	if item.Quantity != 1 || item.Rate != 0 || item.GSTRate != 18 {
		t.Fatalf("defaults = qty %v rate %v gst %v, want 1/0/18", item.Quantity, item.Rate, item.GSTRate)
	}
	checkInvariants(t, item)

	second := l.AddItem()
	if second.ID == item.ID {
		t.Fatal("ids must be unique per row")
	}
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
}

func TestAddItemUsesConfiguredGSTRate(t *testing.T) {
	l := New(12)
	if item := l.AddItem(); item.GSTRate != 12 {
		t.Fatalf("gstRate = %v, want configured 12", item.GSTRate)
	}
}

func TestUpdateItemRecomputesAllDerivedFields(t *testing.T) {
	l := New(DefaultGSTRate)
	item := l.AddItem()

	steps := []struct{ field, value string }{
		{"name", "Casting labour"},
		{"quantity", "3"},
		{"rate", "100"},
		{"gstRate", "18"},
	}
	for _, s := range steps {
		if err := l.UpdateItem(item.ID, s.field, s.value); err != nil {
			t.Fatalf("update %s: %v", s.field, err)
		}
		checkInvariants(t, l.Items()[0])
	}

	got := l.Items()[0]
	if got.Amount != 300 {
		t.Errorf("amount = %v, want 300", got.Amount)
	}
	if got.CGST != 27 || got.SGST != 27 {
		t.Errorf("cgst/sgst = %v/%v, want 27 each", got.CGST, got.SGST)
	}
	if got.Total != 354 {
		t.Errorf("total = %v, want 354", got.Total)
	}
}

func TestUpdateItemMalformedNumberYieldsZero(t *testing.T) {
	l := New(DefaultGSTRate)
	item := l.AddItem()
	if err := l.UpdateItem(item.ID, "quantity", "2"); err != nil {
		t.Fatal(err)
	}
	if err := l.UpdateItem(item.ID, "rate", "abc"); err != nil {
		t.Fatalf("malformed numeric input must not error, got %v", err)
	}
	got := l.Items()[0]
	if got.Rate != 0 || got.Amount != 0 || got.Total != 0 {
		t.Fatalf("rate/amount/total = %v/%v/%v, want zeros", got.Rate, got.Amount, got.Total)
	}
	checkInvariants(t, got)
}

func TestUpdateItemTextFieldsPassThrough(t *testing.T) {
	l := New(DefaultGSTRate)
	item := l.AddItem()
	if err := l.UpdateItem(item.ID, "unit", "sqm"); err != nil {
		t.Fatal(err)
	}
	if err := l.UpdateItem(item.ID, "name", "  RCC slab 150mm "); err != nil {
		t.Fatal(err)
	}
	got := l.Items()[0]
	if got.Unit != "sqm" || got.Name != "  RCC slab 150mm " {
		t.Fatalf("text fields must be stored unchanged, got unit=%q name=%q", got.Unit, got.Name)
	}
}

func TestUpdateItemUnknownFieldRejected(t *testing.T) {
	l := New(DefaultGSTRate)
	item := l.AddItem()
	err := l.UpdateItem(item.ID, "amount", "500")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("derived fields are not directly editable, want ValidationError, got %v", err)
	}
}

func TestRemoveLastItemRejected(t *testing.T) {
	l := New(DefaultGSTRate)
	item := l.AddItem()

	err := l.RemoveItem(item.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("collection must be unchanged after rejected removal, len = %d", l.Len())
	}
}

func TestRemoveItem(t *testing.T) {
	l := New(DefaultGSTRate)
	first := l.AddItem()
	second := l.AddItem()

	if err := l.RemoveItem(first.ID); err != nil {
		t.Fatal(err)
	}
	if l.Len() != 1 || l.Items()[0].ID != second.ID {
		t.Fatal("wrong row removed")
	}
	if err := l.RemoveItem("no-such-id"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestDocumentTotals(t *testing.T) {
	l := New(DefaultGSTRate)

	a := l.AddItem()
	l.UpdateItem(a.ID, "name", "Item A")
	l.UpdateItem(a.ID, "quantity", "3")
	l.UpdateItem(a.ID, "rate", "100") // total 354

	b := l.AddItem()
	l.UpdateItem(b.ID, "name", "Item B")
	l.UpdateItem(b.ID, "quantity", "1")
	l.UpdateItem(b.ID, "rate", "100") // total 118

	totals := l.DocumentTotals()
	if !almostEqual(totals.GrandTotal, 472) {
		t.Errorf("grandTotal = %v, want 472", totals.GrandTotal)
	}
	if !almostEqual(totals.SubTotal, 400) {
		t.Errorf("subTotal = %v, want 400", totals.SubTotal)
	}
	if !almostEqual(totals.TotalCGST, 36) || !almostEqual(totals.TotalSGST, 36) {
		t.Errorf("tax totals = %v/%v, want 36 each", totals.TotalCGST, totals.TotalSGST)
	}

	// Totals must equal the elementwise sums, whatever the state.
	var sub, cgst, sgst, grand float64
	for _, it := range l.Items() {
		sub += it.Amount
		cgst += it.CGST
		sgst += it.SGST
		grand += it.Total
	}
	if !almostEqual(totals.SubTotal, sub) || !almostEqual(totals.TotalCGST, cgst) ||
		!almostEqual(totals.TotalSGST, sgst) || !almostEqual(totals.GrandTotal, grand) {
		t.Error("DocumentTotals must equal elementwise sums")
	}
}

func TestDocumentTotalsEmptyLedger(t *testing.T) {
	l := New(DefaultGSTRate)
	if totals := l.DocumentTotals(); totals != (Totals{}) {
		t.Fatalf("empty ledger totals = %+v, want zeros", totals)
	}
}

func TestFlatGSTTotals(t *testing.T) {
	totals := FlatGSTTotals(1000, 18)
	if !almostEqual(totals.GrandTotal, 1180) {
		t.Errorf("grandTotal = %v, want 1180", totals.GrandTotal)
	}
	if !almostEqual(totals.TotalCGST, 90) || !almostEqual(totals.TotalSGST, 90) {
		t.Errorf("tax split = %v/%v, want 90 each", totals.TotalCGST, totals.TotalSGST)
	}
}

func TestValidateForSave(t *testing.T) {
	l := New(DefaultGSTRate)
	l.AddItem() // no name, total 0

	err := l.ValidateForSave()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for nothing submittable, got %v", err)
	}
	if got := l.ValidItems(); len(got) != 0 {
		t.Fatalf("valid items = %d, want 0", len(got))
	}
}

func TestValidItemsFilterWithoutMutation(t *testing.T) {
	l := New(DefaultGSTRate)

	good := l.AddItem()
	l.UpdateItem(good.ID, "name", "Shuttering")
	l.UpdateItem(good.ID, "rate", "250")

	bad := l.AddItem() // nameless, zero total; stays in the ledger

	valid := l.ValidItems()
	if len(valid) != 1 || valid[0].ID != good.ID {
		t.Fatalf("valid = %d rows, want only the named row", len(valid))
	}
	if l.Len() != 2 {
		t.Fatal("filtering must not remove rows from the ledger")
	}
	if err := l.ValidateForSave(); err != nil {
		t.Fatalf("one valid row should allow save, got %v", err)
	}
	_ = bad
}

func TestFromItemsReestablishesInvariants(t *testing.T) {
	// A record whose derived fields drifted: recomputation wins.
	stale := []LineItem{{Name: "Drifted", Quantity: 2, Rate: 50, GSTRate: 18, Amount: 999, Total: 1}}
	l := FromItems(stale, DefaultGSTRate)

	got := l.Items()[0]
	if got.ID == "" {
		t.Fatal("expected a generated id for hydrated rows")
	}
	if got.Amount != 100 || !almostEqual(got.Total, 118) {
		t.Fatalf("amount/total = %v/%v, want recomputed 100/118", got.Amount, got.Total)
	}
	checkInvariants(t, got)
}
