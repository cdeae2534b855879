package services

import (
	"strings"
	"testing"

	"backend/models"
)

func TestPreviewEmailAsTextSubstitutesVariables(t *testing.T) {
	es := &EmailService{}
	data := models.EmailData{
		InvoiceNumber: "INV-0042",
		ClientName:    "Acme Corp",
		DueDate:       "2024-02-15",
		AmountDue:     "472.00",
	}

	body := `<p>Dear {{client_name}},</p><p>Invoice {{invoice_number}} for {{amount_due}} is due on {{due_date}}.</p>`
	got := es.PreviewEmailAsText(body, data)

	for _, want := range []string{"Dear Acme Corp,", "INV-0042", "472.00", "2024-02-15"} {
		if !strings.Contains(got, want) {
			t.Errorf("preview missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unsubstituted placeholder left in %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("html tag left in %q", got)
	}
}

func TestPreviewEmailAsTextKeepsUnknownPlaceholders(t *testing.T) {
	es := &EmailService{}
	got := es.PreviewEmailAsText("Hello {{nonsense}}", models.EmailData{})
	if got != "Hello {{nonsense}}" {
		t.Errorf("got %q, want unknown placeholder untouched", got)
	}
}

func TestConvertHTMLToTextStructure(t *testing.T) {
	got := convertHTMLToText("<h1>Title</h1><ul><li>first</li><li>second</li></ul>")
	if !strings.Contains(got, "Title") {
		t.Errorf("missing heading text in %q", got)
	}
	if !strings.Contains(got, "- first") || !strings.Contains(got, "- second") {
		t.Errorf("list items not bulleted in %q", got)
	}
}
