package models

import (
	"encoding/json"
	"testing"
)

func TestNormalizedGSTPrefersFirstSpelling(t *testing.T) {
	tests := []struct {
		name string
		req  ClientRequest
		want string
	}{
		{"gst wins", ClientRequest{GST: "27A", GSTNo: "27B", GSTNumber: "27C"}, "27A"},
		{"gstNo next", ClientRequest{GSTNo: "27B", GSTNumber: "27C"}, "27B"},
		{"gstNumber last", ClientRequest{GSTNumber: "27C"}, "27C"},
		{"whitespace skipped", ClientRequest{GST: "  ", GSTNo: "27B"}, "27B"},
		{"all empty", ClientRequest{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.NormalizedGST(); got != tt.want {
				t.Errorf("NormalizedGST() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateOnlyJSONRoundTrip(t *testing.T) {
	var d DateOnly
	if err := json.Unmarshal([]byte(`"2024-02-15"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-02-15"` {
		t.Errorf("marshal = %s", out)
	}
}

func TestDateOnlyTolerantOfNullAndEmpty(t *testing.T) {
	var d DateOnly
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Errorf("null: %v", err)
	}
	if err := json.Unmarshal([]byte(`""`), &d); err != nil {
		t.Errorf("empty string: %v", err)
	}
	if !d.Time.IsZero() {
		t.Errorf("expected zero time, got %v", d.Time)
	}
}

func TestSalaryConfigRecalculate(t *testing.T) {
	cfg := SalaryConfig{SalaryPerHead: 45000, Count: 4, TotalSalary: 1}
	cfg.Recalculate()
	if cfg.TotalSalary != 180000 {
		t.Errorf("TotalSalary = %v, want 180000", cfg.TotalSalary)
	}

	cfg.Count = 0
	cfg.Recalculate()
	if cfg.TotalSalary != 0 {
		t.Errorf("TotalSalary = %v, want 0", cfg.TotalSalary)
	}
}
