package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backend/ledger"
)

type DateOnly struct {
	time.Time
}

const dateFormat = "2006-01-02"

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		d.Time = time.Time{}
		return nil
	}
	parsedTime, err := time.Parse(`"`+dateFormat+`"`, string(data))
	if err != nil {
		return err
	}
	d.Time = parsedTime
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(dateFormat))
}

func (d DateOnly) ToTime() time.Time {
	return d.Time
}

// Scan implements the Scanner interface for DateOnly type
func (d *DateOnly) Scan(value interface{}) error {
	if value == nil {
		d.Time = time.Time{}
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, v.Location())
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into DateOnly", v)
	}
}

// Value implements driver.Valuer for database/sql
func (d DateOnly) Value() (driver.Value, error) {
	return d.Time, nil
}

type User struct {
	ID        int       `json:"id" example:"1"`
	Email     string    `json:"email" example:"user@example.com"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name" example:"Asha"`
	LastName  string    `json:"last_name" example:"Verma"`
	Role      string    `json:"role" example:"accountant"`
	Suspended bool      `json:"suspended" example:"false"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type Session struct {
	UserID                int       `json:"user_id"`
	SessionID             string    `json:"session_id"`
	HostName              string    `json:"host_name"`
	IPAddress             string    `json:"ip_address"`
	Timestamp             time.Time `json:"timestp"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
}

// Party is one side of a document: the issuer ("from") or the
// counterparty ("to"). The counterparty additionally references a stored
// client by id.
type Party struct {
	ClientID  int    `json:"clientId,omitempty" example:"1"`
	Name      string `json:"name" example:"Acme Constructions"`
	Address   string `json:"address" example:"12 MG Road, Pune"`
	Contact   string `json:"contact" example:"+91 98220 00000"`
	GSTNumber string `json:"gstNumber" example:"27AAACA1234F1Z5"`
}

type Client struct {
	ClientID     int       `json:"client_id" example:"1"`
	Name         string    `json:"name" example:"Acme Corp"`
	Organization string    `json:"organization" example:"Acme Group"`
	Address      string    `json:"address" example:"12 MG Road, Pune"`
	Email        string    `json:"email" example:"accounts@acme.example"`
	Phone        string    `json:"phone" example:"+91 98220 00000"`
	GSTNumber    string    `json:"gst_number" example:"27AAACA1234F1Z5"`
	CreatedAt    time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// ClientRequest accepts the GST number under any of the spellings older
// front ends used. NormalizedGST applies the ordered fallback once, at
// ingestion.
type ClientRequest struct {
	Name         string `json:"name" binding:"required" example:"Acme Corp"`
	Organization string `json:"organization" example:"Acme Group"`
	Address      string `json:"address" example:"12 MG Road, Pune"`
	Email        string `json:"email" example:"accounts@acme.example"`
	Phone        string `json:"phone" example:"+91 98220 00000"`
	GST          string `json:"gst,omitempty"`
	GSTNo        string `json:"gstNo,omitempty"`
	GSTNumber    string `json:"gstNumber,omitempty"`
}

// NormalizedGST picks the first non-empty of gst, gstNo, gstNumber.
func (r ClientRequest) NormalizedGST() string {
	for _, candidate := range []string{r.GST, r.GSTNo, r.GSTNumber} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

type Project struct {
	ProjectID   int       `json:"project_id" example:"1"`
	Name        string    `json:"name" example:"Riverside Towers"`
	ClientID    int       `json:"client_id" example:"1"`
	Status      string    `json:"status" example:"active"`
	StartDate   DateOnly  `json:"start_date" example:"2024-01-01"`
	EndDate     DateOnly  `json:"end_date" example:"2024-12-31"`
	Description string    `json:"description" example:"Residential complex"`
	CreatedAt   time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

type ProjectRequest struct {
	Name        string    `json:"name" binding:"required" example:"Riverside Towers"`
	ClientID    int       `json:"client_id" example:"1"`
	Status      string    `json:"status" example:"active"`
	StartDate   *DateOnly `json:"start_date"`
	EndDate     *DateOnly `json:"end_date"`
	Description string    `json:"description"`
}

// Invoice payment lifecycle values.
const (
	InvoiceStatusUnpaid      = "unpaid"
	InvoiceStatusPartialPaid = "partial_paid"
	InvoiceStatusFullyPaid   = "fully_paid"
	InvoiceStatusOverdue     = "overdue"
)

// DefaultTerms is used when a document is created without explicit terms.
const DefaultTerms = "Payment due within the stated due date. Interest at 18% p.a. on delayed payments."

// Invoice is the stored document returned by the invoice endpoints. The
// invoice form uses a single flat GST percentage applied to the subtotal;
// the per-line CGST/SGST still travel with each item for list and print
// views.
type Invoice struct {
	ID                 int                      `json:"id" example:"1"`
	InvoiceNumber      string                   `json:"invoiceNumber" example:"INV-0042"`
	ProjectID          int                      `json:"projectId" example:"1"`
	From               Party                    `json:"from"`
	To                 Party                    `json:"to"`
	IssueDate          DateOnly                 `json:"issueDate" example:"2024-01-15"`
	DueDate            DateOnly                 `json:"dueDate" example:"2024-02-15"`
	SignedDate         *DateOnly                `json:"signedDate,omitempty"`
	GSTPercentage      float64                  `json:"gstPercentage" example:"18"`
	Items              []ledger.InvoiceWireItem `json:"items"`
	SubTotal           float64                  `json:"subTotal" example:"1000"`
	TotalGST           float64                  `json:"totalGST" example:"180"`
	TotalCGST          float64                  `json:"totalCGST" example:"90"`
	TotalSGST          float64                  `json:"totalSGST" example:"90"`
	GrandTotal         float64                  `json:"grandTotal" example:"1180"`
	TermsAndConditions string                   `json:"termsAndConditions"`
	Status             string                   `json:"status" example:"unpaid"`
	CreatedBy          int                      `json:"created_by" example:"1"`
	CreatedAt          time.Time                `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt          time.Time                `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// InvoiceRequest is the create/update payload. Items arrive raw so the
// ledger can normalize either field spelling.
type InvoiceRequest struct {
	InvoiceNumber      string          `json:"invoiceNumber" example:"INV-0042"`
	ProjectID          int             `json:"projectId" example:"1"`
	From               Party           `json:"from"`
	To                 Party           `json:"to"`
	IssueDate          DateOnly        `json:"issueDate"`
	DueDate            DateOnly        `json:"dueDate"`
	SignedDate         *DateOnly       `json:"signedDate"`
	GSTPercentage      float64         `json:"gstPercentage" example:"18"`
	Items              json.RawMessage `json:"items"`
	TermsAndConditions string          `json:"termsAndConditions"`
}
