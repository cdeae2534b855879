package models

import (
	"encoding/json"
	"time"
)

// GORM-compatible models with proper tags. Quotations and salary configs
// live on the GORM storage path; invoices, clients and projects stay on
// the database/sql path.

// Quotation represents the quotation table with GORM tags. Unlike the
// invoice form, quotation totals are the per-line CGST/SGST sums.
type Quotation struct {
	ID                 uint            `gorm:"primaryKey;column:id" json:"id" example:"1"`
	QuotationNumber    string          `gorm:"column:quotation_number;not null" json:"quotationNumber" example:"QTN-0017"`
	ProjectID          int             `gorm:"column:project_id;not null" json:"projectId" example:"1"`
	ClientID           int             `gorm:"column:client_id" json:"clientId" example:"1"`
	FromName           string          `gorm:"column:from_name" json:"-"`
	FromAddress        string          `gorm:"column:from_address" json:"-"`
	FromContact        string          `gorm:"column:from_contact" json:"-"`
	FromGSTNumber      string          `gorm:"column:from_gst_number" json:"-"`
	ToName             string          `gorm:"column:to_name" json:"-"`
	ToAddress          string          `gorm:"column:to_address" json:"-"`
	ToContact          string          `gorm:"column:to_contact" json:"-"`
	ToGSTNumber        string          `gorm:"column:to_gst_number" json:"-"`
	IssueDate          time.Time       `gorm:"column:issue_date" json:"issueDate"`
	DueDate            time.Time       `gorm:"column:due_date" json:"dueDate"`
	SignedDate         *time.Time      `gorm:"column:signed_date" json:"signedDate,omitempty"`
	SubTotal           float64         `gorm:"column:sub_total" json:"subTotal" example:"1000"`
	TotalCGST          float64         `gorm:"column:total_cgst" json:"totalCGST" example:"90"`
	TotalSGST          float64         `gorm:"column:total_sgst" json:"totalSGST" example:"90"`
	GrandTotal         float64         `gorm:"column:grand_total" json:"grandTotal" example:"1180"`
	TermsAndConditions string          `gorm:"column:terms_and_conditions" json:"termsAndConditions"`
	CreatedBy          int             `gorm:"column:created_by" json:"created_by" example:"1"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at" json:"updated_at"`
	Items              []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName specifies the table name for Quotation
func (Quotation) TableName() string {
	return "quotation"
}

// QuotationItem represents the quotation_item table with GORM tags. The
// stored columns mirror the quotation wire spelling (amount/total).
type QuotationItem struct {
	ID          uint    `gorm:"primaryKey;column:id" json:"id" example:"1"`
	QuotationID uint    `gorm:"column:quotation_id;index;not null" json:"quotation_id" example:"1"`
	Name        string  `gorm:"column:name;not null" json:"Name" example:"Precast wall panel"`
	Quantity    float64 `gorm:"column:quantity" json:"quantity" example:"3"`
	Rate        float64 `gorm:"column:rate" json:"rate" example:"100"`
	GSTRate     float64 `gorm:"column:gst_rate" json:"gstRate" example:"18"`
	Unit        string  `gorm:"column:unit" json:"unit,omitempty" example:"sqm"`
	Amount      float64 `gorm:"column:amount" json:"amount" example:"300"`
	CGST        float64 `gorm:"column:cgst" json:"cgst" example:"27"`
	SGST        float64 `gorm:"column:sgst" json:"sgst" example:"27"`
	Total       float64 `gorm:"column:total" json:"total" example:"354"`
}

// TableName specifies the table name for QuotationItem
func (QuotationItem) TableName() string {
	return "quotation_item"
}

// FromParty / ToParty expose the flattened party columns in the document
// shape the front end renders.
func (q Quotation) FromParty() Party {
	return Party{Name: q.FromName, Address: q.FromAddress, Contact: q.FromContact, GSTNumber: q.FromGSTNumber}
}

func (q Quotation) ToParty() Party {
	return Party{ClientID: q.ClientID, Name: q.ToName, Address: q.ToAddress, Contact: q.ToContact, GSTNumber: q.ToGSTNumber}
}

// QuotationRequest is the create/update payload. Items arrive raw so the
// ledger can normalize either field spelling.
type QuotationRequest struct {
	QuotationNumber    string          `json:"quotationNumber" example:"QTN-0017"`
	ProjectID          int             `json:"projectId" binding:"required" example:"1"`
	From               Party           `json:"from"`
	To                 Party           `json:"to"`
	IssueDate          DateOnly        `json:"issueDate"`
	DueDate            DateOnly        `json:"dueDate"`
	SignedDate         *DateOnly       `json:"signedDate"`
	Items              json.RawMessage `json:"items"`
	TermsAndConditions string          `json:"termsAndConditions"`
}
