package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// EmailTemplate represents the email_templates table
type EmailTemplate struct {
	ID           int             `json:"id" example:"1"`
	Name         string          `json:"name" example:"Invoice reminder"`
	Subject      string          `json:"subject" example:"Invoice {{invoice_number}} is due"`
	Body         string          `json:"body" example:"Dear {{client_name}}, ..."`
	TemplateType string          `json:"template_type" example:"invoice_due"`
	IsDefault    bool            `json:"is_default" example:"false"`
	IsActive     bool            `json:"is_active" example:"true"`
	Variables    json.RawMessage `json:"variables"`
	CC           []string        `json:"cc,omitempty"`
	BCC          []string        `json:"bcc,omitempty"`
	CreatedBy    *int            `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time       `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

const emailTemplateColumns = `id, name, subject, body, template_type, is_default, is_active,
	variables, cc, bcc, created_by, created_at, updated_at`

func scanEmailTemplate(row *sql.Row) (*EmailTemplate, error) {
	var template EmailTemplate
	var cc, bcc pq.StringArray
	var variables sql.NullString

	err := row.Scan(
		&template.ID, &template.Name, &template.Subject, &template.Body,
		&template.TemplateType, &template.IsDefault, &template.IsActive,
		&variables, &cc, &bcc, &template.CreatedBy, &template.CreatedAt, &template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	template.CC = []string(cc)
	template.BCC = []string(bcc)
	if variables.Valid {
		template.Variables = json.RawMessage(variables.String)
	}
	return &template, nil
}

// GetDefaultTemplate retrieves the active default template for a type.
func GetDefaultTemplate(db *sql.DB, templateType string) (*EmailTemplate, error) {
	return scanEmailTemplate(db.QueryRow(`
		SELECT `+emailTemplateColumns+`
		FROM email_templates
		WHERE template_type = $1 AND is_default = true AND is_active = true
		LIMIT 1`, templateType))
}

// GetTemplateByID retrieves one active template by id.
func GetTemplateByID(db *sql.DB, id int) (*EmailTemplate, error) {
	return scanEmailTemplate(db.QueryRow(`
		SELECT `+emailTemplateColumns+`
		FROM email_templates
		WHERE id = $1 AND is_active = true`, id))
}

// EmailData carries the variables substituted into document emails.
type EmailData struct {
	InvoiceNumber string `json:"invoice_number"`
	ClientName    string `json:"client_name"`
	ProjectName   string `json:"project_name"`
	DueDate       string `json:"due_date"`
	AmountDue     string `json:"amount_due"`
	Email         string `json:"email"`
	CompanyName   string `json:"company_name"`
	LoginURL      string `json:"login_url"`
	SupportEmail  string `json:"support_email"`
}
