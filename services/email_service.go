package services

import (
	"database/sql"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"backend/models"

	"golang.org/x/net/html"
)

// EmailService sends document emails rendered from stored templates.
type EmailService struct {
	db *sql.DB
}

// NewEmailService creates a new email service instance
func NewEmailService(db *sql.DB) *EmailService {
	return &EmailService{db: db}
}

// convertHTMLToText converts HTML template bodies to plain text for the
// SMTP message.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	return strings.TrimSpace(result)
}

// SendTemplatedEmail renders the template of the given type and sends it.
// A non-nil customTemplateID overrides the type's default template.
func (es *EmailService) SendTemplatedEmail(templateType string, emailData models.EmailData, customTemplateID *int) error {
	var emailTemplate *models.EmailTemplate
	var err error

	if customTemplateID != nil {
		emailTemplate, err = models.GetTemplateByID(es.db, *customTemplateID)
		if err != nil {
			return fmt.Errorf("failed to get custom template (ID: %d): %v", *customTemplateID, err)
		}
		if emailTemplate.TemplateType != templateType {
			return fmt.Errorf("custom template type mismatch: expected %s, got %s", templateType, emailTemplate.TemplateType)
		}
	} else {
		emailTemplate, err = models.GetDefaultTemplate(es.db, templateType)
		if err != nil {
			return fmt.Errorf("failed to get default template for type '%s': %v", templateType, err)
		}
	}

	subject := es.processTemplate(emailTemplate.Subject, emailData)
	body := es.processTemplate(emailTemplate.Body, emailData)

	return es.sendEmail(emailData.Email, subject, convertHTMLToText(body), emailTemplate.CC, emailTemplate.BCC)
}

// PreviewEmailAsText renders a template body to the plain text the
// recipient would see, for front-end previews.
func (es *EmailService) PreviewEmailAsText(htmlContent string, emailData models.EmailData) string {
	return convertHTMLToText(es.processTemplate(htmlContent, emailData))
}

// processTemplate substitutes {{variable}} placeholders.
func (es *EmailService) processTemplate(templateStr string, data models.EmailData) string {
	variables := map[string]string{
		"invoice_number": data.InvoiceNumber,
		"client_name":    data.ClientName,
		"project_name":   data.ProjectName,
		"due_date":       data.DueDate,
		"amount_due":     data.AmountDue,
		"email":          data.Email,
		"company_name":   data.CompanyName,
		"login_url":      data.LoginURL,
		"support_email":  data.SupportEmail,
	}

	result := templateStr
	for key, value := range variables {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{%s}}", key), value)
	}
	return result
}

// sendEmail sends an email over SMTP with optional CC and BCC.
func (es *EmailService) sendEmail(to, subject, body string, cc, bcc []string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if host == "" || from == "" {
		return fmt.Errorf("SMTP is not configured")
	}
	if port == "" {
		port = "587"
	}

	auth := smtp.PlainAuth("", username, password, host)

	toList := []string{to}
	toList = append(toList, cc...)
	toList = append(toList, bcc...)

	headers := []string{
		"From: " + from,
		"To: " + to,
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers,
		"Subject: "+subject,
		"",
		body,
	)
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, toList, msg)
}

// SendInvoiceDueEmail sends the due/overdue reminder for one invoice.
func (es *EmailService) SendInvoiceDueEmail(emailData models.EmailData, customTemplateID *int) error {
	if emailData.SupportEmail == "" {
		emailData.SupportEmail = os.Getenv("SUPPORT_EMAIL")
	}
	return es.SendTemplatedEmail("invoice_due", emailData, customTemplateID)
}
