package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"backend/models"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

func pdfPartyBlock(pdf *gofpdf.Fpdf, from, to models.Party) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(95, 8, "From")
	pdf.Cell(95, 8, "Bill To")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	y := pdf.GetY()
	pdf.MultiCell(90, 6, fmt.Sprintf("%s\n%s\n%s\nGSTIN: %s", from.Name, from.Address, from.Contact, from.GSTNumber), "", "", false)
	pdf.SetXY(110, y)
	pdf.MultiCell(90, 6, fmt.Sprintf("%s\n%s\n%s\nGSTIN: %s", to.Name, to.Address, to.Contact, to.GSTNumber), "", "", false)
	pdf.Ln(6)
}

func pdfFooter(pdf *gofpdf.Fpdf, kind string) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(190, 6, fmt.Sprintf("This is a computer-generated %s. No signature required.", kind))
	pdf.Ln(5)
	pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))
}

// GenerateInvoicePDF godoc
// @Summary      Generate invoice PDF
// @Tags         invoices
// @Param        id   path  int  true  "Invoice ID"
// @Success      200  "PDF file"
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/invoice_pdf/{id} [get]
func GenerateInvoicePDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		invoiceID := c.Param("id")
		titleCaser := cases.Title(language.Und)

		inv, err := scanInvoice(db.QueryRow(`SELECT `+invoiceColumns+` FROM invoice i WHERE i.id = $1`, invoiceID))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items, err := fetchInvoiceItems(db, inv.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "TAX INVOICE")
		pdf.Ln(12)

		pdfPartyBlock(pdf, inv.From, inv.To)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(95, 6, fmt.Sprintf("Invoice No: %s", inv.InvoiceNumber))
		pdf.Cell(95, 6, fmt.Sprintf("Due Date: %s", inv.DueDate.Format("02-Jan-2006")))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("Invoice Date: %s", inv.IssueDate.Format("02-Jan-2006")))
		pdf.Cell(95, 6, fmt.Sprintf("Status: %s", titleCaser.String(inv.Status)))
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(70, 8, "Item", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 8, "Rate", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 8, "Amount", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Total", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range items {
			pdf.CellFormat(70, 8, item.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.Rate), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.LineAmount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.LineTotal), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(5)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(155, 8, "Subtotal")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", inv.SubTotal), "1", 1, "R", false, 0, "")
		pdf.Cell(155, 8, fmt.Sprintf("GST (%.1f%%)", inv.GSTPercentage))
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", inv.TotalGST), "1", 1, "R", false, 0, "")
		pdf.Cell(155, 8, "CGST")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", inv.TotalCGST), "1", 1, "R", false, 0, "")
		pdf.Cell(155, 8, "SGST")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", inv.TotalSGST), "1", 1, "R", false, 0, "")
		pdf.Cell(155, 8, "Grand Total")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", inv.GrandTotal), "1", 1, "R", false, 0, "")

		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(190, 8, "Terms & Conditions:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, inv.TermsAndConditions, "", "L", false)

		pdfFooter(pdf, "invoice")

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", inv.InvoiceNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}

// GenerateQuotationPDF godoc
// @Summary      Generate quotation PDF
// @Tags         quotations
// @Param        id   path  int  true  "Quotation ID"
// @Success      200  "PDF file"
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotation_pdf/{id} [get]
func GenerateQuotationPDF(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var q models.Quotation
		err := db.Preload("Items").First(&q, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "QUOTATION")
		pdf.Ln(12)

		pdfPartyBlock(pdf, q.FromParty(), q.ToParty())

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(95, 6, fmt.Sprintf("Quotation No: %s", q.QuotationNumber))
		pdf.Cell(95, 6, fmt.Sprintf("Valid Until: %s", q.DueDate.Format("02-Jan-2006")))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("Quotation Date: %s", q.IssueDate.Format("02-Jan-2006")))
		pdf.Ln(10)

		// Quotations spell out per-line tax, so the table carries the
		// CGST/SGST columns the invoice table folds into one GST row.
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(50, 8, "Item", "1", 0, "L", true, 0, "")
		pdf.CellFormat(18, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(18, 8, "Unit", "1", 0, "C", true, 0, "")
		pdf.CellFormat(24, 8, "Rate", "1", 0, "C", true, 0, "")
		pdf.CellFormat(24, 8, "Amount", "1", 0, "C", true, 0, "")
		pdf.CellFormat(16, 8, "CGST", "1", 0, "C", true, 0, "")
		pdf.CellFormat(16, 8, "SGST", "1", 0, "C", true, 0, "")
		pdf.CellFormat(24, 8, "Total", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range q.Items {
			pdf.CellFormat(50, 8, item.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(18, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(18, 8, item.Unit, "1", 0, "C", false, 0, "")
			pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", item.Rate), "1", 0, "C", false, 0, "")
			pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", item.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(16, 8, fmt.Sprintf("%.2f", item.CGST), "1", 0, "R", false, 0, "")
			pdf.CellFormat(16, 8, fmt.Sprintf("%.2f", item.SGST), "1", 0, "R", false, 0, "")
			pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", item.Total), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(5)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(166, 8, "Subtotal")
		pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", q.SubTotal), "1", 1, "R", false, 0, "")
		pdf.Cell(166, 8, "Total CGST")
		pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", q.TotalCGST), "1", 1, "R", false, 0, "")
		pdf.Cell(166, 8, "Total SGST")
		pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", q.TotalSGST), "1", 1, "R", false, 0, "")
		pdf.Cell(166, 8, "Grand Total")
		pdf.CellFormat(24, 8, fmt.Sprintf("%.2f", q.GrandTotal), "1", 1, "R", false, 0, "")

		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(190, 8, "Terms & Conditions:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, q.TermsAndConditions, "", "L", false)

		pdfFooter(pdf, "quotation")

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quotation_%s.pdf", q.QuotationNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}
