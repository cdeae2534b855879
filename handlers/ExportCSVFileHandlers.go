package handlers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"backend/models"
)

type invoiceExportRow struct {
	ID            int
	InvoiceNumber string
	ClientName    string
	IssueDate     time.Time
	DueDate       time.Time
	SubTotal      float64
	TotalGST      float64
	GrandTotal    float64
	Status        string
}

func fetchInvoiceExportRows(db *sql.DB, projectID int) ([]invoiceExportRow, error) {
	rows, err := db.Query(`
		SELECT i.id, i.invoice_number, COALESCE(i.to_party->>'name', '') AS client_name,
			i.issue_date, i.due_date, i.sub_total, i.total_gst, i.grand_total, i.status
		FROM invoice i
		WHERE i.project_id = $1
		ORDER BY i.id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []invoiceExportRow{}
	for rows.Next() {
		var r invoiceExportRow
		if err := rows.Scan(&r.ID, &r.InvoiceNumber, &r.ClientName, &r.IssueDate, &r.DueDate,
			&r.SubTotal, &r.TotalGST, &r.GrandTotal, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ExportInvoicesCSV godoc
// @Summary      Export the invoice register of a project as CSV
// @Tags         export
// @Produce      text/csv
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {file}  file  "CSV file"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/export_csv_invoices/{project_id} [get]
func ExportInvoicesCSV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}

		invoices, err := fetchInvoiceExportRows(db, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching invoice data"})
			return
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment;filename=invoice_register.csv")

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		header := []string{"InvoiceNumber", "Client", "IssueDate", "DueDate", "SubTotal", "GST", "GrandTotal", "Status"}
		if err := writer.Write(header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
			return
		}

		var totalSub, totalGST, totalGrand float64
		for _, inv := range invoices {
			row := []string{
				inv.InvoiceNumber,
				inv.ClientName,
				inv.IssueDate.Format("2006-01-02"),
				inv.DueDate.Format("2006-01-02"),
				fmt.Sprintf("%.2f", inv.SubTotal),
				fmt.Sprintf("%.2f", inv.TotalGST),
				fmt.Sprintf("%.2f", inv.GrandTotal),
				inv.Status,
			}
			if err := writer.Write(row); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
				return
			}
			totalSub += inv.SubTotal
			totalGST += inv.TotalGST
			totalGrand += inv.GrandTotal
		}

		totalsRow := []string{"TOTAL", "", "", "",
			fmt.Sprintf("%.2f", totalSub), fmt.Sprintf("%.2f", totalGST), fmt.Sprintf("%.2f", totalGrand), ""}
		if err := writer.Write(totalsRow); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV totals"})
			return
		}
	}
}

// ExportQuotationsCSV godoc
// @Summary      Export the quotation register of a project as CSV
// @Tags         export
// @Produce      text/csv
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {file}  file  "CSV file"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/export_csv_quotations/{project_id} [get]
func ExportQuotationsCSV(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}

		var quotations []models.Quotation
		if err := db.Where("project_id = ?", projectID).Order("id").Find(&quotations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quotation data"})
			return
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment;filename=quotation_register.csv")

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		header := []string{"QuotationNumber", "Client", "IssueDate", "ValidUntil", "SubTotal", "CGST", "SGST", "GrandTotal"}
		if err := writer.Write(header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
			return
		}

		var totalSub, totalCGST, totalSGST, totalGrand float64
		for _, q := range quotations {
			row := []string{
				q.QuotationNumber,
				q.ToName,
				q.IssueDate.Format("2006-01-02"),
				q.DueDate.Format("2006-01-02"),
				fmt.Sprintf("%.2f", q.SubTotal),
				fmt.Sprintf("%.2f", q.TotalCGST),
				fmt.Sprintf("%.2f", q.TotalSGST),
				fmt.Sprintf("%.2f", q.GrandTotal),
			}
			if err := writer.Write(row); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
				return
			}
			totalSub += q.SubTotal
			totalCGST += q.TotalCGST
			totalSGST += q.TotalSGST
			totalGrand += q.GrandTotal
		}

		totalsRow := []string{"TOTAL", "", "", "",
			fmt.Sprintf("%.2f", totalSub), fmt.Sprintf("%.2f", totalCGST),
			fmt.Sprintf("%.2f", totalSGST), fmt.Sprintf("%.2f", totalGrand)}
		if err := writer.Write(totalsRow); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV totals"})
			return
		}
	}
}

// ExportInvoicesXLSX godoc
// @Summary      Export the invoice register of a project as an Excel workbook
// @Tags         export
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {file}  file  "XLSX file"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/export_xlsx_invoices/{project_id} [get]
func ExportInvoicesXLSX(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}

		var projectName string
		if err := db.QueryRow("SELECT name FROM project WHERE project_id = $1", projectID).Scan(&projectName); err != nil {
			projectName = "project"
		}

		invoices, err := fetchInvoiceExportRows(db, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching invoice data"})
			return
		}

		f := excelize.NewFile()
		defer func() {
			if err := f.Close(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
			}
		}()

		sheet := "Invoices"
		index, err := f.NewSheet(sheet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		f.SetCellValue(sheet, "A1", "Invoice Register")
		f.SetCellValue(sheet, "A2", "Project")
		f.SetCellValue(sheet, "B2", projectName)
		f.SetCellValue(sheet, "A3", "Exported")
		f.SetCellValue(sheet, "B3", time.Now().Format("2006-01-02 15:04:05"))

		headers := []string{"Invoice No", "Client", "Issue Date", "Due Date", "Subtotal", "GST", "Grand Total", "Status"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 5)
			f.SetCellValue(sheet, cell, h)
		}

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
		})
		if err == nil {
			startCell, _ := excelize.CoordinatesToCellName(1, 5)
			endCell, _ := excelize.CoordinatesToCellName(len(headers), 5)
			f.SetCellStyle(sheet, startCell, endCell, headerStyle)
		}

		var totalSub, totalGST, totalGrand float64
		for row, inv := range invoices {
			values := []interface{}{
				inv.InvoiceNumber, inv.ClientName,
				inv.IssueDate.Format("2006-01-02"), inv.DueDate.Format("2006-01-02"),
				inv.SubTotal, inv.TotalGST, inv.GrandTotal, inv.Status,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+6)
				f.SetCellValue(sheet, cell, v)
			}
			totalSub += inv.SubTotal
			totalGST += inv.TotalGST
			totalGrand += inv.GrandTotal
		}

		totalsRow := len(invoices) + 6
		f.SetCellValue(sheet, fmt.Sprintf("A%d", totalsRow), "TOTAL")
		f.SetCellValue(sheet, fmt.Sprintf("E%d", totalsRow), totalSub)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", totalsRow), totalGST)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", totalsRow), totalGrand)

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment;filename=invoice_register.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}
