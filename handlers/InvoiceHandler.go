package handlers

import (
	"backend/ledger"
	"backend/models"
	"backend/repository"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// The invoice form applies one flat gstPercentage to the subtotal; the
// per-line cgst/sgst still travel with each item for list and print
// views. Quotations (QuotationHandlers.go) sum per-line tax instead.

// buildInvoiceLedger parses the raw items of a request, enforces the
// save rules and returns the ledger plus the flat-model totals.
func buildInvoiceLedger(req models.InvoiceRequest) (*ledger.Ledger, ledger.Totals, error) {
	parsed, err := ledger.ParseWireItems(req.Items)
	if err != nil {
		return nil, ledger.Totals{}, &ledger.ValidationError{Message: "malformed items payload"}
	}
	l := ledger.FromItems(parsed, defaultGSTRate())
	if err := l.ValidateForSave(); err != nil {
		return nil, ledger.Totals{}, err
	}

	var subTotal float64
	for _, it := range l.ValidItems() {
		subTotal += it.Amount
	}
	totals := ledger.FlatGSTTotals(subTotal, req.GSTPercentage)
	return l, totals, nil
}

// CreateInvoice godoc
// @Summary      Create invoice
// @Description  Create a new invoice with its line items
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body      models.InvoiceRequest  true  "Invoice data"
// @Success      201   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      422   {object}  models.ErrorResponse
// @Router       /api/invoices [post]
func CreateInvoice(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		createdBy, ok := requireSession(c, db)
		if !ok {
			return
		}

		var req models.InvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.ProjectID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A project is required before saving an invoice"})
			return
		}
		var projectExists bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM project WHERE project_id = $1)`, req.ProjectID).Scan(&projectExists); err != nil || !projectExists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project not found"})
			return
		}

		l, totals, err := buildInvoiceLedger(req)
		if err != nil {
			var verr *ledger.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.InvoiceNumber == "" {
			seq, err := repository.NextInvoiceSequence(db)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			req.InvoiceNumber = repository.GenerateDocumentNumber("INV", seq)
		}
		if req.TermsAndConditions == "" {
			req.TermsAndConditions = models.DefaultTerms
		}

		fromJSON, _ := json.Marshal(req.From)
		toJSON, _ := json.Marshal(req.To)

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var signedDate interface{}
		if req.SignedDate != nil {
			signedDate = req.SignedDate.ToTime()
		}

		var invoiceID int
		err = tx.QueryRow(`
			INSERT INTO invoice (invoice_number, project_id, client_id, created_by, from_party, to_party,
				issue_date, due_date, signed_date, gst_percentage, sub_total, total_gst, grand_total,
				terms_and_conditions, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16) RETURNING id`,
			req.InvoiceNumber, req.ProjectID, req.To.ClientID, createdBy, fromJSON, toJSON,
			req.IssueDate.ToTime(), req.DueDate.ToTime(), signedDate, req.GSTPercentage,
			totals.SubTotal, totals.TotalCGST+totals.TotalSGST, totals.GrandTotal,
			req.TermsAndConditions, models.InvoiceStatusUnpaid, time.Now(),
		).Scan(&invoiceID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := insertInvoiceItems(tx, invoiceID, l.InvoiceItems()); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":        "Invoice created successfully",
			"id":             invoiceID,
			"invoice_number": req.InvoiceNumber,
			"grand_total":    totals.GrandTotal,
		})
	}
}

func insertInvoiceItems(tx *sql.Tx, invoiceID int, items []ledger.InvoiceWireItem) error {
	for _, item := range items {
		_, err := tx.Exec(`
			INSERT INTO invoice_item (invoice_id, name, quantity, rate, gst_rate, line_amount, cgst, sgst, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			invoiceID, item.Name, item.Quantity, item.Rate, item.GSTRate,
			item.LineAmount, item.CGST, item.SGST, item.LineTotal,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanInvoice(row *sql.Row) (*models.Invoice, error) {
	var inv models.Invoice
	var fromRaw, toRaw []byte
	var signedDate sql.NullTime
	var totalGST float64

	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ProjectID, &inv.CreatedBy,
		&fromRaw, &toRaw, &inv.IssueDate, &inv.DueDate, &signedDate,
		&inv.GSTPercentage, &inv.SubTotal, &totalGST, &inv.GrandTotal,
		&inv.TermsAndConditions, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(fromRaw) > 0 {
		_ = json.Unmarshal(fromRaw, &inv.From)
	}
	if len(toRaw) > 0 {
		_ = json.Unmarshal(toRaw, &inv.To)
	}
	if signedDate.Valid {
		d := models.DateOnly{Time: signedDate.Time}
		inv.SignedDate = &d
	}
	inv.TotalGST = totalGST
	inv.TotalCGST = totalGST / 2
	inv.TotalSGST = totalGST / 2
	return &inv, nil
}

const invoiceColumns = `
	i.id, i.invoice_number, i.project_id, i.created_by, i.from_party, i.to_party,
	i.issue_date, i.due_date, i.signed_date, i.gst_percentage, i.sub_total,
	i.total_gst, i.grand_total, i.terms_and_conditions, i.status, i.created_at, i.updated_at`

// GetInvoice godoc
// @Summary      Get invoice by ID
// @Tags         invoices
// @Param        id   path  int  true  "Invoice ID"
// @Success      200  {object}  models.Invoice
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/invoice/{id} [get]
func GetInvoice(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		invoiceID := c.Param("id")
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
		inv.Items = items

		c.JSON(http.StatusOK, inv)
	}
}

func fetchInvoiceItems(db *sql.DB, invoiceID int) ([]ledger.InvoiceWireItem, error) {
	rows, err := db.Query(`
		SELECT name, quantity, rate, gst_rate, line_amount, cgst, sgst, line_total
		FROM invoice_item WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ledger.InvoiceWireItem{}
	for rows.Next() {
		var item ledger.InvoiceWireItem
		if err := rows.Scan(&item.Name, &item.Quantity, &item.Rate, &item.GSTRate,
			&item.LineAmount, &item.CGST, &item.SGST, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetAllInvoicesByProjectId godoc
// @Summary      Get all invoices by project ID
// @Tags         invoices
// @Param        id   path  int  true  "Project ID"
// @Success      200  {array}   models.Invoice
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/allinvoices/{id} [get]
func GetAllInvoicesByProjectId(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		projectID := c.Param("id")
		rows, err := db.Query(`SELECT `+invoiceColumns+` FROM invoice i WHERE i.project_id = $1 ORDER BY i.id`, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		invoices := []models.Invoice{}
		for rows.Next() {
			var inv models.Invoice
			var fromRaw, toRaw []byte
			var signedDate sql.NullTime
			var totalGST float64

			if err := rows.Scan(
				&inv.ID, &inv.InvoiceNumber, &inv.ProjectID, &inv.CreatedBy,
				&fromRaw, &toRaw, &inv.IssueDate, &inv.DueDate, &signedDate,
				&inv.GSTPercentage, &inv.SubTotal, &totalGST, &inv.GrandTotal,
				&inv.TermsAndConditions, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if len(fromRaw) > 0 {
				_ = json.Unmarshal(fromRaw, &inv.From)
			}
			if len(toRaw) > 0 {
				_ = json.Unmarshal(toRaw, &inv.To)
			}
			if signedDate.Valid {
				d := models.DateOnly{Time: signedDate.Time}
				inv.SignedDate = &d
			}
			inv.TotalGST = totalGST
			inv.TotalCGST = totalGST / 2
			inv.TotalSGST = totalGST / 2

			invoices = append(invoices, inv)
		}

		c.JSON(http.StatusOK, invoices)
	}
}

// UpdateInvoice godoc
// @Summary      Update invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Invoice ID"
// @Param        body  body  models.InvoiceRequest  true  "Invoice data"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Failure      422   {object}  models.ErrorResponse
// @Router       /api/invoice_update/{id} [put]
func UpdateInvoice(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		invoiceID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
			return
		}

		var req models.InvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.ProjectID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A project is required before saving an invoice"})
			return
		}

		l, totals, err := buildInvoiceLedger(req)
		if err != nil {
			var verr *ledger.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.TermsAndConditions == "" {
			req.TermsAndConditions = models.DefaultTerms
		}

		fromJSON, _ := json.Marshal(req.From)
		toJSON, _ := json.Marshal(req.To)

		var signedDate interface{}
		if req.SignedDate != nil {
			signedDate = req.SignedDate.ToTime()
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		result, err := tx.Exec(`
			UPDATE invoice SET invoice_number=$1, project_id=$2, client_id=$3, from_party=$4, to_party=$5,
				issue_date=$6, due_date=$7, signed_date=$8, gst_percentage=$9, sub_total=$10,
				total_gst=$11, grand_total=$12, terms_and_conditions=$13, updated_at=$14
			WHERE id=$15`,
			req.InvoiceNumber, req.ProjectID, req.To.ClientID, fromJSON, toJSON,
			req.IssueDate.ToTime(), req.DueDate.ToTime(), signedDate, req.GSTPercentage,
			totals.SubTotal, totals.TotalCGST+totals.TotalSGST, totals.GrandTotal,
			req.TermsAndConditions, time.Now(), invoiceID,
		)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		}

		// Replace items wholesale: the ledger is the source of truth.
		if _, err := tx.Exec(`DELETE FROM invoice_item WHERE invoice_id = $1`, invoiceID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := insertInvoiceItems(tx, invoiceID, l.InvoiceItems()); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Invoice updated successfully", "grand_total": totals.GrandTotal})
	}
}

// DeleteInvoice godoc
// @Summary      Delete invoice
// @Tags         invoices
// @Param        id   path  int  true  "Invoice ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/invoice_delete/{id} [delete]
func DeleteInvoice(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		invoiceID := c.Param("id")

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if _, err := tx.Exec(`DELETE FROM invoice_item WHERE invoice_id = $1`, invoiceID); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		result, err := tx.Exec(`DELETE FROM invoice WHERE id = $1`, invoiceID)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		}
		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
	}
}

// UpdateInvoiceStatus godoc
// @Summary      Update invoice payment status
// @Tags         invoices
// @Accept       json
// @Param        id   path  int  true  "Invoice ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/invoice_status/{id} [put]
func UpdateInvoiceStatus(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		switch body.Status {
		case models.InvoiceStatusUnpaid, models.InvoiceStatusPartialPaid,
			models.InvoiceStatusFullyPaid, models.InvoiceStatusOverdue:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}

		result, err := db.Exec(`UPDATE invoice SET status = $1, updated_at = $2 WHERE id = $3`,
			body.Status, time.Now(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invoice status updated"})
	}
}
