package handlers

import (
	"backend/ledger"
	"backend/models"
	"backend/repository"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Quotations use the per-line tax model: document totals are the sums of
// the line cgst/sgst columns, no flat percentage is stored.

func buildQuotationLedger(req models.QuotationRequest) (*ledger.Ledger, ledger.Totals, error) {
	parsed, err := ledger.ParseWireItems(req.Items)
	if err != nil {
		return nil, ledger.Totals{}, &ledger.ValidationError{Message: "malformed items payload"}
	}
	l := ledger.FromItems(parsed, defaultGSTRate())
	if err := l.ValidateForSave(); err != nil {
		return nil, ledger.Totals{}, err
	}
	return l, l.DocumentTotals(), nil
}

func quotationFromRequest(req models.QuotationRequest, l *ledger.Ledger, totals ledger.Totals, createdBy int) models.Quotation {
	q := models.Quotation{
		QuotationNumber:    req.QuotationNumber,
		ProjectID:          req.ProjectID,
		ClientID:           req.To.ClientID,
		FromName:           req.From.Name,
		FromAddress:        req.From.Address,
		FromContact:        req.From.Contact,
		FromGSTNumber:      req.From.GSTNumber,
		ToName:             req.To.Name,
		ToAddress:          req.To.Address,
		ToContact:          req.To.Contact,
		ToGSTNumber:        req.To.GSTNumber,
		IssueDate:          req.IssueDate.ToTime(),
		DueDate:            req.DueDate.ToTime(),
		SubTotal:           totals.SubTotal,
		TotalCGST:          totals.TotalCGST,
		TotalSGST:          totals.TotalSGST,
		GrandTotal:         totals.GrandTotal,
		TermsAndConditions: req.TermsAndConditions,
		CreatedBy:          createdBy,
	}
	if req.SignedDate != nil {
		t := req.SignedDate.ToTime()
		q.SignedDate = &t
	}
	if q.TermsAndConditions == "" {
		q.TermsAndConditions = models.DefaultTerms
	}
	for _, it := range l.QuotationItems() {
		q.Items = append(q.Items, models.QuotationItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Rate:     it.Rate,
			GSTRate:  it.GSTRate,
			Unit:     it.Unit,
			Amount:   it.Amount,
			CGST:     it.CGST,
			SGST:     it.SGST,
			Total:    it.Total,
		})
	}
	return q
}

type quotationResponse struct {
	models.Quotation
	From models.Party `json:"from"`
	To   models.Party `json:"to"`
}

func presentQuotation(q models.Quotation) quotationResponse {
	return quotationResponse{Quotation: q, From: q.FromParty(), To: q.ToParty()}
}

// CreateQuotation godoc
// @Summary      Create quotation
// @Description  Create a new quotation with its line items
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        body  body      models.QuotationRequest  true  "Quotation data"
// @Success      201   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      422   {object}  models.ErrorResponse
// @Router       /api/quotations [post]
func CreateQuotation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var req models.QuotationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		l, totals, err := buildQuotationLedger(req)
		if err != nil {
			var verr *ledger.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.QuotationNumber == "" {
			var seq int64
			db.Model(&models.Quotation{}).Count(&seq)
			req.QuotationNumber = repository.GenerateDocumentNumber("QTN", int(seq)+1)
		}

		q := quotationFromRequest(req, l, totals, 0)
		if err := db.Create(&q).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":          "Quotation created successfully",
			"id":               q.ID,
			"quotation_number": q.QuotationNumber,
			"grand_total":      q.GrandTotal,
		})
	}
}

// GetQuotation godoc
// @Summary      Get quotation by ID
// @Tags         quotations
// @Param        id   path  int  true  "Quotation ID"
// @Success      200  {object}  models.Quotation
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotation/{id} [get]
func GetQuotation(db *gorm.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, presentQuotation(q))
	}
}

// GetAllQuotationsByProjectId godoc
// @Summary      Get all quotations by project ID
// @Tags         quotations
// @Param        id   path  int  true  "Project ID"
// @Success      200  {array}   models.Quotation
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/allquotations/{id} [get]
func GetAllQuotationsByProjectId(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var quotations []models.Quotation
		if err := db.Preload("Items").Where("project_id = ?", c.Param("id")).Order("id").Find(&quotations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out := make([]quotationResponse, 0, len(quotations))
		for _, q := range quotations {
			out = append(out, presentQuotation(q))
		}
		c.JSON(http.StatusOK, out)
	}
}

// UpdateQuotation godoc
// @Summary      Update quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "Quotation ID"
// @Param        body  body  models.QuotationRequest  true  "Quotation data"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Failure      422   {object}  models.ErrorResponse
// @Router       /api/quotation_update/{id} [put]
func UpdateQuotation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		var req models.QuotationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		l, totals, err := buildQuotationLedger(req)
		if err != nil {
			var verr *ledger.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var existing models.Quotation
		if errors.Is(db.First(&existing, id).Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}

		updated := quotationFromRequest(req, l, totals, existing.CreatedBy)
		updated.ID = existing.ID
		if updated.QuotationNumber == "" {
			updated.QuotationNumber = existing.QuotationNumber
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("quotation_id = ?", existing.ID).Delete(&models.QuotationItem{}).Error; err != nil {
				return err
			}
			return tx.Save(&updated).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quotation updated successfully", "grand_total": updated.GrandTotal})
	}
}

// DeleteQuotation godoc
// @Summary      Delete quotation
// @Tags         quotations
// @Param        id   path  int  true  "Quotation ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotation_delete/{id} [delete]
func DeleteQuotation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var q models.Quotation
		if errors.Is(db.First(&q, c.Param("id")).Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&q).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Quotation deleted successfully"})
	}
}
