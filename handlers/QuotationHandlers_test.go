package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupQuotationDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:quotation_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.Quotation{}, &models.QuotationItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func setupQuotationRouter(t *testing.T, dbi *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/quotations", CreateQuotation(dbi))
	r.GET("/api/quotation/:id", GetQuotation(dbi))
	r.GET("/api/allquotations/:id", GetAllQuotationsByProjectId(dbi))
	r.PUT("/api/quotation_update/:id", UpdateQuotation(dbi))
	r.DELETE("/api/quotation_delete/:id", DeleteQuotation(dbi))
	return r
}

func authToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateJWT("test@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func quotationPayload() map[string]interface{} {
	return map[string]interface{}{
		"quotationNumber": "QTN-00017",
		"projectId":       1,
		"from":            map[string]interface{}{"name": "Acme Builders", "address": "12 MG Road", "gstNumber": "27AAACA1234F1Z5"},
		"to":              map[string]interface{}{"clientId": 1, "name": "Riverside Devs", "address": "4 Hill St"},
		"issueDate":       "2024-01-15",
		"dueDate":         "2024-02-15",
		"items": []map[string]interface{}{
			{"Name": "Wall panel", "quantity": 3, "rate": 100, "gstRate": 18, "unit": "sqm"},
			{"Name": "Beam", "quantity": 2, "rate": 50, "gstRate": 18},
		},
	}
}

func TestCreateQuotationComputesPerLineTotals(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, quotationPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}

	var q models.Quotation
	if err := dbi.Preload("Items").First(&q).Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}
	if len(q.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(q.Items))
	}

	// 3x100@18 => amount 300, cgst/sgst 27 each; 2x50@18 => 100, 9/9.
	if q.SubTotal != 400 {
		t.Errorf("subTotal = %v, want 400", q.SubTotal)
	}
	if q.TotalCGST != 36 || q.TotalSGST != 36 {
		t.Errorf("cgst/sgst = %v/%v, want 36/36", q.TotalCGST, q.TotalSGST)
	}
	if q.GrandTotal != 472 {
		t.Errorf("grandTotal = %v, want 472", q.GrandTotal)
	}
	first := q.Items[0]
	if first.Amount != 300 || first.CGST != 27 || first.SGST != 27 || first.Total != 354 {
		t.Errorf("first item = %+v, want 300/27/27/354", first)
	}
}

func TestCreateQuotationRejectsEmptyItems(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	payload := quotationPayload()
	payload["items"] = []map[string]interface{}{}

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, payload)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateQuotationRejectsZeroTotal(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	payload := quotationPayload()
	payload["items"] = []map[string]interface{}{
		{"Name": "Wall panel", "quantity": 1, "rate": 0, "gstRate": 18},
	}

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, payload)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateQuotationFiltersZeroTotalRows(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	payload := quotationPayload()
	// A missing rate defaults to zero instead of failing; the other line
	// keeps the document saveable.
	payload["items"] = []map[string]interface{}{
		{"Name": "Wall panel", "quantity": 3, "rate": 100, "gstRate": 18},
		{"Name": "Beam", "quantity": 2, "gstRate": 18},
	}

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}

	var q models.Quotation
	if err := dbi.Preload("Items").First(&q).Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}
	// The zero-total Beam row is filtered at serialization.
	if len(q.Items) != 1 {
		t.Fatalf("expected 1 stored item, got %d", len(q.Items))
	}
	if q.Items[0].Name != "Wall panel" {
		t.Errorf("stored item = %q, want Wall panel", q.Items[0].Name)
	}
}

func TestGetQuotationReturnsParties(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, quotationPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", rr.Code, rr.Body.String())
	}

	var q models.Quotation
	if err := dbi.First(&q).Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	rr = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/quotation/%d", q.ID), token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	var got struct {
		QuotationNumber string       `json:"quotationNumber"`
		From            models.Party `json:"from"`
		To              models.Party `json:"to"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.QuotationNumber != "QTN-00017" {
		t.Errorf("quotationNumber = %q", got.QuotationNumber)
	}
	if got.From.Name != "Acme Builders" || got.To.Name != "Riverside Devs" {
		t.Errorf("parties = %q / %q", got.From.Name, got.To.Name)
	}
}

func TestUpdateQuotationReplacesItems(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, quotationPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", rr.Code, rr.Body.String())
	}
	var q models.Quotation
	if err := dbi.First(&q).Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	payload := quotationPayload()
	payload["items"] = []map[string]interface{}{
		{"Name": "Column", "quantity": 1, "rate": 1000, "gstRate": 18},
	}

	rr = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/quotation_update/%d", q.ID), token, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	var updated models.Quotation
	if err := dbi.Preload("Items").First(&updated, q.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected items replaced, got %d rows", len(updated.Items))
	}
	if updated.GrandTotal != 1180 {
		t.Errorf("grandTotal = %v, want 1180", updated.GrandTotal)
	}

	var orphanCount int64
	dbi.Model(&models.QuotationItem{}).Count(&orphanCount)
	if orphanCount != 1 {
		t.Errorf("expected old item rows deleted, have %d", orphanCount)
	}
}

func TestDeleteQuotationRemovesItems(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", token, quotationPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", rr.Code, rr.Body.String())
	}
	var q models.Quotation
	if err := dbi.First(&q).Error; err != nil {
		t.Fatalf("load quotation: %v", err)
	}

	rr = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/quotation_delete/%d", q.ID), token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	var count int64
	dbi.Model(&models.Quotation{}).Count(&count)
	if count != 0 {
		t.Errorf("quotation rows left: %d", count)
	}
	dbi.Model(&models.QuotationItem{}).Count(&count)
	if count != 0 {
		t.Errorf("item rows left: %d", count)
	}
}

func TestQuotationEndpointsRequireAuth(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)

	rr := doJSON(t, r, http.MethodPost, "/api/quotations", "", quotationPayload())
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	rr = doJSON(t, r, http.MethodGet, "/api/quotation/1", "not-a-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestGetQuotationNotFound(t *testing.T) {
	dbi := setupQuotationDB(t)
	r := setupQuotationRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodGet, "/api/quotation/999", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", rr.Code, rr.Body.String())
	}
}
