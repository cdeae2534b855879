package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSalaryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:salary_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.SalaryConfig{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func setupSalaryRouter(t *testing.T, dbi *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/salary_configs", CreateSalaryConfig(dbi))
	r.GET("/api/salary_configs", GetAllSalaryConfigs(dbi))
	r.PUT("/api/salary_config/:id", UpdateSalaryConfig(dbi))
	r.DELETE("/api/salary_config/:id", DeleteSalaryConfig(dbi))
	return r
}

func salaryPayload() map[string]interface{} {
	return map[string]interface{}{
		"role":          "Site engineer",
		"fromDate":      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"toDate":        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		"salaryPerHead": 45000.0,
		"count":         4,
	}
}

func TestCreateSalaryConfigDerivesTotal(t *testing.T) {
	dbi := setupSalaryDB(t)
	r := setupSalaryRouter(t, dbi)
	token := authToken(t)

	payload := salaryPayload()
	// A client-sent total must be ignored; the server derives it.
	payload["totalSalary"] = 1.0

	rr := doJSON(t, r, http.MethodPost, "/api/salary_configs", token, payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}

	var cfg models.SalaryConfig
	if err := dbi.First(&cfg).Error; err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TotalSalary != 180000 {
		t.Errorf("totalSalary = %v, want 180000", cfg.TotalSalary)
	}
}

func TestCreateSalaryConfigRejectsInvertedDates(t *testing.T) {
	dbi := setupSalaryDB(t)
	r := setupSalaryRouter(t, dbi)
	token := authToken(t)

	payload := salaryPayload()
	payload["fromDate"] = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	payload["toDate"] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rr := doJSON(t, r, http.MethodPost, "/api/salary_configs", token, payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUpdateSalaryConfigRecalculates(t *testing.T) {
	dbi := setupSalaryDB(t)
	r := setupSalaryRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodPost, "/api/salary_configs", token, salaryPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", rr.Code, rr.Body.String())
	}
	var cfg models.SalaryConfig
	if err := dbi.First(&cfg).Error; err != nil {
		t.Fatalf("load config: %v", err)
	}

	payload := salaryPayload()
	payload["salaryPerHead"] = 50000.0
	payload["count"] = 2

	rr = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/salary_config/%d", cfg.ID), token, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	if err := dbi.First(&cfg, cfg.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.TotalSalary != 100000 {
		t.Errorf("totalSalary = %v, want 100000", cfg.TotalSalary)
	}
}

func TestDeleteSalaryConfig(t *testing.T) {
	dbi := setupSalaryDB(t)
	r := setupSalaryRouter(t, dbi)
	token := authToken(t)

	rr := doJSON(t, r, http.MethodPost, "/api/salary_configs", token, salaryPayload())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", rr.Code, rr.Body.String())
	}
	var cfg models.SalaryConfig
	if err := dbi.First(&cfg).Error; err != nil {
		t.Fatalf("load config: %v", err)
	}

	rr = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/salary_config/%d", cfg.ID), token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/salary_config/%d", cfg.ID), token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestSalaryConfigRequiresAuth(t *testing.T) {
	dbi := setupSalaryDB(t)
	r := setupSalaryRouter(t, dbi)

	rr := doJSON(t, r, http.MethodGet, "/api/salary_configs", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
