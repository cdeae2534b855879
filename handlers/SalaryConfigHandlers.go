package handlers

import (
	"backend/models"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateSalaryConfig godoc
// @Summary      Create salary config
// @Description  Create a salary configuration row. totalSalary is derived server-side.
// @Tags         salary
// @Accept       json
// @Produce      json
// @Param        body  body      models.SalaryConfigRequest  true  "Salary config data"
// @Success      201   {object}  models.SalaryConfig
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/salary_configs [post]
func CreateSalaryConfig(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var req models.SalaryConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.ToDate.Before(req.FromDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "toDate must not be before fromDate"})
			return
		}

		cfg := models.SalaryConfig{
			Role:          req.Role,
			FromDate:      req.FromDate,
			ToDate:        req.ToDate,
			SalaryPerHead: req.SalaryPerHead,
			Count:         req.Count,
		}
		cfg.Recalculate()

		if err := db.Create(&cfg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, cfg)
	}
}

// GetAllSalaryConfigs godoc
// @Summary      Get all salary configs
// @Tags         salary
// @Success      200  {array}   models.SalaryConfig
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/salary_configs [get]
func GetAllSalaryConfigs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var configs []models.SalaryConfig
		if err := db.Order("id").Find(&configs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, configs)
	}
}

// UpdateSalaryConfig godoc
// @Summary      Update salary config
// @Tags         salary
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "Salary config ID"
// @Param        body  body  models.SalaryConfigRequest  true  "Salary config data"
// @Success      200   {object}  models.SalaryConfig
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/salary_config/{id} [put]
func UpdateSalaryConfig(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		var req models.SalaryConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.ToDate.Before(req.FromDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "toDate must not be before fromDate"})
			return
		}

		var cfg models.SalaryConfig
		err := db.First(&cfg, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Salary config not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		cfg.Role = req.Role
		cfg.FromDate = req.FromDate
		cfg.ToDate = req.ToDate
		cfg.SalaryPerHead = req.SalaryPerHead
		cfg.Count = req.Count
		cfg.Recalculate()

		if err := db.Save(&cfg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, cfg)
	}
}

// DeleteSalaryConfig godoc
// @Summary      Delete salary config
// @Tags         salary
// @Param        id   path  int  true  "Salary config ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/salary_config/{id} [delete]
func DeleteSalaryConfig(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireJWT(c) {
			return
		}

		result := db.Delete(&models.SalaryConfig{}, c.Param("id"))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Salary config not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Salary config deleted successfully"})
	}
}
