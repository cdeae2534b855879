package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PreviewEmailTemplate renders a stored template with caller-supplied
// variables, as the plain text a recipient would read.
// @Summary Preview email template
// @Description Renders the template's subject and body with the given variables substituted.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param body body models.EmailData true "Variables to substitute"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/email_template_preview/{id} [post]
func PreviewEmailTemplate(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		templateID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
			return
		}

		var emailData models.EmailData
		if err := c.ShouldBindJSON(&emailData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		template, err := models.GetTemplateByID(db, templateID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"template_type": template.TemplateType,
			"subject":       emailService.PreviewEmailAsText(template.Subject, emailData),
			"body":          emailService.PreviewEmailAsText(template.Body, emailData),
		})
	}
}
