package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateProject godoc
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        body  body      models.ProjectRequest  true  "Project data"
// @Success      201   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/projects [post]
func CreateProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Status == "" {
			req.Status = "active"
		}

		var startDate, endDate interface{}
		if req.StartDate != nil {
			startDate = req.StartDate.ToTime()
		}
		if req.EndDate != nil {
			endDate = req.EndDate.ToTime()
		}

		var projectID int
		err := db.QueryRow(`
			INSERT INTO project (name, client_id, status, start_date, end_date, description, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING project_id`,
			req.Name, req.ClientID, req.Status, startDate, endDate, req.Description, time.Now(),
		).Scan(&projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Project created successfully", "project_id": projectID})
	}
}

// GetProject godoc
// @Summary      Get project by ID
// @Tags         projects
// @Param        id   path  int  true  "Project ID"
// @Success      200  {object}  models.Project
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/project/{id} [get]
func GetProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var p models.Project
		err := db.QueryRow(`
			SELECT project_id, name, client_id, status, start_date, end_date, description, created_at, updated_at
			FROM project WHERE project_id = $1`, c.Param("id"),
		).Scan(&p.ProjectID, &p.Name, &p.ClientID, &p.Status, &p.StartDate, &p.EndDate,
			&p.Description, &p.CreatedAt, &p.UpdatedAt)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, p)
	}
}

// GetAllProjects godoc
// @Summary      Get all projects
// @Tags         projects
// @Success      200  {array}   models.Project
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/projects [get]
func GetAllProjects(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		rows, err := db.Query(`
			SELECT project_id, name, client_id, status, start_date, end_date, description, created_at, updated_at
			FROM project ORDER BY project_id`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		projects := []models.Project{}
		for rows.Next() {
			var p models.Project
			if err := rows.Scan(&p.ProjectID, &p.Name, &p.ClientID, &p.Status, &p.StartDate, &p.EndDate,
				&p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			projects = append(projects, p)
		}

		c.JSON(http.StatusOK, projects)
	}
}

// GetProjectsByClientId godoc
// @Summary      Get all projects for a client
// @Tags         projects
// @Param        id   path  int  true  "Client ID"
// @Success      200  {array}   models.Project
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/client_projects/{id} [get]
func GetProjectsByClientId(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		rows, err := db.Query(`
			SELECT project_id, name, client_id, status, start_date, end_date, description, created_at, updated_at
			FROM project WHERE client_id = $1 ORDER BY project_id`, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		projects := []models.Project{}
		for rows.Next() {
			var p models.Project
			if err := rows.Scan(&p.ProjectID, &p.Name, &p.ClientID, &p.Status, &p.StartDate, &p.EndDate,
				&p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			projects = append(projects, p)
		}

		c.JSON(http.StatusOK, projects)
	}
}

// UpdateProject godoc
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Project ID"
// @Param        body  body  models.ProjectRequest  true  "Project data"
// @Success      200   {object}  models.SuccessResponse
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/project_update/{id} [put]
func UpdateProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var req models.ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var startDate, endDate interface{}
		if req.StartDate != nil {
			startDate = req.StartDate.ToTime()
		}
		if req.EndDate != nil {
			endDate = req.EndDate.ToTime()
		}

		result, err := db.Exec(`
			UPDATE project SET name=$1, client_id=$2, status=$3, start_date=$4, end_date=$5, description=$6, updated_at=$7
			WHERE project_id=$8`,
			req.Name, req.ClientID, req.Status, startDate, endDate, req.Description, time.Now(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully"})
	}
}

// DeleteProject godoc
// @Summary      Delete project
// @Tags         projects
// @Param        id   path  int  true  "Project ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/project_delete/{id} [delete]
func DeleteProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		projectID := c.Param("id")

		var hasInvoices bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM invoice WHERE project_id = $1)`, projectID).Scan(&hasInvoices); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if hasInvoices {
			c.JSON(http.StatusConflict, gin.H{"error": "Project has invoices and cannot be deleted"})
			return
		}

		var hasQuotations bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM quotation WHERE project_id = $1)`, projectID).Scan(&hasQuotations); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if hasQuotations {
			c.JSON(http.StatusConflict, gin.H{"error": "Project has quotations and cannot be deleted"})
			return
		}

		result, err := db.Exec(`DELETE FROM project WHERE project_id = $1`, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	}
}
