package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateClient godoc
// @Summary      Create client
// @Description  Create a new client. The GST number is accepted as gst, gstNo or gstNumber.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      models.ClientRequest  true  "Client data"
// @Success      201   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/clients [post]
func CreateClient(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var req models.ClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var clientID int
		err := db.QueryRow(`
			INSERT INTO client (name, organization, address, email, phone, gst_number, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING client_id`,
			req.Name, req.Organization, req.Address, req.Email, req.Phone, req.NormalizedGST(), time.Now(),
		).Scan(&clientID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Client created successfully", "client_id": clientID})
	}
}

// GetClient godoc
// @Summary      Get client by ID
// @Tags         clients
// @Param        id   path  int  true  "Client ID"
// @Success      200  {object}  models.Client
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/client/{id} [get]
func GetClient(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var client models.Client
		err := db.QueryRow(`
			SELECT client_id, name, organization, address, email, phone, gst_number, created_at, updated_at
			FROM client WHERE client_id = $1`, c.Param("id"),
		).Scan(&client.ClientID, &client.Name, &client.Organization, &client.Address,
			&client.Email, &client.Phone, &client.GSTNumber, &client.CreatedAt, &client.UpdatedAt)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, client)
	}
}

// GetAllClients godoc
// @Summary      Get all clients
// @Tags         clients
// @Success      200  {array}   models.Client
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/clients [get]
func GetAllClients(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		rows, err := db.Query(`
			SELECT client_id, name, organization, address, email, phone, gst_number, created_at, updated_at
			FROM client ORDER BY client_id`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		clients := []models.Client{}
		for rows.Next() {
			var client models.Client
			if err := rows.Scan(&client.ClientID, &client.Name, &client.Organization, &client.Address,
				&client.Email, &client.Phone, &client.GSTNumber, &client.CreatedAt, &client.UpdatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			clients = append(clients, client)
		}

		c.JSON(http.StatusOK, clients)
	}
}

// UpdateClient godoc
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "Client ID"
// @Param        body  body  models.ClientRequest  true  "Client data"
// @Success      200   {object}  models.SuccessResponse
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/client_update/{id} [put]
func UpdateClient(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		var req models.ClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := db.Exec(`
			UPDATE client SET name=$1, organization=$2, address=$3, email=$4, phone=$5, gst_number=$6, updated_at=$7
			WHERE client_id=$8`,
			req.Name, req.Organization, req.Address, req.Email, req.Phone, req.NormalizedGST(), time.Now(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Client updated successfully"})
	}
}

// DeleteClient godoc
// @Summary      Delete client
// @Tags         clients
// @Param        id   path  int  true  "Client ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/client_delete/{id} [delete]
func DeleteClient(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireSession(c, db); !ok {
			return
		}

		clientID := c.Param("id")

		var inUse bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM project WHERE client_id = $1)`, clientID).Scan(&inUse); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if inUse {
			c.JSON(http.StatusConflict, gin.H{"error": "Client has projects and cannot be deleted"})
			return
		}

		result, err := db.Exec(`DELETE FROM client WHERE client_id = $1`, clientID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
	}
}
