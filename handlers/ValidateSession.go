package handlers

import (
	"backend/storage"
	"backend/utils"
	"database/sql"
	"net/http"
	"os"
	"strconv"
	"strings"

	"backend/ledger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// bearerToken extracts the session token from the Authorization header,
// with or without the Bearer prefix.
func bearerToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.TrimSpace(token)
}

// requireSession resolves the Authorization header to a user id against
// the session table. On failure it writes the error response and returns
// ok=false; handlers just return.
func requireSession(c *gin.Context, db *sql.DB) (int, bool) {
	token := bearerToken(c)
	if token == "" {
		utils.ErrorResponse(c, "Missing session_id", http.StatusUnauthorized)
		return 0, false
	}
	userID, err := storage.SessionUserID(db, token)
	if err != nil {
		utils.ErrorResponse(c, "Invalid session", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// requireJWT validates the Authorization header as a signed access token
// without a session-table lookup. The GORM-backed handlers use this
// lighter check.
func requireJWT(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" {
		utils.ErrorResponse(c, "Missing Authorization header", http.StatusUnauthorized)
		return false
	}
	parsed, err := utils.ValidateJWT(token)
	if err != nil || !parsed.Valid {
		utils.ErrorResponse(c, "Invalid or expired token", http.StatusUnauthorized)
		return false
	}
	return true
}

// defaultGSTRate reads the document-default GST rate from the
// DEFAULT_GST_RATE env var, falling back to the ledger default (18).
// This is the single configuration source for the rate.
func defaultGSTRate() float64 {
	if v := os.Getenv("DEFAULT_GST_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate >= 0 {
			return rate
		}
	}
	return ledger.DefaultGSTRate
}

// ValidateSession validates user session
// @Summary Validate session
// @Description Validate user session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.ValidateSessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := bearerToken(c)
		if sessionToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Authorization header"})
			return
		}

		// Validate JWT (checks signature and expiration)
		parsedToken, err := utils.ValidateJWT(sessionToken)
		if err != nil || !parsedToken.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		if _, ok := claims["email"].(string); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email claim missing or invalid"})
			return
		}

		// Ensure the session exists and is not expired in the DB
		user, err := storage.GetUserBySessionID(db, sessionToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":   true,
			"user_id": user.ID,
			"role":    user.Role,
		})
	}
}
