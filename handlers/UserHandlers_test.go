package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestDeleteUserRevokesSessions(t *testing.T) {
	db := setupRawDB(t, "userdelete")
	adminToken := seedSession(t, db, 1)
	seedSession(t, db, 9)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/api/user_delete/:id", DeleteUser(db))

	rr := doJSON(t, r, http.MethodDelete, "/api/user_delete/9", adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE id = $1`, 9).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Errorf("user row still present")
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM session WHERE user_id = $1`, 9).Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("deleted user still holds sessions")
	}

	rr = doJSON(t, r, http.MethodDelete, "/api/user_delete/not-a-number", adminToken, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", rr.Code)
	}
}
