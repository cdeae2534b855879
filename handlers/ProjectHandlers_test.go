package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestDeleteProjectBlockedByDocuments(t *testing.T) {
	db := setupRawDB(t, "projectdelete")
	token := seedSession(t, db, 1)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/api/project_delete/:id", DeleteProject(db))

	for id := 1; id <= 3; id++ {
		if _, err := db.Exec(`INSERT INTO project (project_id, name) VALUES ($1, $2)`, id, fmt.Sprintf("Project %d", id)); err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO invoice (project_id) VALUES ($1)`, 1); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO quotation (project_id) VALUES ($1)`, 2); err != nil {
		t.Fatalf("seed quotation: %v", err)
	}

	rr := doJSON(t, r, http.MethodDelete, "/api/project_delete/1", token, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("project with invoices: expected 409 got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodDelete, "/api/project_delete/2", token, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("project with quotations: expected 409 got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodDelete, "/api/project_delete/3", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("unreferenced project: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM project WHERE project_id = $1`, 3).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("project 3 still present")
	}

	rr = doJSON(t, r, http.MethodDelete, "/api/project_delete/99", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing project: expected 404 got %d", rr.Code)
	}
}
