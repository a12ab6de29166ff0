package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
)

func TestWritePagination(t *testing.T) {
	tests := []struct {
		name     string
		perPage  int
		total    int64
		lastPage int64
	}{
		{"exact pages", 10, 30, 3},
		{"partial page", 10, 31, 4},
		{"empty", 10, 0, 0},
		{"zero per page", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WritePagination(rec, http.StatusOK, []string{}, 1, tt.perPage, tt.total)

			var body models.BasePaginationResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Meta.LastPage != tt.lastPage {
				t.Errorf("Expected last page %d, got %d", tt.lastPage, body.Meta.LastPage)
			}
			if body.Meta.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, body.Meta.Total)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "city is required")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Bad Request" || body.Msg != "city is required" {
		t.Errorf("Unexpected error body: %+v", body)
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&bad=x", nil)

	if n, err := QueryInt(req, "limit", 10); err != nil || n != 25 {
		t.Errorf("Expected 25, got %d (%v)", n, err)
	}
	if n, err := QueryInt(req, "skip", 7); err != nil || n != 7 {
		t.Errorf("Expected default 7, got %d (%v)", n, err)
	}
	if _, err := QueryInt(req, "bad", 0); err == nil {
		t.Error("Expected error for non-numeric value")
	}
}
