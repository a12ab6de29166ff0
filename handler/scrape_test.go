package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/LexiconIndonesia/property-scraper-service/common/logger"
	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/common/services/servicestest"
	"github.com/LexiconIndonesia/property-scraper-service/crawlers"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	tracker  *services.TaskTracker
	requests []crawlers.ScrapeRequest
	err      error
}

func (f *fakeSubmitter) Submit(ctx context.Context, req crawlers.ScrapeRequest) (repository.Task, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return repository.Task{}, f.err
	}
	return f.tracker.Create(ctx, services.TaskSpec{
		ID:           req.TaskID,
		City:         req.City,
		Region:       req.Region,
		PropertyType: req.PropertyType,
		MaxPages:     req.MaxPages,
	})
}

func newScrapeHandler() (*ScrapeHandler, *fakeSubmitter, *services.TaskTracker) {
	tracker := services.NewTaskTracker(servicestest.NewTaskStore(), logger.NewRingBuffer(logger.DefaultBufferCapacity), nil)
	submitter := &fakeSubmitter{tracker: tracker}
	return NewScrapeHandler(submitter, tracker), submitter, tracker
}

func decodeData(t *testing.T, body *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(body.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestStartScrape(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantType     string
		wantMaxPages int
	}{
		{
			name:         "single type with default pages",
			body:         `{"city":"Bogota","region":"Chapinero","property_types":["casas"]}`,
			wantStatus:   http.StatusAccepted,
			wantType:     "casas",
			wantMaxPages: 5,
		},
		{
			name:         "types joined",
			body:         `{"city":"Bogota","region":"Chapinero","property_types":["casas","apartamentos"],"max_pages":3}`,
			wantStatus:   http.StatusAccepted,
			wantType:     "casas-y-apartamentos",
			wantMaxPages: 3,
		},
		{"missing city", `{"region":"Chapinero","property_types":["casas"]}`, http.StatusBadRequest, "", 0},
		{"blank region", `{"city":"Bogota","region":"  ","property_types":["casas"]}`, http.StatusBadRequest, "", 0},
		{"no types", `{"city":"Bogota","region":"Chapinero","property_types":[]}`, http.StatusBadRequest, "", 0},
		{"missing types", `{"city":"Bogota","region":"Chapinero"}`, http.StatusBadRequest, "", 0},
		{"empty type", `{"city":"Bogota","region":"Chapinero","property_types":[""]}`, http.StatusBadRequest, "", 0},
		{"too many pages", `{"city":"Bogota","region":"Chapinero","property_types":["casas"],"max_pages":101}`, http.StatusBadRequest, "", 0},
		{"negative pages", `{"city":"Bogota","region":"Chapinero","property_types":["casas"],"max_pages":-1}`, http.StatusBadRequest, "", 0},
		{"invalid json", `{"city":`, http.StatusBadRequest, "", 0},
		{"city too long", `{"city":"` + strings.Repeat("b", 129) + `","region":"Chapinero","property_types":["casas"]}`, http.StatusBadRequest, "", 0},
		{"region too long", `{"city":"Bogota","region":"` + strings.Repeat("c", 129) + `","property_types":["casas"]}`, http.StatusBadRequest, "", 0},
		{"joined types too long", `{"city":"Bogota","region":"Chapinero","property_types":["` + strings.Repeat("a", 128) + `","` + strings.Repeat("b", 128) + `"]}`, http.StatusBadRequest, "", 0},
		{
			name:         "city at column width",
			body:         `{"city":"` + strings.Repeat("b", 128) + `","region":"Chapinero","property_types":["casas"]}`,
			wantStatus:   http.StatusAccepted,
			wantType:     "casas",
			wantMaxPages: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, submitter, _ := newScrapeHandler()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusAccepted {
				if len(submitter.requests) != 0 {
					t.Errorf("submitted %d jobs for invalid input", len(submitter.requests))
				}
				return
			}

			var accepted models.ScrapeAccepted
			decodeData(t, rec, &accepted)
			if len(accepted.TaskID) != 8 {
				t.Errorf("task_id = %q, want 8 characters", accepted.TaskID)
			}
			if accepted.Status != models.TaskStatusPending {
				t.Errorf("status = %s, want pending", accepted.Status)
			}

			if len(submitter.requests) != 1 {
				t.Fatalf("submitted %d jobs, want 1", len(submitter.requests))
			}
			got := submitter.requests[0]
			if got.PropertyType != tt.wantType || got.MaxPages != tt.wantMaxPages {
				t.Errorf("request = %+v, want type %q and %d pages", got, tt.wantType, tt.wantMaxPages)
			}
		})
	}
}

func TestStartScrapeBusy(t *testing.T) {
	h, submitter, _ := newScrapeHandler()
	submitter.err = crawlers.ErrBusy

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"city":"Bogota","region":"Chapinero","property_types":["casas"]}`))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var accepted models.ScrapeAccepted
	decodeData(t, rec, &accepted)
	if accepted.Status != models.TaskStatusFailed || accepted.TaskID == "" {
		t.Errorf("response = %+v, want failed with a task id", accepted)
	}
}

func TestStartScrapeSubmitError(t *testing.T) {
	h, submitter, _ := newScrapeHandler()
	submitter.err = errors.New("database down")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"city":"Bogota","region":"Chapinero","property_types":["casas"]}`))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestScrapeStatus(t *testing.T) {
	h, _, tracker := newScrapeHandler()
	ctx := context.Background()
	for _, id := range []string{"task0001", "task0002", "task0003"} {
		if _, err := tracker.Create(ctx, services.TaskSpec{ID: id, City: "Bogota", Region: "Chapinero", PropertyType: "casas", MaxPages: 1}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("by id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?task_id=task0002", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var list models.TaskListResponse
		decodeData(t, rec, &list)
		if list.Total != 1 || len(list.Tasks) != 1 || list.Tasks[0].TaskID != "task0002" {
			t.Errorf("response = %+v", list)
		}
		if list.Tasks[0].Status != models.TaskStatusPending || list.Tasks[0].EndTime != nil {
			t.Errorf("task = %+v, want pending without end time", list.Tasks[0])
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?task_id=missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("paginated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?skip=0&limit=2", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var page models.BasePaginationResponse
		page.Data = &[]models.TaskResponse{}
		if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
			t.Fatalf("decode: %v", err)
		}
		tasks := *page.Data.(*[]models.TaskResponse)
		if len(tasks) != 2 || page.Meta.Total != 3 || page.Meta.LastPage != 2 {
			t.Errorf("got %d tasks, meta %+v", len(tasks), page.Meta)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status?limit=0", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestScrapeLogs(t *testing.T) {
	h, _, tracker := newScrapeHandler()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
		var logs models.LogsResponse
		decodeData(t, rec, &logs)
		if len(logs.Logs) != 1 || logs.Logs[0] != noLogsMessage {
			t.Errorf("logs = %v", logs.Logs)
		}
	})

	if _, err := tracker.Create(ctx, services.TaskSpec{ID: "log00001", City: "Bogota", Region: "Chapinero", PropertyType: "casas", MaxPages: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := tracker.MarkRunning(ctx, "log00001"); err != nil {
		t.Fatalf("MarkRunning() error = %v", err)
	}
	if err := tracker.Complete(ctx, "log00001", 3); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	t.Run("chronological", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?task_id=log00001&limit=10", nil))
		var logs models.LogsResponse
		decodeData(t, rec, &logs)
		if len(logs.Logs) != 3 {
			t.Fatalf("logs = %v, want 3 lines", logs.Logs)
		}
		if !strings.Contains(logs.Logs[0], "INFO: Task created") {
			t.Errorf("first line = %q", logs.Logs[0])
		}
		if !strings.Contains(logs.Logs[2], "INFO: Scraping completed. Found 3 properties") {
			t.Errorf("last line = %q", logs.Logs[2])
		}
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?task_id=log00001&limit=1", nil))
		var logs models.LogsResponse
		decodeData(t, rec, &logs)
		if len(logs.Logs) != 1 || !strings.Contains(logs.Logs[0], "Scraping completed") {
			t.Errorf("logs = %v", logs.Logs)
		}
	})

	for _, limit := range []string{"0", "101", "abc"} {
		t.Run("invalid limit "+limit, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?limit="+limit, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
