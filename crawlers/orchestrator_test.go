package crawlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/logger"
	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/common/services/servicestest"
	"github.com/LexiconIndonesia/property-scraper-service/common/work"
	"github.com/LexiconIndonesia/property-scraper-service/crawlers/fincaraiz"
)

func card(href string, n int) string {
	return fmt.Sprintf(`<div class="listingCard"><a class="lc-data" href="%s">`+
		`<div class="lc-price">$ %d.000.000</div>`+
		`<div class="lc-typologyTag">3 Habs | 2 Baños | %d m²</div>`+
		`<h2 class="lc-title">Casa en Venta en Bogota</h2></a></div>`, href, 100+n, 60+n)
}

// newSite serves a first page with three listings and one card that links
// back to the site root.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/venta/casas/bogota/chapinero" {
			http.NotFound(w, r)
			return
		}
		var b strings.Builder
		b.WriteString("<html><body>")
		for i := 1; i <= 3; i++ {
			b.WriteString(card(fmt.Sprintf("/inmueble/casa-%d", i), i))
		}
		b.WriteString(card(server.URL+"/", 0))
		b.WriteString("</body></html>")
		fmt.Fprint(w, b.String())
	}))
	t.Cleanup(server.Close)
	return server
}

type harness struct {
	tracker *services.TaskTracker
	tasks   *servicestest.TaskStore
	db      *servicestest.PropertyDB
	logs    *logger.RingBuffer
}

func newHarness() harness {
	tasks := servicestest.NewTaskStore()
	logs := logger.NewRingBuffer(logger.DefaultBufferCapacity)
	db := servicestest.NewPropertyDB()
	return harness{
		tracker: services.NewTaskTracker(tasks, logs, nil),
		tasks:   tasks,
		db:      db,
		logs:    logs,
	}
}

func siteConfig(baseURL string) fincaraiz.FincaraizConfig {
	return fincaraiz.FincaraizConfig{
		BaseURL:        baseURL,
		UserAgent:      "test-agent/1.0",
		RequestTimeout: 5 * time.Second,
	}
}

func bogotaRequest(id string) ScrapeRequest {
	return ScrapeRequest{TaskID: id, City: "Bogota", Region: "Chapinero", PropertyType: "casas", MaxPages: 1}
}

func newOrchestrator(t *testing.T, h harness, store Store, baseURL string, opts ...OrchestratorOption) *Orchestrator {
	t.Helper()
	if store == nil {
		store = services.NewPropertyStore(h.db, h.db)
	}
	o, err := NewOrchestrator(h.tracker, store, siteConfig(baseURL), opts...)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	return o
}

func TestOrchestratorRunEndToEnd(t *testing.T) {
	site := newSite(t)
	h := newHarness()
	o := newOrchestrator(t, h, nil, site.URL)

	if err := o.Run(context.Background(), bogotaRequest("e2e00001")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	task, err := h.tracker.Get(context.Background(), "e2e00001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if task.Status != string(models.TaskStatusCompleted) {
		t.Errorf("status = %s, want completed", task.Status)
	}
	if task.PropertiesFound != 3 {
		t.Errorf("properties_found = %d, want 3", task.PropertiesFound)
	}
	if !task.EndTime.Valid || !task.DurationSeconds.Valid {
		t.Error("end_time and duration_seconds must be set")
	}

	rows := h.db.Rows()
	if len(rows) != 3 {
		t.Fatalf("stored %d properties, want 3", len(rows))
	}
	for _, row := range rows {
		if strings.TrimRight(row.Url, "/") == site.URL {
			t.Errorf("stored root url %q", row.Url)
		}
		if row.City.String != "Bogota" || row.Region.String != "Chapinero" {
			t.Errorf("city/region = %q/%q", row.City.String, row.Region.String)
		}
	}

	if n := len(h.tracker.Logs("e2e00001", 0)); n < 2 {
		t.Errorf("log entries = %d, want at least 2", n)
	}
}

func TestOrchestratorRunTwiceUpdates(t *testing.T) {
	site := newSite(t)
	h := newHarness()
	o := newOrchestrator(t, h, nil, site.URL)

	for _, id := range []string{"run00001", "run00002"} {
		if err := o.Run(context.Background(), bogotaRequest(id)); err != nil {
			t.Fatalf("Run(%s) error = %v", id, err)
		}
	}
	if n := len(h.db.Rows()); n != 3 {
		t.Errorf("stored %d properties after two runs, want 3", n)
	}
}

func TestOrchestratorBadStatusCompletesEmpty(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer site.Close()

	h := newHarness()
	o := newOrchestrator(t, h, nil, site.URL)

	if err := o.Run(context.Background(), bogotaRequest("blocked1")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	task, _ := h.tracker.Get(context.Background(), "blocked1")
	if task.Status != string(models.TaskStatusCompleted) || task.PropertiesFound != 0 {
		t.Errorf("task = %s/%d, want completed/0", task.Status, task.PropertiesFound)
	}
}

type failingStore struct {
	err   error
	panic bool
}

func (s failingStore) UpsertBatch(context.Context, []models.Listing, string) (services.UpsertResult, error) {
	if s.panic {
		panic("connection exploded")
	}
	return services.UpsertResult{}, s.err
}

func TestOrchestratorFailures(t *testing.T) {
	tests := []struct {
		name    string
		store   Store
		wantMsg string
	}{
		{"store error", failingStore{err: errors.New("database unavailable")}, "database unavailable"},
		{"panic", failingStore{panic: true}, "connection exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newSite(t)
			h := newHarness()
			o := newOrchestrator(t, h, tt.store, site.URL)

			if err := o.Run(context.Background(), bogotaRequest("fail0001")); err == nil {
				t.Fatal("Run() expected error")
			}

			task, _ := h.tracker.Get(context.Background(), "fail0001")
			if task.Status != string(models.TaskStatusFailed) {
				t.Errorf("status = %s, want failed", task.Status)
			}
			if !strings.Contains(task.Error.String, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", task.Error.String, tt.wantMsg)
			}
			if !task.EndTime.Valid {
				t.Error("end_time must be set")
			}

			entries := h.tracker.Logs("fail0001", 1)
			if len(entries) != 1 || entries[0].Level != models.LogLevelError {
				t.Errorf("latest log entry = %+v, want an error entry", entries)
			}
		})
	}
}

func TestOrchestratorRunGuard(t *testing.T) {
	site := newSite(t)
	h := newHarness()
	guard := work.NewMemoryGuard()
	o := newOrchestrator(t, h, nil, site.URL, WithRunGuard(guard))

	req := bogotaRequest("guard001")
	if _, err := o.Prepare(context.Background(), req); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := guard.Acquire(context.Background(), req.TaskID); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := o.Execute(context.Background(), req); !errors.Is(err, work.ErrAlreadyRunning) {
		t.Fatalf("Execute() error = %v, want ErrAlreadyRunning", err)
	}
	task, _ := h.tracker.Get(context.Background(), req.TaskID)
	if task.Status != string(models.TaskStatusPending) {
		t.Errorf("status = %s, want pending", task.Status)
	}

	_ = guard.Release(context.Background(), req.TaskID)
	if err := o.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute() after release error = %v", err)
	}
}

type unreachableGuard struct{}

func (unreachableGuard) Acquire(context.Context, string) error {
	return errors.New("dial tcp redis:6379: connection refused")
}

func (unreachableGuard) Release(context.Context, string) error { return nil }

func TestOrchestratorGuardErrorFailsTask(t *testing.T) {
	site := newSite(t)
	h := newHarness()
	o := newOrchestrator(t, h, nil, site.URL, WithRunGuard(unreachableGuard{}))

	if err := o.Run(context.Background(), bogotaRequest("guard002")); err == nil {
		t.Fatal("Run() expected error when the guard is unreachable")
	}

	task, _ := h.tracker.Get(context.Background(), "guard002")
	if task.Status != string(models.TaskStatusFailed) {
		t.Fatalf("status = %s, want failed", task.Status)
	}
	if !task.EndTime.Valid {
		t.Error("end_time not set")
	}
	if !strings.Contains(task.Error.String, "connection refused") {
		t.Errorf("error = %q, want guard error", task.Error.String)
	}
}

func TestOrchestratorDuplicateTaskID(t *testing.T) {
	site := newSite(t)
	h := newHarness()
	o := newOrchestrator(t, h, nil, site.URL)

	if err := o.Run(context.Background(), bogotaRequest("dup00001")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := o.Run(context.Background(), bogotaRequest("dup00001")); err == nil {
		t.Fatal("second Run() with the same task id expected error")
	}

	task, _ := h.tracker.Get(context.Background(), "dup00001")
	if task.Status != string(models.TaskStatusCompleted) {
		t.Errorf("status = %s, want completed", task.Status)
	}
}
