package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common"
	"github.com/LexiconIndonesia/property-scraper-service/common/utils"
	"github.com/LexiconIndonesia/property-scraper-service/common/work"
	"github.com/go-chi/chi/v5"
)

// DatabaseChecker is implemented by *db.DB.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() map[string]interface{}
}

// Pinger is implemented by *redis.RedisClient.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WorkerStats is implemented by *crawlers.Dispatcher.
type WorkerStats interface {
	Stats() work.PoolStats
}

type HealthHandler struct {
	db      DatabaseChecker
	workers WorkerStats
	cache   Pinger
	router  *chi.Mux
}

func NewHealthHandler(db DatabaseChecker, workers WorkerStats) *HealthHandler {
	h := &HealthHandler{
		db:      db,
		workers: workers,
	}

	r := chi.NewRouter()
	r.Get("/", h.HandleHealthCheck)
	r.Get("/database", h.handleDatabaseHealth)

	h.router = r
	return h
}

// WithCache adds the Redis run-guard store to the database health report.
func (h *HealthHandler) WithCache(cache Pinger) *HealthHandler {
	h.cache = cache
	return h
}

func (h *HealthHandler) Router() *chi.Mux {
	return h.router
}

// @Summary Health check
// @Description Simple health check endpoint to verify the service is running
// @Tags system
// @Produce json
// @Success 200 {object} models.BaseResponse
// @Router /health [get]
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   common.AppName,
	}
	if h.workers != nil {
		response["workers"] = h.workers.Stats()
	}

	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *HealthHandler) handleDatabaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbErr := h.db.Ping(ctx)

	database := map[string]interface{}{
		"status": "healthy",
		"stats":  h.db.Stats(),
	}
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"database":  database,
	}

	healthy := true
	if dbErr != nil {
		healthy = false
		database["status"] = "unhealthy"
		database["error"] = dbErr.Error()
	}

	if h.cache != nil {
		cache := map[string]interface{}{"status": "healthy"}
		if err := h.cache.Ping(ctx); err != nil {
			healthy = false
			cache["status"] = "unhealthy"
			cache["error"] = err.Error()
		}
		response["redis"] = cache
	}

	if !healthy {
		response["status"] = "unhealthy"
		utils.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	utils.WriteJSON(w, http.StatusOK, response)
}
