package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/common/utils"
	"github.com/LexiconIndonesia/property-scraper-service/crawlers"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	defaultMaxPages    = 5
	defaultLogLimit    = 10
	maxLogLimit        = 100
	propertyTypeJoint  = "-y-"
	maxPropertyTypeLen = 256 // width of tasks.property_type
	noLogsMessage      = "No recent scraping logs found. Either no tasks have run or they're not being captured in memory."
)

// Submitter queues scrape jobs. *crawlers.Dispatcher implements it.
type Submitter interface {
	Submit(ctx context.Context, req crawlers.ScrapeRequest) (repository.Task, error)
}

// TaskReader reads task state. *services.TaskTracker implements it.
type TaskReader interface {
	Get(ctx context.Context, taskID string) (repository.Task, error)
	List(ctx context.Context, skip, limit int) ([]repository.Task, int64, error)
	Logs(taskID string, limit int) []models.LogEntry
}

type ScrapeHandler struct {
	submitter Submitter
	tasks     TaskReader
	validate  *validator.Validate
	router    *chi.Mux
}

func NewScrapeHandler(submitter Submitter, tasks TaskReader) *ScrapeHandler {
	h := &ScrapeHandler{
		submitter: submitter,
		tasks:     tasks,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()
	r.Post("/", h.handleStartScrape)
	r.Get("/status", h.handleScrapeStatus)
	r.Get("/logs", h.handleScrapeLogs)

	h.router = r
	return h
}

func (h *ScrapeHandler) Router() *chi.Mux {
	return h.router
}

type ScrapeParams struct {
	City          string   `json:"city" validate:"required,max=128" example:"Bogota"`
	Region        string   `json:"region" validate:"required,max=128" example:"Chapinero"`
	PropertyTypes []string `json:"property_types" validate:"required,min=1,dive,required,max=128" example:"casas,apartamentos"`
	MaxPages      int      `json:"max_pages" validate:"omitempty,min=1,max=100" example:"5"`
}

func (p *ScrapeParams) normalize() {
	p.City = strings.TrimSpace(p.City)
	p.Region = strings.TrimSpace(p.Region)
	p.PropertyTypes = lo.Map(p.PropertyTypes, func(t string, _ int) string {
		return strings.TrimSpace(t)
	})
}

// @Summary Start a scrape job
// @Description Queues a scrape of the listings for a city and region. The job runs in the background; poll /scrape/status with the returned task_id.
// @Tags scrape
// @Accept json
// @Produce json
// @Param request body ScrapeParams true "Scrape parameters"
// @Success 202 {object} models.BaseResponse{data=models.ScrapeAccepted}
// @Failure 400 {object} models.ErrorResponse
// @Router /scrape [post]
func (h *ScrapeHandler) handleStartScrape(w http.ResponseWriter, r *http.Request) {
	var p ScrapeParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	p.normalize()
	if err := h.validate.Struct(p); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	propertyType := strings.Join(p.PropertyTypes, propertyTypeJoint)
	if utf8.RuneCountInString(propertyType) > maxPropertyTypeLen {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("property_types joined must not exceed %d characters", maxPropertyTypeLen))
		return
	}
	if p.MaxPages == 0 {
		p.MaxPages = defaultMaxPages
	}

	req := crawlers.ScrapeRequest{
		TaskID:       crawlers.NewTaskID(),
		City:         p.City,
		Region:       p.Region,
		PropertyType: propertyType,
		MaxPages:     p.MaxPages,
	}

	task, err := h.submitter.Submit(r.Context(), req)
	switch {
	case errors.Is(err, crawlers.ErrBusy):
		log.Warn().Err(err).Str("taskID", req.TaskID).Msg("Scrape job rejected")
		utils.WriteJSON(w, http.StatusAccepted, models.ScrapeAccepted{
			TaskID:  req.TaskID,
			Status:  models.TaskStatusFailed,
			Message: "Scraping job could not be queued, the scraper is busy",
		})
		return
	case err != nil:
		log.Error().Err(err).Str("taskID", req.TaskID).Msg("Failed to submit scrape job")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to start scraping job")
		return
	}

	utils.WriteJSON(w, http.StatusAccepted, models.ScrapeAccepted{
		TaskID:  task.ID,
		Status:  models.TaskStatus(task.Status),
		Message: fmt.Sprintf("Scraping job started for %s in %s, %s", strings.Join(p.PropertyTypes, ", "), p.City, p.Region),
	})
}

// @Summary Scrape job status
// @Description Returns one task when task_id is given, otherwise a page of recent tasks.
// @Tags scrape
// @Produce json
// @Param task_id query string false "Task ID"
// @Param skip query int false "Skip first N tasks" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.BasePaginationResponse{data=[]models.TaskResponse}
// @Failure 404 {object} models.ErrorResponse
// @Router /scrape/status [get]
func (h *ScrapeHandler) handleScrapeStatus(w http.ResponseWriter, r *http.Request) {
	if taskID := r.URL.Query().Get("task_id"); taskID != "" {
		task, err := h.tasks.Get(r.Context(), taskID)
		if errors.Is(err, services.ErrTaskNotFound) {
			utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("Task with id %s not found", taskID))
			return
		}
		if err != nil {
			log.Error().Err(err).Str("taskID", taskID).Msg("Failed to get task")
			utils.WriteError(w, http.StatusInternalServerError, "Failed to get task")
			return
		}
		utils.WriteJSON(w, http.StatusOK, models.TaskListResponse{
			Tasks: []models.TaskResponse{services.ToTaskResponse(task)},
			Total: 1,
		})
		return
	}

	skip, limit, ok := pageParams(w, r)
	if !ok {
		return
	}

	tasks, total, err := h.tasks.List(r.Context(), skip, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tasks")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	utils.WritePagination(w, http.StatusOK, lo.Map(tasks, func(t repository.Task, _ int) models.TaskResponse {
		return services.ToTaskResponse(t)
	}), skip/limit+1, limit, total)
}

// @Summary Recent scrape logs
// @Tags scrape
// @Produce json
// @Param task_id query string false "Task ID"
// @Param limit query int false "Number of entries" minimum(1) maximum(100) default(10)
// @Success 200 {object} models.BaseResponse{data=models.LogsResponse}
// @Router /scrape/logs [get]
func (h *ScrapeHandler) handleScrapeLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.QueryInt(r, "limit", defaultLogLimit)
	if err != nil || limit < 1 || limit > maxLogLimit {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLogLimit))
		return
	}

	entries := h.tasks.Logs(r.URL.Query().Get("task_id"), limit)
	slices.Reverse(entries)

	lines := lo.Map(entries, func(e models.LogEntry, _ int) string {
		return e.String()
	})
	if len(lines) == 0 {
		lines = []string{noLogsMessage}
	}

	utils.WriteJSON(w, http.StatusOK, models.LogsResponse{Logs: lines})
}

// pageParams reads skip and limit, writing a 400 when they are invalid.
func pageParams(w http.ResponseWriter, r *http.Request) (skip, limit int, ok bool) {
	skip, err := utils.QueryInt(r, "skip", 0)
	if err != nil || skip < 0 {
		utils.WriteError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return 0, 0, false
	}
	limit, err = utils.QueryInt(r, "limit", services.DefaultPageLimit)
	if err != nil || limit < 1 || limit > services.MaxPageLimit {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", services.MaxPageLimit))
		return 0, 0, false
	}
	return skip, limit, true
}
