package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/common/utils"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// PropertyQuery is the read side of the property store. *services.PropertyStore implements it.
type PropertyQuery interface {
	List(ctx context.Context, f services.PropertyFilter) ([]repository.Property, error)
	Stats(ctx context.Context) (models.PropertyStats, error)
	CountByCity(ctx context.Context) ([]models.CityCount, error)
	AvgPriceByCity(ctx context.Context) ([]models.CityAvgPrice, error)
}

type PropertyHandler struct {
	properties PropertyQuery
	router     *chi.Mux
}

func NewPropertyHandler(properties PropertyQuery) *PropertyHandler {
	h := &PropertyHandler{
		properties: properties,
	}

	r := chi.NewRouter()
	r.Get("/", h.handleListProperties)
	r.Get("/stats", h.handleStats)
	r.Get("/stats/city", h.handleCountByCity)
	r.Get("/stats/price", h.handleAvgPriceByCity)

	h.router = r
	return h
}

func (h *PropertyHandler) Router() *chi.Mux {
	return h.router
}

// @Summary List properties
// @Description Text filters match substrings case-insensitively. Results are ordered by creation time, newest first.
// @Tags properties
// @Produce json
// @Param city query string false "City"
// @Param region query string false "Region"
// @Param property_type query string false "Property type"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param min_rooms query int false "Minimum rooms"
// @Param min_bathrooms query int false "Minimum bathrooms"
// @Param skip query int false "Skip first N results" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.BaseResponse{data=[]models.PropertyResponse}
// @Failure 400 {object} models.ErrorResponse
// @Router /properties [get]
func (h *PropertyHandler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePropertyFilter(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	filter.Skip = skip
	filter.Limit = limit

	rows, err := h.properties.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list properties")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list properties")
		return
	}

	utils.WriteJSON(w, http.StatusOK, lo.Map(rows, func(p repository.Property, _ int) models.PropertyResponse {
		return services.ToPropertyResponse(p)
	}))
}

// @Summary Property statistics
// @Tags properties
// @Produce json
// @Success 200 {object} models.BaseResponse{data=models.PropertyStats}
// @Router /properties/stats [get]
func (h *PropertyHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.properties.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get property stats")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get property stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (h *PropertyHandler) handleCountByCity(w http.ResponseWriter, r *http.Request) {
	counts, err := h.properties.CountByCity(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to count properties by city")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count properties by city")
		return
	}
	utils.WriteJSON(w, http.StatusOK, counts)
}

func (h *PropertyHandler) handleAvgPriceByCity(w http.ResponseWriter, r *http.Request) {
	prices, err := h.properties.AvgPriceByCity(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get average prices")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get average prices")
		return
	}
	utils.WriteJSON(w, http.StatusOK, prices)
}

func parsePropertyFilter(r *http.Request) (services.PropertyFilter, error) {
	q := r.URL.Query()
	f := services.PropertyFilter{
		City:         optString(q.Get("city")),
		Region:       optString(q.Get("region")),
		PropertyType: optString(q.Get("property_type")),
	}

	var err error
	if f.MinPrice, err = optFloatParam(q.Get("min_price"), "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optFloatParam(q.Get("max_price"), "max_price"); err != nil {
		return f, err
	}
	if f.MinRooms, err = optIntParam(q.Get("min_rooms"), "min_rooms"); err != nil {
		return f, err
	}
	if f.MinBathrooms, err = optIntParam(q.Get("min_bathrooms"), "min_bathrooms"); err != nil {
		return f, err
	}
	return f, nil
}

func optString(s string) mo.Option[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return mo.None[string]()
	}
	return mo.Some(s)
}

func optFloatParam(s, name string) (mo.Option[float64], error) {
	if s == "" {
		return mo.None[float64](), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return mo.None[float64](), fmt.Errorf("%s must be a number", name)
	}
	return mo.Some(v), nil
}

func optIntParam(s, name string) (mo.Option[int32], error) {
	if s == "" {
		return mo.None[int32](), nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return mo.None[int32](), fmt.Errorf("%s must be an integer", name)
	}
	return mo.Some(int32(v)), nil
}
