package utils

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
)

func encode(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteJSON writes data wrapped in the standard envelope.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	encode(w, statusCode, models.BaseResponse{Data: data})
}

// WriteError writes an error body using the status text as the error code.
func WriteError(w http.ResponseWriter, statusCode int, errorMessage string) {
	encode(w, statusCode, models.ErrorResponse{
		Error: http.StatusText(statusCode),
		Msg:   errorMessage,
	})
}

// WritePagination writes a page of data with offset based metadata.
func WritePagination(w http.ResponseWriter, statusCode int, data interface{}, currentPage, perPage int, total int64) {
	var lastPage int64
	if perPage > 0 {
		lastPage = int64(math.Ceil(float64(total) / float64(perPage)))
	}

	encode(w, statusCode, models.BasePaginationResponse{
		Data: data,
		Meta: models.MetaResponse{
			CurrentPage: int64(currentPage),
			LastPage:    lastPage,
			PerPage:     int64(perPage),
			Total:       total,
		},
	})
}

// QueryInt reads an integer query parameter, falling back to def when absent.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
