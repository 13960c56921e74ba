package httpapi

import (
	"net/http"
	"strconv"

	"chatmodeld/pkg/types"
)

const defaultHistoryLimit = 50

func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.ListModels()})
	}
}

func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

func handleHistory(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 500 {
				writeJSONError(w, http.StatusBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}
		recs, err := svc.History(r.Context(), limit)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		if recs == nil {
			// Clients get an array even when the table is empty.
			recs = []types.GenerationRecord{}
		}
		writeJSON(w, http.StatusOK, types.HistoryResponse{Generations: recs})
	}
}

// handlePreflight reports per-model artifact checks. Always 200; the body's
// ok field tells callers whether everything is loadable.
func handlePreflight(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Preflight())
	}
}
