package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rzylka/stockcast/internal/query"
	"github.com/rzylka/stockcast/internal/storage"
)

// Single-stage predict endpoints. Each takes the relevant record in the body,
// formats the oracle query, and passes the oracle's answer through verbatim.
// Oracle failures come back as 200 with an "error" field, the same contract the
// full pipeline uses for degraded stages.

func handlePredictForecast(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec storage.DemandRecord
		if !decodeBody(w, r, &rec) {
			return
		}
		month := chi.URLParam(r, "month")
		res := deps.Oracle.Forecast(r.Context(), query.Forecast(rec, month))
		writeJSON(w, http.StatusOK, res.Map())
	}
}

func handlePredictReorder(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec storage.InventoryRecord
		if !decodeBody(w, r, &rec) {
			return
		}
		demand, err := strconv.Atoi(chi.URLParam(r, "predictedDemand"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "predicted demand must be an integer: %v", err)
			return
		}
		res := deps.Oracle.Reorder(r.Context(), query.Reorder(rec, demand))
		writeJSON(w, http.StatusOK, res.Map())
	}
}

func handlePredictOptimize(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec storage.PricingRecord
		if !decodeBody(w, r, &rec) {
			return
		}
		strategy := chi.URLParam(r, "strategy")
		res := deps.Oracle.Price(r.Context(), query.Pricing(rec, strategy))
		writeJSON(w, http.StatusOK, res.Map())
	}
}
