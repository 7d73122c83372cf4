// Package api exposes the record store and the decision pipeline over HTTP
// and MCP. The surface is thin: validation, (de)serialization, and routing;
// all decision logic lives in internal/decision and internal/batch.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rzylka/stockcast/internal/batch"
	"github.com/rzylka/stockcast/internal/decision"
	"github.com/rzylka/stockcast/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Decider runs the full decision pipeline for one demand observation.
type Decider interface {
	Decide(ctx context.Context, demand storage.DemandRecord, month, strategy string) decision.Decision
}

// CycleRunner triggers one batch cycle on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context) (batch.CycleStats, error)
}

// Deps holds the collaborators the HTTP surface needs.
type Deps struct {
	Store   *storage.Store
	Decider Decider
	Runner  CycleRunner
	Oracle  decision.Oracle // single-stage predict endpoints
	Token   string          // optional; empty leaves admin routes unauthenticated
}

// NewHandler builds the chi router for the full HTTP surface.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Post("/demand", handleAddDemand(deps))
		api.Get("/demand/history/{productID}/{storeID}", handleDemandHistory(deps))
		api.Post("/inventory", handleAddInventory(deps))
		api.Get("/inventory/history/{productID}/{storeID}", handleInventoryHistory(deps))
		api.Post("/pricing", handleAddPricing(deps))
		api.Get("/pricing/history/{productID}/{storeID}", handlePricingHistory(deps))

		api.Post("/decisions", handleDecisions(deps))
		api.Get("/snapshots", handleSnapshots(deps))

		api.Post("/predict/forecast/{month}", handlePredictForecast(deps))
		api.Post("/predict/reorder/{predictedDemand}", handlePredictReorder(deps))
		api.Post("/predict/optimize/{strategy}", handlePredictOptimize(deps))
	})

	r.Route("/admin", func(admin chi.Router) {
		if deps.Token != "" {
			admin.Use(BearerAuth(deps.Token))
		}
		admin.Post("/cycle", handleRunCycle(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// --- Records ---

func handleAddDemand(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec storage.DemandRecord
		if !decodeBody(w, r, &rec) {
			return
		}
		if rec.ProductID == "" || rec.StoreID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "product_id and store_id are required")
			return
		}

		id, err := deps.Store.SaveDemand(rec)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save demand record: %v", err)
			return
		}
		rec.ID = id
		writeJSON(w, http.StatusCreated, rec)
	}
}

func handleDemandHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.DemandHistory(chi.URLParam(r, "productID"), chi.URLParam(r, "storeID"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list demand history: %v", err)
			return
		}
		if records == nil {
			records = []storage.DemandRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleAddInventory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec storage.InventoryRecord
		if !decodeBody(w, r, &rec) {
			return
		}
		if rec.ProductID == "" || rec.StoreID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "product_id and store_id are required")
			return
		}

		id, err := deps.Store.SaveInventory(rec)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save inventory record: %v", err)
			return
		}
		rec.ID = id
		writeJSON(w, http.StatusCreated, rec)
	}
}

func handleInventoryHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.InventoryHistory(chi.URLParam(r, "productID"), chi.URLParam(r, "storeID"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list inventory history: %v", err)
			return
		}
		if records == nil {
			records = []storage.InventoryRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleAddPricing(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec storage.PricingRecord
		if !decodeBody(w, r, &rec) {
			return
		}
		if rec.ProductID == "" || rec.StoreID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "product_id and store_id are required")
			return
		}

		id, err := deps.Store.SavePricing(rec)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save pricing record: %v", err)
			return
		}
		rec.ID = id
		writeJSON(w, http.StatusCreated, rec)
	}
}

func handlePricingHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.PricingHistory(chi.URLParam(r, "productID"), chi.URLParam(r, "storeID"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list pricing history: %v", err)
			return
		}
		if records == nil {
			records = []storage.PricingRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// --- Decisions ---

// handleDecisions runs the full pipeline for a caller-supplied demand
// observation. Degraded orchestrations still answer 200: callers inspect the
// stage statuses inside the envelope.
func handleDecisions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var demand storage.DemandRecord
		if !decodeBody(w, r, &demand) {
			return
		}
		if demand.ProductID == "" || demand.StoreID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "product_id and store_id are required")
			return
		}

		month := r.URL.Query().Get("month")
		if month == "" {
			month = time.Now().Month().String()
		}
		strategy := r.URL.Query().Get("strategy")
		if strategy == "" {
			strategy = decision.StrategyIncrease
		}

		dec := deps.Decider.Decide(r.Context(), demand, month, strategy)
		writeJSON(w, http.StatusOK, dec)
	}
}

func handleSnapshots(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := snapshotWindow(r)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		snapshots, err := deps.Store.SnapshotsBetween(start, end)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list snapshots: %v", err)
			return
		}
		if snapshots == nil {
			snapshots = []storage.DecisionSnapshot{}
		}
		writeJSON(w, http.StatusOK, snapshots)
	}
}

// snapshotWindow parses the optional start/end query params (RFC 3339).
// Without params the window is the current UTC day.
func snapshotWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	startRaw, endRaw := q.Get("start"), q.Get("end")

	if startRaw == "" && endRaw == "" {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1), nil
	}
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start and end must be supplied together")
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %v", err)
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %v", err)
	}
	return start, end, nil
}

func handleRunCycle(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Runner.RunCycle(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "cycle failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
