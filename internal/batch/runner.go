// Package batch drives the decision pipeline over the full demand record set
// on a recurring monthly schedule and persists normalized result snapshots.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rzylka/stockcast/internal/decision"
	"github.com/rzylka/stockcast/internal/storage"
)

const defaultConcurrency = 4

// DecisionMaker runs the full pipeline for one demand observation.
type DecisionMaker interface {
	Decide(ctx context.Context, demand storage.DemandRecord, month, strategy string) decision.Decision
}

// CycleStore supplies the demand set and accepts snapshot writes.
type CycleStore interface {
	AllDemand() ([]storage.DemandRecord, error)
	SaveSnapshot(storage.DecisionSnapshot) error
}

// CycleStats summarizes one batch cycle.
type CycleStats struct {
	Processed int `json:"processed"`
	Saved     int `json:"saved"`
	Skipped   int `json:"skipped"`
}

// Runner executes one cycle of the decision pipeline over every demand
// record. Records are independent: one record's failure or short-circuit
// never stops the rest of the batch.
type Runner struct {
	store       CycleStore
	decider     DecisionMaker
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// NewRunner creates a Runner. concurrency <= 0 selects the default bound.
func NewRunner(store CycleStore, decider DecisionMaker, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Runner{
		store:       store,
		decider:     decider,
		concurrency: concurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
}

// RunCycle enumerates every demand record, orchestrates each independently,
// and persists one snapshot per well-formed result. Each record's three
// oracle stages stay causally ordered inside its own goroutine; records share
// no mutable state beyond the stats counters.
func (r *Runner) RunCycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	demands, err := r.store.AllDemand()
	if err != nil {
		return stats, fmt.Errorf("listing demand records: %w", err)
	}

	month := monthLabel(r.now())

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, d := range demands {
		g.Go(func() error {
			dec := r.decider.Decide(gCtx, d, month, decision.StrategyIncrease)
			snap, ok := snapshotFromDecision(d, month, dec, r.now())

			mu.Lock()
			defer mu.Unlock()
			stats.Processed++

			if !ok {
				stats.Skipped++
				r.logger.Warn("cycle: decision incomplete, snapshot skipped",
					"product_id", d.ProductID, "store_id", d.StoreID,
					"forecast", dec.Forecast.Status, "inventory", dec.Inventory.Status, "pricing", dec.Pricing.Status)
				return nil
			}

			if err := r.store.SaveSnapshot(snap); err != nil {
				stats.Skipped++
				r.logger.Error("cycle: saving snapshot failed",
					"product_id", d.ProductID, "store_id", d.StoreID, "error", err)
				return nil
			}
			stats.Saved++
			return nil
		})
	}

	// Individual records never return errors, so this only observes ctx cancellation.
	_ = g.Wait()

	r.logger.Info("cycle complete", "month", month,
		"processed", stats.Processed, "saved", stats.Saved, "skipped", stats.Skipped)
	return stats, nil
}

// monthLabel returns the capitalized English month name for t, e.g. "March".
func monthLabel(t time.Time) string {
	return t.Month().String()
}

// snapshotFromDecision normalizes a completed decision into a snapshot row.
// It returns false when the decision is not well-formed: forecast or pricing
// not ok, inventory neither ok nor sufficient, or any expected oracle field
// missing or of the wrong shape. Malformed results are skipped rather than
// persisted as partially-null rows with misleading success semantics.
func snapshotFromDecision(d storage.DemandRecord, month string, dec decision.Decision, now time.Time) (storage.DecisionSnapshot, bool) {
	var snap storage.DecisionSnapshot

	if dec.Forecast.Status != decision.StageOK || dec.Pricing.Status != decision.StageOK {
		return snap, false
	}

	predicted, ok := intField(dec.Forecast.Fields, "predicted_demand")
	if !ok {
		return snap, false
	}
	lower, upper, ok := intPair(dec.Forecast.Fields, "confidence_interval")
	if !ok {
		return snap, false
	}
	method, ok := stringField(dec.Forecast.Fields, "method_used")
	if !ok {
		return snap, false
	}

	var order int
	var justification string
	switch dec.Inventory.Status {
	case decision.StageOK:
		if order, ok = intField(dec.Inventory.Fields, "recommended_order"); !ok {
			return snap, false
		}
		if justification, ok = stringField(dec.Inventory.Fields, "justification"); !ok {
			return snap, false
		}
	case decision.StageSufficient:
		// No reorder this cycle; order and justification stay zero-valued.
	default:
		return snap, false
	}

	currentPrice, ok := floatField(dec.Pricing.Fields, "current_price")
	if !ok {
		return snap, false
	}
	suggestedPrice, ok := floatField(dec.Pricing.Fields, "suggested_price")
	if !ok {
		return snap, false
	}
	margin, ok := stringField(dec.Pricing.Fields, "projected_profit_margin")
	if !ok {
		return snap, false
	}
	alignment, ok := stringField(dec.Pricing.Fields, "strategy_alignment")
	if !ok {
		return snap, false
	}
	risk, ok := stringField(dec.Pricing.Fields, "risk_level")
	if !ok {
		return snap, false
	}

	snap = storage.DecisionSnapshot{
		ID:                    uuid.New().String(),
		ProductID:             d.ProductID,
		StoreID:               d.StoreID,
		Month:                 month,
		PredictedDemand:       predicted,
		LowerConfidence:       lower,
		UpperConfidence:       upper,
		ForecastMethod:        method,
		RecommendedOrder:      order,
		ReorderJustification:  justification,
		CurrentPrice:          currentPrice,
		SuggestedPrice:        suggestedPrice,
		ProjectedProfitMargin: margin,
		StrategyAlignment:     alignment,
		RiskLevel:             risk,
		ProcessedAt:           now.UTC(),
	}
	return snap, true
}

func floatField(fields map[string]any, key string) (float64, bool) {
	v, ok := fields[key].(float64)
	return v, ok
}

func intField(fields map[string]any, key string) (int, bool) {
	v, ok := fields[key].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func stringField(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key].(string)
	return v, ok
}

// intPair extracts a two-element numeric JSON array, e.g. a confidence interval.
func intPair(fields map[string]any, key string) (int, int, bool) {
	list, ok := fields[key].([]any)
	if !ok || len(list) != 2 {
		return 0, 0, false
	}
	first, ok := list[0].(float64)
	if !ok {
		return 0, 0, false
	}
	second, ok := list[1].(float64)
	if !ok {
		return 0, 0, false
	}
	return int(first), int(second), true
}
