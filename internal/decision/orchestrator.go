// Package decision sequences the forecast, reorder, and pricing oracle
// stages for one (product, store) unit and assembles the combined result.
package decision

import (
	"context"
	"log/slog"

	"github.com/rzylka/stockcast/internal/oracle"
	"github.com/rzylka/stockcast/internal/query"
	"github.com/rzylka/stockcast/internal/storage"
)

// Pricing strategy hints passed to the pricing oracle. When stock already
// covers the forecast demand, the caller's hint is overridden with
// StrategyEase: pricing pressure should relax when stock is not scarce.
const (
	StrategyIncrease = "increase"
	StrategyEase     = "stable or decrease"
)

// Stage statuses. A stage is "ok" only when its oracle call succeeded and
// returned a JSON object; every other outcome is a contained degradation.
const (
	StageOK          = "ok"
	StageSufficient  = "sufficient"  // inventory only: stock covers forecast, no reorder
	StageUnavailable = "unavailable" // required input missing (oracle data or stored record)
	StageSkipped     = "skipped"     // never attempted because an upstream stage failed
	StageError       = "error"       // attempted, but the call or lookup failed
)

// Stage is one section of a decision envelope. Fields carries the oracle's
// top-level JSON object on success, or a single-key error mapping on failure.
type Stage struct {
	Status string         `json:"status"`
	Fields map[string]any `json:"fields,omitempty"`
	Note   string         `json:"note,omitempty"`
}

// Decision is the three-key aggregate produced for one orchestration run.
// Callers must inspect stage statuses to detect degraded results; a Decision
// is always complete even when individual stages failed.
type Decision struct {
	Forecast  Stage `json:"forecast"`
	Inventory Stage `json:"inventory"`
	Pricing   Stage `json:"pricing"`
}

// RecordSource supplies the latest stored inventory and pricing rows for a
// logical key. The boolean reports presence; absence is not an error.
type RecordSource interface {
	LatestInventory(productID, storeID string) (storage.InventoryRecord, bool, error)
	LatestPricing(productID, storeID string) (storage.PricingRecord, bool, error)
}

// Oracle issues prediction queries. All three calls contain their own
// failures and return them as ordinary values.
type Oracle interface {
	Forecast(ctx context.Context, query string) oracle.Result
	Reorder(ctx context.Context, query string) oracle.Result
	Price(ctx context.Context, query string) oracle.Result
}

// Orchestrator drives the forecast -> (conditional) reorder -> pricing
// sequence for one demand observation.
type Orchestrator struct {
	records RecordSource
	oracle  Oracle
	logger  *slog.Logger
}

// New creates an Orchestrator wired to the record source and oracle client.
func New(records RecordSource, o Oracle) *Orchestrator {
	return &Orchestrator{
		records: records,
		oracle:  o,
		logger:  slog.Default(),
	}
}

// Decide produces the combined decision for one demand observation, a target
// month label, and a pricing strategy hint.
//
// The forecast stage is a hard dependency: without a predicted_demand value
// there is nothing to condition the downstream stages on, so both are marked
// skipped and no further oracle call happens. A missing inventory record only
// degrades the inventory stage; pricing does not depend on it and is still
// attempted with the caller's strategy.
func (o *Orchestrator) Decide(ctx context.Context, demand storage.DemandRecord, month, strategy string) Decision {
	var out Decision

	forecast := o.oracle.Forecast(ctx, query.Forecast(demand, month))
	predicted, ok := forecast.Int("predicted_demand")
	if !ok {
		out.Forecast = Stage{Status: StageUnavailable, Note: "forecast data not available"}
		if !forecast.OK {
			out.Forecast.Fields = forecast.Map()
		}
		out.Inventory = Stage{Status: StageSkipped, Note: "not attempted: forecast unavailable"}
		out.Pricing = Stage{Status: StageSkipped, Note: "not attempted: forecast unavailable"}
		o.logger.Warn("forecast stage unavailable, decision short-circuited",
			"product_id", demand.ProductID, "store_id", demand.StoreID)
		return out
	}
	out.Forecast = Stage{Status: StageOK, Fields: forecast.Fields}

	inv, found, err := o.records.LatestInventory(demand.ProductID, demand.StoreID)
	switch {
	case err != nil:
		out.Inventory = Stage{Status: StageError, Fields: map[string]any{"error": err.Error()}}
	case !found:
		out.Inventory = Stage{Status: StageUnavailable, Note: "inventory data not available"}
	case inv.StockLevels < predicted:
		// Shortfall: ask for a reorder amount and keep the strategy hint as-is.
		out.Inventory = stageFromResult(o.oracle.Reorder(ctx, query.Reorder(inv, predicted)))
	default:
		// Stock at or above forecast counts as sufficient; ease pricing pressure.
		out.Inventory = Stage{Status: StageSufficient, Note: "stock is sufficient, no reorder needed"}
		strategy = StrategyEase
	}

	out.Pricing = o.priceStage(ctx, demand.ProductID, demand.StoreID, strategy)
	return out
}

func (o *Orchestrator) priceStage(ctx context.Context, productID, storeID, strategy string) Stage {
	pricing, found, err := o.records.LatestPricing(productID, storeID)
	if err != nil {
		return Stage{Status: StageError, Fields: map[string]any{"error": err.Error()}}
	}
	if !found {
		return Stage{Status: StageUnavailable, Note: "pricing data not available"}
	}
	return stageFromResult(o.oracle.Price(ctx, query.Pricing(pricing, strategy)))
}

// stageFromResult converts an oracle result into a stage: the oracle's own
// field map on success, the contained error mapping otherwise.
func stageFromResult(r oracle.Result) Stage {
	if r.OK {
		return Stage{Status: StageOK, Fields: r.Fields}
	}
	return Stage{Status: StageError, Fields: r.Map()}
}
