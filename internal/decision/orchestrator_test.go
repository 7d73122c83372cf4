package decision

import (
	"context"
	"strings"
	"testing"

	"github.com/rzylka/stockcast/internal/oracle"
	"github.com/rzylka/stockcast/internal/storage"
)

// fakeRecords serves canned inventory and pricing rows.
type fakeRecords struct {
	inventory    storage.InventoryRecord
	hasInventory bool
	pricing      storage.PricingRecord
	hasPricing   bool
	invErr       error
}

func (f *fakeRecords) LatestInventory(productID, storeID string) (storage.InventoryRecord, bool, error) {
	return f.inventory, f.hasInventory, f.invErr
}

func (f *fakeRecords) LatestPricing(productID, storeID string) (storage.PricingRecord, bool, error) {
	return f.pricing, f.hasPricing, nil
}

// fakeOracle returns canned results and records every query it receives.
type fakeOracle struct {
	forecast oracle.Result
	reorder  oracle.Result
	pricing  oracle.Result

	forecastQueries []string
	reorderQueries  []string
	pricingQueries  []string
}

func (f *fakeOracle) Forecast(ctx context.Context, query string) oracle.Result {
	f.forecastQueries = append(f.forecastQueries, query)
	return f.forecast
}

func (f *fakeOracle) Reorder(ctx context.Context, query string) oracle.Result {
	f.reorderQueries = append(f.reorderQueries, query)
	return f.reorder
}

func (f *fakeOracle) Price(ctx context.Context, query string) oracle.Result {
	f.pricingQueries = append(f.pricingQueries, query)
	return f.pricing
}

func demandFixture() storage.DemandRecord {
	return storage.DemandRecord{
		ProductID:          "P1",
		StoreID:            "S1",
		SalesQuantity:      50,
		Price:              9.99,
		Promotions:         "Yes",
		SeasonalityFactors: "Holiday",
		ExternalFactors:    "None",
		DemandTrend:        "Increasing",
		CustomerSegments:   "Regular",
	}
}

func inventoryFixture(stock int) storage.InventoryRecord {
	return storage.InventoryRecord{
		ProductID:            "P1",
		StoreID:              "S1",
		StockLevels:          stock,
		SupplierLeadTime:     5,
		StockoutFrequency:    2,
		ReorderPoint:         30,
		ExpiryDate:           "2026-12-31",
		WarehouseCapacity:    500,
		OrderFulfillmentTime: 3,
	}
}

func pricingFixture() storage.PricingRecord {
	return storage.PricingRecord{
		ProductID: "P1", StoreID: "S1",
		Price: 9.99, CompetitorPrices: 10.49, SalesVolume: 120, CustomerReviews: 87,
	}
}

func forecastOK(predicted int) oracle.Result {
	return oracle.Success(map[string]any{
		"predicted_demand":    float64(predicted),
		"confidence_interval": []any{float64(predicted - 10), float64(predicted + 10)},
		"method_used":         "time-series",
	})
}

func TestDecide_ShortfallRunsReorder(t *testing.T) {
	o := &fakeOracle{
		forecast: forecastOK(80),
		reorder:  oracle.Success(map[string]any{"recommended_order": float64(55), "justification": "lead time"}),
		pricing:  oracle.Success(map[string]any{"suggested_price": 10.49}),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(40), hasInventory: true,
		pricing: pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Forecast.Status != StageOK {
		t.Errorf("forecast status = %q, want %q", dec.Forecast.Status, StageOK)
	}
	if dec.Inventory.Status != StageOK {
		t.Errorf("inventory status = %q, want %q", dec.Inventory.Status, StageOK)
	}
	if dec.Pricing.Status != StageOK {
		t.Errorf("pricing status = %q, want %q", dec.Pricing.Status, StageOK)
	}

	if len(o.reorderQueries) != 1 {
		t.Fatalf("reorder called %d times, want 1", len(o.reorderQueries))
	}
	if !strings.Contains(o.reorderQueries[0], "Predicted Sales: 80") {
		t.Errorf("reorder query missing forecast demand: %q", o.reorderQueries[0])
	}

	// The shortfall branch keeps the caller's strategy.
	if len(o.pricingQueries) != 1 {
		t.Fatalf("pricing called %d times, want 1", len(o.pricingQueries))
	}
	if !strings.Contains(o.pricingQueries[0], "Strategy: increase.") {
		t.Errorf("pricing query did not keep the caller strategy: %q", o.pricingQueries[0])
	}
}

func TestDecide_SufficientStockSkipsReorderAndEasesStrategy(t *testing.T) {
	o := &fakeOracle{
		forecast: forecastOK(80),
		pricing:  oracle.Success(map[string]any{"suggested_price": 9.49}),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(120), hasInventory: true,
		pricing: pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Inventory.Status != StageSufficient {
		t.Errorf("inventory status = %q, want %q", dec.Inventory.Status, StageSufficient)
	}
	if dec.Inventory.Note != "stock is sufficient, no reorder needed" {
		t.Errorf("inventory note = %q", dec.Inventory.Note)
	}
	if len(o.reorderQueries) != 0 {
		t.Errorf("reorder called %d times on sufficient stock, want 0", len(o.reorderQueries))
	}

	if !strings.Contains(o.pricingQueries[0], "Strategy: stable or decrease.") {
		t.Errorf("strategy not eased on sufficient stock: %q", o.pricingQueries[0])
	}
}

func TestDecide_StockEqualToForecastIsSufficient(t *testing.T) {
	o := &fakeOracle{
		forecast: forecastOK(80),
		pricing:  oracle.Success(map[string]any{"suggested_price": 9.49}),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(80), hasInventory: true,
		pricing: pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Inventory.Status != StageSufficient {
		t.Errorf("inventory status at exact match = %q, want %q", dec.Inventory.Status, StageSufficient)
	}
	if len(o.reorderQueries) != 0 {
		t.Errorf("reorder called on exact stock match")
	}
}

func TestDecide_ForecastUnavailableShortCircuits(t *testing.T) {
	o := &fakeOracle{
		forecast: oracle.Failure("oracle returned status 500"),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(40), hasInventory: true,
		pricing: pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Forecast.Status != StageUnavailable {
		t.Errorf("forecast status = %q, want %q", dec.Forecast.Status, StageUnavailable)
	}
	if dec.Inventory.Status != StageSkipped || dec.Pricing.Status != StageSkipped {
		t.Errorf("downstream stages not skipped: inventory=%q pricing=%q",
			dec.Inventory.Status, dec.Pricing.Status)
	}
	if len(o.reorderQueries) != 0 || len(o.pricingQueries) != 0 {
		t.Errorf("downstream oracle calls made after forecast failure: reorder=%d pricing=%d",
			len(o.reorderQueries), len(o.pricingQueries))
	}
}

func TestDecide_ForecastMissingKeyShortCircuits(t *testing.T) {
	// A successful call whose body lacks predicted_demand is just as unusable.
	o := &fakeOracle{
		forecast: oracle.Success(map[string]any{"method_used": "time-series"}),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(40), hasInventory: true,
		pricing: pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Forecast.Status != StageUnavailable {
		t.Errorf("forecast status = %q, want %q", dec.Forecast.Status, StageUnavailable)
	}
	if len(o.reorderQueries) != 0 || len(o.pricingQueries) != 0 {
		t.Error("downstream oracle calls made without a usable forecast")
	}
}

func TestDecide_MissingInventoryStillPrices(t *testing.T) {
	o := &fakeOracle{
		forecast: forecastOK(80),
		pricing:  oracle.Success(map[string]any{"suggested_price": 10.49}),
	}
	records := &fakeRecords{
		hasInventory: false,
		pricing:      pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Inventory.Status != StageUnavailable {
		t.Errorf("inventory status = %q, want %q", dec.Inventory.Status, StageUnavailable)
	}
	if dec.Pricing.Status != StageOK {
		t.Errorf("pricing status = %q, want %q", dec.Pricing.Status, StageOK)
	}
	// Without an inventory verdict the caller's strategy stands.
	if !strings.Contains(o.pricingQueries[0], "Strategy: increase.") {
		t.Errorf("strategy changed without an inventory verdict: %q", o.pricingQueries[0])
	}
}

func TestDecide_ReorderFailureContained(t *testing.T) {
	o := &fakeOracle{
		forecast: forecastOK(80),
		reorder:  oracle.Failure("oracle returned an empty body"),
		pricing:  oracle.Success(map[string]any{"suggested_price": 10.49}),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(40), hasInventory: true,
		pricing: pricingFixture(), hasPricing: true,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Inventory.Status != StageError {
		t.Errorf("inventory status = %q, want %q", dec.Inventory.Status, StageError)
	}
	if _, ok := dec.Inventory.Fields["error"]; !ok {
		t.Errorf("inventory failure fields missing error key: %v", dec.Inventory.Fields)
	}
	// A failed reorder does not stop the pricing stage.
	if dec.Pricing.Status != StageOK {
		t.Errorf("pricing status = %q, want %q", dec.Pricing.Status, StageOK)
	}
}

func TestDecide_MissingPricingRecord(t *testing.T) {
	o := &fakeOracle{
		forecast: forecastOK(80),
		reorder:  oracle.Success(map[string]any{"recommended_order": float64(55)}),
	}
	records := &fakeRecords{
		inventory: inventoryFixture(40), hasInventory: true,
		hasPricing: false,
	}

	dec := New(records, o).Decide(context.Background(), demandFixture(), "March", StrategyIncrease)

	if dec.Pricing.Status != StageUnavailable {
		t.Errorf("pricing status = %q, want %q", dec.Pricing.Status, StageUnavailable)
	}
	if len(o.pricingQueries) != 0 {
		t.Error("pricing oracle called without a stored pricing record")
	}
}
