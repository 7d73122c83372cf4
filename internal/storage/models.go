package storage

import (
	"time"
)

// DemandRecord is one demand observation for a (product, store) pair.
// Records are append-only: new observations insert new rows.
type DemandRecord struct {
	ID                 int64   `json:"id"`
	ProductID          string  `json:"product_id"`
	StoreID            string  `json:"store_id"`
	Date               string  `json:"date"` // yyyy-mm-dd
	SalesQuantity      int     `json:"sales_quantity"`
	Price              float64 `json:"price"`
	Promotions         string  `json:"promotions"`
	SeasonalityFactors string  `json:"seasonality_factors"`
	ExternalFactors    string  `json:"external_factors"`
	DemandTrend        string  `json:"demand_trend"`
	CustomerSegments   string  `json:"customer_segments"`
}

// InventoryRecord is one inventory observation for a (product, store) pair.
// "Latest" for a pair means the row with the greatest id, not any business date.
type InventoryRecord struct {
	ID                   int64  `json:"id"`
	ProductID            string `json:"product_id"`
	StoreID              string `json:"store_id"`
	StockLevels          int    `json:"stock_levels"`
	SupplierLeadTime     int    `json:"supplier_lead_time"`
	StockoutFrequency    int    `json:"stockout_frequency"`
	ReorderPoint         int    `json:"reorder_point"`
	ExpiryDate           string `json:"expiry_date"` // yyyy-mm-dd
	WarehouseCapacity    int    `json:"warehouse_capacity"`
	OrderFulfillmentTime int    `json:"order_fulfillment_time"`
}

// PricingRecord is one pricing observation for a (product, store) pair.
type PricingRecord struct {
	ID               int64   `json:"id"`
	ProductID        string  `json:"product_id"`
	StoreID          string  `json:"store_id"`
	Price            float64 `json:"price"`
	CompetitorPrices float64 `json:"competitor_prices"`
	Discounts        float64 `json:"discounts"`
	SalesVolume      int     `json:"sales_volume"`
	CustomerReviews  int     `json:"customer_reviews"`
	ReturnRate       float64 `json:"return_rate"`
	StorageCost      float64 `json:"storage_cost"`
	ElasticityIndex  float64 `json:"elasticity_index"`
}

// DecisionSnapshot is the persisted outcome of one full pipeline run for one
// (product, store) pair in one batch cycle. Immutable once written; re-running
// a cycle appends new snapshots rather than replacing old ones.
//
// RecommendedOrder and ReorderJustification are zero-valued when the cycle
// found stock sufficient and no reorder was requested.
type DecisionSnapshot struct {
	ID                    string    `json:"id"`
	ProductID             string    `json:"product_id"`
	StoreID               string    `json:"store_id"`
	Month                 string    `json:"month"`
	PredictedDemand       int       `json:"predicted_demand"`
	LowerConfidence       int       `json:"lower_confidence"`
	UpperConfidence       int       `json:"upper_confidence"`
	ForecastMethod        string    `json:"forecast_method"`
	RecommendedOrder      int       `json:"recommended_order"`
	ReorderJustification  string    `json:"reorder_justification"`
	CurrentPrice          float64   `json:"current_price"`
	SuggestedPrice        float64   `json:"suggested_price"`
	ProjectedProfitMargin string    `json:"projected_profit_margin"`
	StrategyAlignment     string    `json:"strategy_alignment"`
	RiskLevel             string    `json:"risk_level"`
	ProcessedAt           time.Time `json:"processed_at"`
}
