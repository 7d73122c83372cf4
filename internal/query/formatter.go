// Package query renders structured retail records into the natural-language
// instruction strings the prediction oracle expects. Every function here is a
// pure mapping: same inputs, byte-for-byte same output.
package query

import (
	"fmt"

	"github.com/rzylka/stockcast/internal/storage"
)

// Forecast renders a demand observation plus a target month into a sales
// forecast instruction.
func Forecast(d storage.DemandRecord, month string) string {
	return fmt.Sprintf(
		"Predict sales quantity for Product ID: %s in Store ID: %s, Current Sales: %d, Price: %.2f, "+
			"Promotions: %s, Seasonality: %s, External Factors: %s, Demand Trend: %s, Customer Segment: %s of month: %s.",
		d.ProductID, d.StoreID, d.SalesQuantity, d.Price,
		d.Promotions, d.SeasonalityFactors, d.ExternalFactors, d.DemandTrend, d.CustomerSegments, month,
	)
}

// Reorder renders an inventory observation plus the forecast demand into a
// stock reorder instruction.
func Reorder(inv storage.InventoryRecord, predictedDemand int) string {
	return fmt.Sprintf(
		"Predict stock reorder amount for Product ID: %s in Store ID: %s. Supplier Lead Time: %d, Stockout Frequency: %d, "+
			"Reorder Point: %d, Expiry Date: %s, Warehouse Capacity: %d, Order Fulfillment Time: %d, Predicted Sales: %d.",
		inv.ProductID, inv.StoreID, inv.SupplierLeadTime, inv.StockoutFrequency,
		inv.ReorderPoint, inv.ExpiryDate, inv.WarehouseCapacity, inv.OrderFulfillmentTime, predictedDemand,
	)
}

// Pricing renders a pricing observation plus a strategy hint into a price
// optimization instruction.
func Pricing(p storage.PricingRecord, strategy string) string {
	return fmt.Sprintf(
		"Predict optimal price for Product ID: %s in Store ID: %s. Current Price: %.2f. "+
			"Considering Following Factors: Competitor Prices: %.2f, Discounts: %.2f, Sales Volume: %d, Customer Reviews: %d, "+
			"Return Rate: %.2f, Storage Cost: %.2f, Elasticity Index: %.2f, Strategy: %s.",
		p.ProductID, p.StoreID, p.Price,
		p.CompetitorPrices, p.Discounts, p.SalesVolume, p.CustomerReviews,
		p.ReturnRate, p.StorageCost, p.ElasticityIndex, strategy,
	)
}
