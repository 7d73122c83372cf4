package storage

import (
	"database/sql"
	"fmt"
)

// --- Demand ---

// SaveDemand inserts a new demand observation and returns its surrogate id.
func (s *Store) SaveDemand(d DemandRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO demand_records (product_id, store_id, date, sales_quantity, price, promotions, seasonality_factors, external_factors, demand_trend, customer_segments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ProductID, d.StoreID, d.Date, d.SalesQuantity, d.Price,
		d.Promotions, d.SeasonalityFactors, d.ExternalFactors, d.DemandTrend, d.CustomerSegments,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const demandColumns = `id, product_id, store_id, date, sales_quantity, price, promotions, seasonality_factors, external_factors, demand_trend, customer_segments`

func scanDemand(row interface{ Scan(...any) error }) (DemandRecord, error) {
	var d DemandRecord
	err := row.Scan(&d.ID, &d.ProductID, &d.StoreID, &d.Date, &d.SalesQuantity, &d.Price,
		&d.Promotions, &d.SeasonalityFactors, &d.ExternalFactors, &d.DemandTrend, &d.CustomerSegments)
	return d, err
}

// AllDemand returns every demand record in insertion order.
func (s *Store) AllDemand() ([]DemandRecord, error) {
	rows, err := s.db.Query(`SELECT ` + demandColumns + ` FROM demand_records ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DemandRecord
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// DemandHistory returns all demand rows for a (product, store) pair in insertion order.
func (s *Store) DemandHistory(productID, storeID string) ([]DemandRecord, error) {
	rows, err := s.db.Query(`SELECT `+demandColumns+` FROM demand_records WHERE product_id = ? AND store_id = ? ORDER BY id ASC`, productID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DemandRecord
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// LatestDemand returns the most recently appended demand row for a (product,
// store) pair. The second return reports presence.
func (s *Store) LatestDemand(productID, storeID string) (DemandRecord, bool, error) {
	row := s.db.QueryRow(`SELECT `+demandColumns+` FROM demand_records WHERE product_id = ? AND store_id = ? ORDER BY id DESC LIMIT 1`, productID, storeID)
	d, err := scanDemand(row)
	if err == sql.ErrNoRows {
		return DemandRecord{}, false, nil
	}
	if err != nil {
		return DemandRecord{}, false, fmt.Errorf("querying latest demand: %w", err)
	}
	return d, true, nil
}

// --- Inventory ---

// SaveInventory inserts a new inventory observation and returns its surrogate id.
func (s *Store) SaveInventory(inv InventoryRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO inventory_records (product_id, store_id, stock_levels, supplier_lead_time, stockout_frequency, reorder_point, expiry_date, warehouse_capacity, order_fulfillment_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ProductID, inv.StoreID, inv.StockLevels, inv.SupplierLeadTime, inv.StockoutFrequency,
		inv.ReorderPoint, inv.ExpiryDate, inv.WarehouseCapacity, inv.OrderFulfillmentTime,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const inventoryColumns = `id, product_id, store_id, stock_levels, supplier_lead_time, stockout_frequency, reorder_point, expiry_date, warehouse_capacity, order_fulfillment_time`

func scanInventory(row interface{ Scan(...any) error }) (InventoryRecord, error) {
	var inv InventoryRecord
	err := row.Scan(&inv.ID, &inv.ProductID, &inv.StoreID, &inv.StockLevels, &inv.SupplierLeadTime,
		&inv.StockoutFrequency, &inv.ReorderPoint, &inv.ExpiryDate, &inv.WarehouseCapacity, &inv.OrderFulfillmentTime)
	return inv, err
}

// InventoryHistory returns all inventory rows for a (product, store) pair in insertion order.
func (s *Store) InventoryHistory(productID, storeID string) ([]InventoryRecord, error) {
	rows, err := s.db.Query(`SELECT `+inventoryColumns+` FROM inventory_records WHERE product_id = ? AND store_id = ? ORDER BY id ASC`, productID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []InventoryRecord
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, inv)
	}
	return results, rows.Err()
}

// LatestInventory returns the row with the greatest id for a (product, store)
// pair. Business dates on the record play no part in the selection.
func (s *Store) LatestInventory(productID, storeID string) (InventoryRecord, bool, error) {
	row := s.db.QueryRow(`SELECT `+inventoryColumns+` FROM inventory_records WHERE product_id = ? AND store_id = ? ORDER BY id DESC LIMIT 1`, productID, storeID)
	inv, err := scanInventory(row)
	if err == sql.ErrNoRows {
		return InventoryRecord{}, false, nil
	}
	if err != nil {
		return InventoryRecord{}, false, fmt.Errorf("querying latest inventory: %w", err)
	}
	return inv, true, nil
}

// --- Pricing ---

// SavePricing inserts a new pricing observation and returns its surrogate id.
func (s *Store) SavePricing(p PricingRecord) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO pricing_records (product_id, store_id, price, competitor_prices, discounts, sales_volume, customer_reviews, return_rate, storage_cost, elasticity_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProductID, p.StoreID, p.Price, p.CompetitorPrices, p.Discounts,
		p.SalesVolume, p.CustomerReviews, p.ReturnRate, p.StorageCost, p.ElasticityIndex,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const pricingColumns = `id, product_id, store_id, price, competitor_prices, discounts, sales_volume, customer_reviews, return_rate, storage_cost, elasticity_index`

func scanPricing(row interface{ Scan(...any) error }) (PricingRecord, error) {
	var p PricingRecord
	err := row.Scan(&p.ID, &p.ProductID, &p.StoreID, &p.Price, &p.CompetitorPrices, &p.Discounts,
		&p.SalesVolume, &p.CustomerReviews, &p.ReturnRate, &p.StorageCost, &p.ElasticityIndex)
	return p, err
}

// PricingHistory returns all pricing rows for a (product, store) pair in insertion order.
func (s *Store) PricingHistory(productID, storeID string) ([]PricingRecord, error) {
	rows, err := s.db.Query(`SELECT `+pricingColumns+` FROM pricing_records WHERE product_id = ? AND store_id = ? ORDER BY id ASC`, productID, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []PricingRecord
	for rows.Next() {
		p, err := scanPricing(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// LatestPricing returns the row with the greatest id for a (product, store) pair.
func (s *Store) LatestPricing(productID, storeID string) (PricingRecord, bool, error) {
	row := s.db.QueryRow(`SELECT `+pricingColumns+` FROM pricing_records WHERE product_id = ? AND store_id = ? ORDER BY id DESC LIMIT 1`, productID, storeID)
	p, err := scanPricing(row)
	if err == sql.ErrNoRows {
		return PricingRecord{}, false, nil
	}
	if err != nil {
		return PricingRecord{}, false, fmt.Errorf("querying latest pricing: %w", err)
	}
	return p, true, nil
}
