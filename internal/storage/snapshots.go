package storage

import (
	"fmt"
	"time"
)

// SaveSnapshot persists one decision snapshot. A snapshot write either fully
// succeeds or is not written; snapshots are never updated afterwards.
func (s *Store) SaveSnapshot(snap DecisionSnapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO decision_snapshots (id, product_id, store_id, month, predicted_demand, lower_confidence, upper_confidence, forecast_method, recommended_order, reorder_justification, current_price, suggested_price, projected_profit_margin, strategy_alignment, risk_level, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.ProductID, snap.StoreID, snap.Month,
		snap.PredictedDemand, snap.LowerConfidence, snap.UpperConfidence, snap.ForecastMethod,
		snap.RecommendedOrder, snap.ReorderJustification,
		snap.CurrentPrice, snap.SuggestedPrice, snap.ProjectedProfitMargin, snap.StrategyAlignment, snap.RiskLevel,
		snap.ProcessedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// SnapshotsBetween returns snapshots with start <= processed_at < end, oldest first.
func (s *Store) SnapshotsBetween(start, end time.Time) ([]DecisionSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, product_id, store_id, month, predicted_demand, lower_confidence, upper_confidence, forecast_method, recommended_order, reorder_justification, current_price, suggested_price, projected_profit_margin, strategy_alignment, risk_level, processed_at
		FROM decision_snapshots
		WHERE processed_at >= ? AND processed_at < ?
		ORDER BY processed_at ASC`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DecisionSnapshot
	for rows.Next() {
		var snap DecisionSnapshot
		var processedAt string
		if err := rows.Scan(&snap.ID, &snap.ProductID, &snap.StoreID, &snap.Month,
			&snap.PredictedDemand, &snap.LowerConfidence, &snap.UpperConfidence, &snap.ForecastMethod,
			&snap.RecommendedOrder, &snap.ReorderJustification,
			&snap.CurrentPrice, &snap.SuggestedPrice, &snap.ProjectedProfitMargin, &snap.StrategyAlignment, &snap.RiskLevel,
			&processedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, processedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing processed_at: %w", err)
		}
		snap.ProcessedAt = t
		results = append(results, snap)
	}
	return results, rows.Err()
}
