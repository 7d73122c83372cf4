package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/rzylka/stockcast/internal/config"
)

// --- cycle ---

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Trigger a batch decision cycle now",
	Long: `Trigger a batch decision cycle now.

Runs the full pipeline (forecast, reorder, pricing) for every stored demand
record and saves snapshots of the complete outcomes. The same cycle runs
automatically on the first day of each month when the scheduler is enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post("/admin/cycle", nil)
		if err != nil {
			return err
		}

		var stats struct {
			Processed int `json:"processed"`
			Saved     int `json:"saved"`
			Skipped   int `json:"skipped"`
		}
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		printSuccess("Cycle complete: %d processed, %d saved, %d skipped",
			stats.Processed, stats.Saved, stats.Skipped)
		return nil
	},
}

// --- snapshots ---

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List decision snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/api/snapshots"
		if start != "" || end != "" {
			q := url.Values{}
			q.Set("start", start)
			q.Set("end", end)
			path += "?" + q.Encode()
		}

		resp, err := client.get(path)
		if err != nil {
			return err
		}

		var snapshots []struct {
			ID              string  `json:"id"`
			ProductID       string  `json:"product_id"`
			StoreID         string  `json:"store_id"`
			Month           string  `json:"month"`
			PredictedDemand int     `json:"predicted_demand"`
			SuggestedPrice  float64 `json:"suggested_price"`
			ProcessedAt     string  `json:"processed_at"`
		}
		if err := decodeJSON(resp, &snapshots); err != nil {
			return err
		}

		if len(snapshots) == 0 {
			fmt.Println("No snapshots found.")
			return nil
		}

		for _, s := range snapshots {
			fmt.Printf("%s  %s/%s  %s  demand=%d  price=%.2f  %s\n",
				colorize(colorCyan, s.ID[:8]),
				s.ProductID, s.StoreID,
				s.Month,
				s.PredictedDemand,
				s.SuggestedPrice,
				s.ProcessedAt,
			)
		}
		return nil
	},
}

func init() {
	snapshotsCmd.Flags().String("start", "", "window start (RFC 3339, defaults to today)")
	snapshotsCmd.Flags().String("end", "", "window end (RFC 3339, exclusive)")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history <demand|inventory|pricing> <product-id> <store-id>",
	Short: "Show stored records for a product and store",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		family, productID, storeID := args[0], args[1], args[2]
		switch family {
		case "demand", "inventory", "pricing":
		default:
			return fmt.Errorf("unknown record family %q (want demand, inventory, or pricing)", family)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/api/%s/history/%s/%s",
			family, url.PathEscape(productID), url.PathEscape(storeID))
		resp, err := client.get(path)
		if err != nil {
			return err
		}

		var records []any
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
