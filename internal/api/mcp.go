package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rzylka/stockcast/internal/decision"
	"github.com/rzylka/stockcast/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *storage.Store
	Decider Decider
}

// NewMCPServer creates an MCP server with all stockcast tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"stockcast",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("stockcast: retail demand forecasting, inventory reorder, and pricing decisions."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("predict_decisions",
			mcp.WithDescription("Run the forecast, reorder, and pricing pipeline for a product and store using the latest stored demand record."),
			mcp.WithString("product_id", mcp.Description("Product identifier"), mcp.Required()),
			mcp.WithString("store_id", mcp.Description("Store identifier"), mcp.Required()),
			mcp.WithString("month", mcp.Description("Month name for the forecast (default: current month)")),
			mcp.WithString("strategy", mcp.Description("Pricing strategy (default: increase)")),
		),
		mcpPredictDecisions(deps),
	)

	s.AddTool(
		mcp.NewTool("latest_snapshots",
			mcp.WithDescription("List decision snapshots saved within the last N hours."),
			mcp.WithNumber("hours", mcp.Description("Lookback window in hours (default 24)")),
		),
		mcpLatestSnapshots(deps),
	)

	s.AddTool(
		mcp.NewTool("add_demand",
			mcp.WithDescription("Store a demand observation for a product and store."),
			mcp.WithString("product_id", mcp.Description("Product identifier"), mcp.Required()),
			mcp.WithString("store_id", mcp.Description("Store identifier"), mcp.Required()),
			mcp.WithString("date", mcp.Description("Observation date, yyyy-mm-dd"), mcp.Required()),
			mcp.WithNumber("sales_quantity", mcp.Description("Units sold"), mcp.Required()),
			mcp.WithNumber("price", mcp.Description("Unit price")),
			mcp.WithString("promotions", mcp.Description("Promotion flag, Yes or No")),
			mcp.WithString("seasonality_factors", mcp.Description("Seasonality description")),
			mcp.WithString("external_factors", mcp.Description("External factors description")),
			mcp.WithString("demand_trend", mcp.Description("Trend label")),
			mcp.WithString("customer_segments", mcp.Description("Customer segment label")),
		),
		mcpAddDemand(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"stockcast://snapshots/today",
			"Today's Decision Snapshots",
			mcp.WithResourceDescription("Decision snapshots processed during the current UTC day"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceTodaySnapshots(deps),
	)

	return s
}

func mcpPredictDecisions(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productID, err := req.RequireString("product_id")
		if err != nil {
			return mcpError("product_id is required"), nil
		}
		storeID, err := req.RequireString("store_id")
		if err != nil {
			return mcpError("store_id is required"), nil
		}

		month := req.GetString("month", "")
		if month == "" {
			month = time.Now().Month().String()
		}
		strategy := req.GetString("strategy", decision.StrategyIncrease)

		demand, ok, err := deps.Store.LatestDemand(productID, storeID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load demand record: %v", err)), nil
		}
		if !ok {
			return mcpError(fmt.Sprintf("no demand record for product %s at store %s", productID, storeID)), nil
		}

		dec := deps.Decider.Decide(ctx, demand, month, strategy)

		b, err := json.Marshal(dec)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal decision: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpLatestSnapshots(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hours := req.GetInt("hours", 24)
		if hours <= 0 {
			hours = 24
		}
		if hours > 24*31 {
			hours = 24 * 31
		}

		end := time.Now().UTC()
		start := end.Add(-time.Duration(hours) * time.Hour)

		snapshots, err := deps.Store.SnapshotsBetween(start, end)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list snapshots: %v", err)), nil
		}
		if len(snapshots) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(snapshots)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal snapshots: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddDemand(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		productID, err := req.RequireString("product_id")
		if err != nil {
			return mcpError("product_id is required"), nil
		}
		storeID, err := req.RequireString("store_id")
		if err != nil {
			return mcpError("store_id is required"), nil
		}
		date, err := req.RequireString("date")
		if err != nil {
			return mcpError("date is required"), nil
		}
		salesQuantity, err := req.RequireInt("sales_quantity")
		if err != nil {
			return mcpError("sales_quantity is required"), nil
		}

		rec := storage.DemandRecord{
			ProductID:          productID,
			Date:               date,
			StoreID:            storeID,
			SalesQuantity:      salesQuantity,
			Price:              req.GetFloat("price", 0),
			Promotions:         req.GetString("promotions", "No"),
			SeasonalityFactors: req.GetString("seasonality_factors", ""),
			ExternalFactors:    req.GetString("external_factors", ""),
			DemandTrend:        req.GetString("demand_trend", ""),
			CustomerSegments:   req.GetString("customer_segments", ""),
		}

		id, err := deps.Store.SaveDemand(rec)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to save demand record: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Stored demand record %d for product %s at store %s", id, productID, storeID)), nil
	}
}

func mcpResourceTodaySnapshots(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		snapshots, err := deps.Store.SnapshotsBetween(start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}

		b, err := json.Marshal(snapshots)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshots: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
