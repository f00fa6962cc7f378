package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/marketstack-mcp/internal/mcp/tools"
)

// ToolDefinitions returns the declared name, description and argument schema
// of every tool the server can expose, keyed by tool name.
func ToolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		tools.GetStockQuoteName: mcp.NewTool(tools.GetStockQuoteName,
			mcp.WithDescription("Get real-time stock quote information"),
			mcp.WithString("symbol",
				mcp.Required(),
				mcp.MinLength(1),
				mcp.Description("Stock symbol (e.g., AAPL, MSFT, GOOGL)"),
			),
		),
		tools.GetHistoricalDataName: mcp.NewTool(tools.GetHistoricalDataName,
			mcp.WithDescription("Get historical stock data for a specific symbol"),
			mcp.WithString("symbol",
				mcp.Required(),
				mcp.MinLength(1),
				mcp.Description("Stock symbol (e.g., AAPL, MSFT, GOOGL)"),
			),
			mcp.WithNumber("days",
				mcp.Min(1),
				mcp.Description("Number of days of historical data (default: 7)"),
			),
		),
		tools.SearchCompanyName: mcp.NewTool(tools.SearchCompanyName,
			mcp.WithDescription("Search for companies by name or keyword"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.MinLength(1),
				mcp.Description("Company name or keyword to search for"),
			),
		),
	}
}

// ToolCatalog returns the tool definitions ordered by name.
func ToolCatalog() []mcp.Tool {
	defs := ToolDefinitions()
	catalog := make([]mcp.Tool, 0, len(defs))
	for _, name := range sortedKeys(defs) {
		catalog = append(catalog, defs[name])
	}
	return catalog
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
