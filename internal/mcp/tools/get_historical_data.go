package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/marketstack-mcp/internal/logging"
	"github.com/roivaz/marketstack-mcp/internal/quotes"
)

const (
	GetHistoricalDataName = "getHistoricalData"
	HistoryErrorPrefix    = "Error fetching historical data: "
)

type HistoryService interface {
	History(ctx context.Context, symbol string, days int) (string, error)
}

type GetHistoricalDataHandler struct {
	Service HistoryService
	Log     logging.Logger
}

func (h *GetHistoricalDataHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return catchAsText(HistoryErrorPrefix, h.Log, h.lookup)(ctx, req)
}

func (h *GetHistoricalDataHandler) lookup(ctx context.Context, args map[string]any) (string, error) {
	days, err := parseIntArgument("days", args["days"], quotes.DefaultHistoryDays)
	if err != nil {
		return "", err
	}
	return h.Service.History(ctx, stringArgument(args, "symbol"), days)
}
