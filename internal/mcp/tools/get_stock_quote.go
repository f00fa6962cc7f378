package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/marketstack-mcp/internal/logging"
)

const (
	GetStockQuoteName = "getStockQuote"
	QuoteErrorPrefix  = "Error fetching stockdata "
)

type QuoteService interface {
	Quote(ctx context.Context, symbol string) (string, error)
}

type GetStockQuoteHandler struct {
	Service QuoteService
	Log     logging.Logger
}

func (h *GetStockQuoteHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return catchAsText(QuoteErrorPrefix, h.Log, h.lookup)(ctx, req)
}

func (h *GetStockQuoteHandler) lookup(ctx context.Context, args map[string]any) (string, error) {
	return h.Service.Quote(ctx, stringArgument(args, "symbol"))
}
