package tools

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/marketstack-mcp/internal/logging"
)

// textLookup produces the text payload of a tool call from its arguments.
type textLookup func(ctx context.Context, args map[string]any) (string, error)

// catchAsText makes lookup total: errors and panics become a normal text
// result carrying prefix followed by the failure message, so the caller
// always receives exactly one text block and never a protocol error.
func catchAsText(prefix string, log logging.Logger, lookup textLookup) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				perr := fmt.Errorf("unexpected failure: %v", r)
				log.Error(perr, "tool panicked")
				result, err = mcp.NewToolResultText(prefix+perr.Error()), nil
			}
		}()

		text, lerr := lookup(ctx, req.GetArguments())
		if lerr != nil {
			log.Error(lerr, "MarketStack API error")
			return mcp.NewToolResultText(prefix + lerr.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func stringArgument(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// parseIntArgument truncates numeric JSON values; a missing or non-numeric
// value yields fallback. Values outside the int32 range are rejected rather
// than wrapped.
func parseIntArgument(key string, value any, fallback int) (int, error) {
	var n float64
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback, nil
		}
		n = math.Trunc(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	default:
		return fallback, nil
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%s out of range: %v", key, value)
	}
	return int(n), nil
}
