package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/marketstack-mcp/internal/config"
	"github.com/roivaz/marketstack-mcp/internal/logging"
	"github.com/roivaz/marketstack-mcp/internal/marketstack"
	"github.com/roivaz/marketstack-mcp/internal/mcp/tools"
	"github.com/roivaz/marketstack-mcp/internal/quotes"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Logger       logging.Logger
}

// DefaultConfig wires the MarketStack client and quote service behind the
// three tools. Settings must already be validated by config.Load.
func DefaultConfig(settings config.Settings, log logging.Logger, opts ...quotes.Option) Config {
	client := marketstack.NewClient(settings.APIKey,
		marketstack.WithBaseURL(settings.BaseURL),
		marketstack.WithTimeout(settings.HTTPTimeout),
		marketstack.WithLogger(log),
	)
	service := quotes.New(client, log, opts...)
	toolLog := func(name string) logging.Logger {
		return log.WithName("tools").WithValues("tool", name)
	}

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			tools.GetStockQuoteName:     &tools.GetStockQuoteHandler{Service: service, Log: toolLog(tools.GetStockQuoteName)},
			tools.GetHistoricalDataName: &tools.GetHistoricalDataHandler{Service: service, Log: toolLog(tools.GetHistoricalDataName)},
			tools.SearchCompanyName:     &tools.SearchCompanyHandler{Service: service, Log: toolLog(tools.SearchCompanyName)},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath(EndpointPath),
			server.WithStateLess(true),
		},
		Logger: log,
	}
}
