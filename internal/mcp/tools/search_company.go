package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/marketstack-mcp/internal/logging"
)

const (
	SearchCompanyName = "searchCompany"
	SearchErrorPrefix = "Error searching for companies: "
)

type CompanySearchService interface {
	SearchCompanies(ctx context.Context, query string) (string, error)
}

type SearchCompanyHandler struct {
	Service CompanySearchService
	Log     logging.Logger
}

func (h *SearchCompanyHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return catchAsText(SearchErrorPrefix, h.Log, h.lookup)(ctx, req)
}

func (h *SearchCompanyHandler) lookup(ctx context.Context, args map[string]any) (string, error) {
	return h.Service.SearchCompanies(ctx, stringArgument(args, "query"))
}
