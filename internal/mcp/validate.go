package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xeipuuv/gojsonschema"
)

// validateArguments checks call arguments against the tool's declared input
// schema before handing the call to next. Violations are reported as a tool
// error result naming every failed constraint.
func validateArguments(tool mcp.Tool, next server.ToolHandlerFunc) (server.ToolHandlerFunc, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("compile input schema for %s: %w", tool.Name, err)
	}

	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		result, err := schema.Validate(gojsonschema.NewGoLoader(args))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments for %s: %v", tool.Name, err)), nil
		}
		if !result.Valid() {
			errs := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				errs = append(errs, desc.String())
			}
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments for %s: %s", tool.Name, strings.Join(errs, ", "))), nil
		}
		return next(ctx, req)
	}, nil
}
