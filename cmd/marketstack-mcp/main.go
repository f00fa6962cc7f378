package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/marketstack-mcp/internal/config"
	"github.com/roivaz/marketstack-mcp/internal/logging"
	mcpserver "github.com/roivaz/marketstack-mcp/internal/mcp"
	"github.com/roivaz/marketstack-mcp/internal/mcp/tools"
)

func main() {
	root := newRootCommand()
	config.Init(root)

	if err := root.Execute(); err != nil {
		log.Fatalf("marketstack-mcp: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "marketstack-mcp",
		Short:         "MCP server exposing MarketStack quotes, history and company search",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().String("api-key", "", "MarketStack access key (env MARKETSTACK_API_KEY)")
	root.PersistentFlags().String("base-url", "", "MarketStack API base URL")
	root.PersistentFlags().String("http-timeout", "", "Upstream HTTP timeout (e.g. 30s)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("env-file", "", "Additional .env file to load")
	root.PersistentFlags().String("transport", "", "Server transport: stdio or http")
	root.PersistentFlags().String("host", "", "HTTP host (http transport only)")
	root.PersistentFlags().Int("port", 8000, "HTTP port (http transport only)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools (default command)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})

	var days int
	history := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Print end-of-day history for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, tools.GetHistoricalDataName, map[string]any{"symbol": args[0], "days": days})
		},
	}
	history.Flags().IntVar(&days, "days", 7, "Number of days of history")

	root.AddCommand(
		&cobra.Command{
			Use:   "quote SYMBOL",
			Short: "Print the latest end-of-day quote for a symbol",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTool(cmd, tools.GetStockQuoteName, map[string]any{"symbol": args[0]})
			},
		},
		history,
		&cobra.Command{
			Use:   "search QUERY",
			Short: "Search companies by name or keyword",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTool(cmd, tools.SearchCompanyName, map[string]any{"query": args[0]})
			},
		},
		&cobra.Command{
			Use:   "tools",
			Short: "Print the tool catalog as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printCatalog(cmd.OutOrStdout())
			},
		},
	)

	return root
}

// buildServer loads settings and constructs the MCP server. A missing API key
// fails here, before any tool is registered.
func buildServer() (*mcpserver.Server, config.Settings, logging.Logger, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, config.Settings{}, logging.Logger{}, err
	}
	logger := logging.New(logging.NewLogr(settings.LogLevel))

	srv, err := mcpserver.New(mcpserver.DefaultConfig(settings, logger))
	if err != nil {
		return nil, config.Settings{}, logging.Logger{}, fmt.Errorf("build server: %w", err)
	}
	return srv, settings, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, settings, logger, err := buildServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settings.Transport == "http" {
		return serveHTTP(ctx, srv, settings.Addr(), logger)
	}
	err = srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, srv *mcpserver.Server, addr string, logger logging.Logger) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", "addr", addr, "endpoint", mcpserver.EndpointPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Close()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func runTool(cmd *cobra.Command, name string, args map[string]any) error {
	srv, _, _, err := buildServer()
	if err != nil {
		return err
	}

	result, err := srv.CallTool(cmd.Context(), name, args)
	if err != nil {
		return err
	}
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			fmt.Fprintln(cmd.OutOrStdout(), text.Text)
		}
	}
	if result.IsError {
		return fmt.Errorf("%s rejected the arguments", name)
	}
	return nil
}

func printCatalog(w io.Writer) error {
	out, err := yaml.Marshal(mcpserver.ToolCatalog())
	if err != nil {
		return fmt.Errorf("encode tool catalog: %w", err)
	}
	_, err = w.Write(out)
	return err
}
