package mcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/marketstack-mcp/internal/config"
	"github.com/roivaz/marketstack-mcp/internal/logging"
	"github.com/roivaz/marketstack-mcp/internal/quotes"
)

// fakeMarketStack serves canned MarketStack envelopes per endpoint path.
func fakeMarketStack(t *testing.T, bodies map[string]string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_key") != "test-key" {
			t.Errorf("missing access_key on %s", r.URL.Path)
		}
		body, ok := bodies[strings.TrimPrefix(r.URL.Path, "/v2")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, upstream *httptest.Server) *Server {
	t.Helper()
	settings := config.Settings{
		APIKey:      "test-key",
		BaseURL:     upstream.URL + "/v2",
		HTTPTimeout: 5 * time.Second,
	}
	clock := quotes.WithClock(func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) })
	srv, err := New(DefaultConfig(settings, logging.Discard(), clock))
	require.NoError(t, err)
	return srv
}

// newStdioClient connects an MCP client to srv through in-memory pipes, the
// same JSON-RPC path a desktop client uses over stdin/stdout.
func newStdioClient(t *testing.T, srv *Server) *client.Client {
	t.Helper()

	serverIn, clientOut := io.Pipe()
	clientIn, serverOut := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio(ctx, serverIn, serverOut)
	}()

	stdioTransport := transport.NewIO(clientIn, clientOut, io.NopCloser(strings.NewReader("")))
	require.NoError(t, stdioTransport.Start(context.Background()))
	c := client.NewClient(stdioTransport)

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "marketstack-test", Version: "1.0.0"}
	initCtx, initCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer initCancel()
	initResult, err := c.Initialize(initCtx, initReq)
	require.NoError(t, err)
	require.Equal(t, ServerName, initResult.ServerInfo.Name)

	t.Cleanup(func() {
		c.Close()
		cancel()
		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
		}
	})
	return c
}

func callText(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	return result
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestStdio_ListTools(t *testing.T) {
	upstream := fakeMarketStack(t, nil, http.StatusOK)
	c := newStdioClient(t, newTestServer(t, upstream))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"getStockQuote", "getHistoricalData", "searchCompany"}, names)
}

func TestStdio_QuoteHistoryAndSearch(t *testing.T) {
	upstream := fakeMarketStack(t, map[string]string{
		"/eod/latest": `{"data":[{"symbol":"AAPL","open":148.0,"high":151.0,"low":147.5,"close":150.0,"volume":1000000,"date":"2024-01-10T00:00:00+0000"}]}`,
		"/eod": `{"data":[
			{"date":"2024-01-05T00:00:00+0000","open":1,"high":1,"low":1,"close":1,"volume":1},
			{"date":"2024-01-09T00:00:00+0000","open":4,"high":4,"low":4,"close":4,"volume":4000},
			{"date":"2024-01-08T00:00:00+0000","open":3,"high":3,"low":3,"close":3,"volume":3000},
			{"date":"2024-01-10T00:00:00+0000","open":5,"high":5,"low":5,"close":5,"volume":5000},
			{"date":"2024-01-07T00:00:00+0000","open":2,"high":2,"low":2,"close":2,"volume":2000}
		]}`,
		"/tickers": `{"data":[
			{"symbol":"AAPL","name":"Apple Inc","stock_exchange":{"acronym":"NASDAQ","name":"NASDAQ Stock Exchange","country":"USA"}},
			{"symbol":"APLE","name":"Apple Hospitality REIT","stock_exchange":{"acronym":"NYSE","name":"New York Stock Exchange","country":"USA"}}
		]}`,
	}, http.StatusOK)
	c := newStdioClient(t, newTestServer(t, upstream))

	quote := textOf(t, callText(t, c, "getStockQuote", map[string]any{"symbol": "AAPL"}))
	assert.Contains(t, quote, "Price: $150.00")
	assert.Contains(t, quote, "Change: 2.00 (1.35%)")
	assert.Contains(t, quote, "Volume: 1,000,000")

	history := textOf(t, callText(t, c, "getHistoricalData", map[string]any{"symbol": "AAPL", "days": 3}))
	rows := strings.Split(strings.TrimSuffix(history, "\n"), "\n")[4:]
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[0], "1/10/2024 | $5.00"))
	assert.True(t, strings.HasPrefix(rows[1], "1/9/2024 | $4.00"))
	assert.True(t, strings.HasPrefix(rows[2], "1/8/2024 | $3.00"))

	search := textOf(t, callText(t, c, "searchCompany", map[string]any{"query": "Apple"}))
	assert.Equal(t, 2, strings.Count(search, "------------------\n"))
	assert.Less(t, strings.Index(search, "Symbol: AAPL"), strings.Index(search, "Symbol: APLE"))
}

func TestStdio_EmptyResults(t *testing.T) {
	upstream := fakeMarketStack(t, map[string]string{
		"/eod/latest": `{"data":[]}`,
		"/eod":        `{"pagination":{"count":0}}`,
		"/tickers":    `{"data":null}`,
	}, http.StatusOK)
	c := newStdioClient(t, newTestServer(t, upstream))

	assert.Equal(t, "No stock data found for symbol AAPL",
		textOf(t, callText(t, c, "getStockQuote", map[string]any{"symbol": "AAPL"})))
	assert.Equal(t, "No historical data found for symbol AAPL in the specified date range.",
		textOf(t, callText(t, c, "getHistoricalData", map[string]any{"symbol": "AAPL"})))
	assert.Equal(t, `No companies found matching "Apple".`,
		textOf(t, callText(t, c, "searchCompany", map[string]any{"query": "Apple"})))
}

func TestStdio_UpstreamFailureIsInBand(t *testing.T) {
	upstream := fakeMarketStack(t, map[string]string{
		"/eod/latest": `{"error":{"code":"internal_error","message":"An internal error occurred."}}`,
		"/eod":        `{"error":{"code":"internal_error","message":"An internal error occurred."}}`,
		"/tickers":    `{"error":{"code":"internal_error","message":"An internal error occurred."}}`,
	}, http.StatusInternalServerError)
	c := newStdioClient(t, newTestServer(t, upstream))

	cases := map[string]struct {
		args   map[string]any
		prefix string
	}{
		"getStockQuote":     {map[string]any{"symbol": "AAPL"}, "Error fetching stockdata "},
		"getHistoricalData": {map[string]any{"symbol": "AAPL", "days": 2}, "Error fetching historical data: "},
		"searchCompany":     {map[string]any{"query": "Apple"}, "Error searching for companies: "},
	}
	for name, tc := range cases {
		result := callText(t, c, name, tc.args)
		assert.False(t, result.IsError, name)
		text := textOf(t, result)
		assert.True(t, strings.HasPrefix(text, tc.prefix), "%s: %s", name, text)
		assert.Contains(t, text, "An internal error occurred.")
		assert.NotContains(t, text, "test-key")
	}
}

func TestStreamableHTTP_ServesToolsAtEndpoint(t *testing.T) {
	upstream := fakeMarketStack(t, map[string]string{
		"/eod/latest": `{"data":[{"symbol":"AAPL","open":148.0,"high":151.0,"low":147.5,"close":150.0,"volume":1000000,"date":"2024-01-10"}]}`,
	}, http.StatusOK)
	ts := httptest.NewServer(newTestServer(t, upstream).Handler)
	t.Cleanup(ts.Close)

	c, err := client.NewStreamableHttpClient(ts.URL + EndpointPath)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "marketstack-test", Version: "1.0.0"}
	initResult, err := c.Initialize(ctx, initReq)
	require.NoError(t, err)
	assert.Equal(t, ServerName, initResult.ServerInfo.Name)

	quote := textOf(t, callText(t, c, "getStockQuote", map[string]any{"symbol": "AAPL"}))
	assert.Contains(t, quote, "Stock quote for AAPL:")
	assert.Contains(t, quote, "Volume: 1,000,000")
}

func TestStreamableHTTP_StatelessAndMountedAtEndpoint(t *testing.T) {
	upstream := fakeMarketStack(t, nil, http.StatusOK)
	ts := httptest.NewServer(newTestServer(t, upstream).Handler)
	t.Cleanup(ts.Close)

	initBody := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":%q,"capabilities":{},"clientInfo":{"name":"marketstack-test","version":"1.0.0"}}}`,
		mcp.LATEST_PROTOCOL_VERSION)
	post := func(path, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post(EndpointPath, initBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(server.HeaderKeySessionID))

	// Without a session id a stateful server would reject this call.
	resp = post(EndpointPath, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "getHistoricalData")

	resp = post("/", initBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCallTool_ValidatesArguments(t *testing.T) {
	upstream := fakeMarketStack(t, nil, http.StatusOK)
	srv := newTestServer(t, upstream)
	ctx := context.Background()

	result, err := srv.CallTool(ctx, "searchCompany", map[string]any{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "query")

	result, err = srv.CallTool(ctx, "getHistoricalData", map[string]any{"symbol": "AAPL", "days": 0})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "days")

	result, err = srv.CallTool(ctx, "getStockQuote", map[string]any{"symbol": 42})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	_, err = srv.CallTool(ctx, "getWeather", nil)
	require.Error(t, err)
}

func TestNew_RejectsUnknownAdapter(t *testing.T) {
	_, err := New(Config{
		ToolAdapters: map[string]ToolAdapter{"getWeather": nil},
		Logger:       logging.Discard(),
	})
	require.ErrorContains(t, err, "getWeather")
}

func TestToolCatalog_SortedWithSchemas(t *testing.T) {
	catalog := ToolCatalog()
	require.Len(t, catalog, 3)
	assert.Equal(t, "getHistoricalData", catalog[0].Name)
	assert.Equal(t, "getStockQuote", catalog[1].Name)
	assert.Equal(t, "searchCompany", catalog[2].Name)

	assert.Equal(t, []string{"symbol"}, catalog[0].InputSchema.Required)
	assert.Contains(t, catalog[0].InputSchema.Properties, "days")
	assert.Equal(t, []string{"query"}, catalog[2].InputSchema.Required)
}
