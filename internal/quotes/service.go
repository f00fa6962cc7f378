// Package quotes maps MarketStack lookups into the text reports served by the
// getStockQuote, getHistoricalData and searchCompany tools.
package quotes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/roivaz/marketstack-mcp/internal/logging"
	"github.com/roivaz/marketstack-mcp/internal/marketstack"
)

const (
	DefaultHistoryDays = 7
	SearchLimit        = 5
)

// Provider is the upstream market-data API.
type Provider interface {
	LatestEOD(ctx context.Context, symbol string) ([]marketstack.EODBar, error)
	EOD(ctx context.Context, q marketstack.EODQuery) ([]marketstack.EODBar, error)
	SearchTickers(ctx context.Context, search string, limit int) ([]marketstack.Ticker, error)
}

// Service is stateless apart from its read-only provider and clock, so one
// instance serves concurrent tool calls.
type Service struct {
	provider Provider
	now      func() time.Time
	log      logging.Logger
}

type Option func(*Service)

// WithClock overrides the source of "today" for the historical range.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(provider Provider, log logging.Logger, opts ...Option) *Service {
	s := &Service{provider: provider, now: time.Now, log: log.WithName("quotes")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote reports the latest end-of-day record for symbol. An empty upstream
// result is reported in the text, not as an error.
func (s *Service) Quote(ctx context.Context, symbol string) (string, error) {
	bars, err := s.provider.LatestEOD(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("latest eod for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		s.log.Debug("no quote data", "symbol", symbol)
		return noQuoteText(symbol), nil
	}
	return FormatQuote(symbol, toStockRecord(bars[0])), nil
}

// History reports up to days records from [today-days, today], newest first.
// Records beyond the first days after sorting are dropped even when they fall
// inside the range.
func (s *Service) History(ctx context.Context, symbol string, days int) (string, error) {
	if days < 1 {
		days = DefaultHistoryDays
	}
	to := calendarDay(s.now())
	from := to.AddDate(0, 0, -days)

	bars, err := s.provider.EOD(ctx, marketstack.EODQuery{
		Symbol: symbol,
		From:   from,
		To:     to,
		Limit:  marketstack.HistoryPageLimit,
	})
	if err != nil {
		return "", fmt.Errorf("eod range for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		s.log.Debug("no historical data", "symbol", symbol, "from", from, "to", to)
		return noHistoryText(symbol), nil
	}

	records := make([]StockRecord, 0, len(bars))
	for _, bar := range bars {
		records = append(records, toStockRecord(bar))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	if len(records) > days {
		s.log.Debug("truncating history", "symbol", symbol, "returned", len(records), "kept", days)
		records = records[:days]
	}
	return FormatHistory(symbol, days, records), nil
}

// SearchCompanies reports up to SearchLimit tickers matching query, in the
// order the provider returned them.
func (s *Service) SearchCompanies(ctx context.Context, query string) (string, error) {
	tickers, err := s.provider.SearchTickers(ctx, query, SearchLimit)
	if err != nil {
		return "", fmt.Errorf("search tickers %q: %w", query, err)
	}
	if len(tickers) == 0 {
		return noCompaniesText(query), nil
	}

	companies := make([]CompanyRecord, 0, len(tickers))
	for _, t := range tickers {
		companies = append(companies, toCompanyRecord(t))
	}
	return FormatCompanies(query, companies), nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
