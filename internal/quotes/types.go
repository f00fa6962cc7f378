package quotes

import (
	"math"
	"time"

	"github.com/roivaz/marketstack-mcp/internal/marketstack"
)

// StockRecord is one trading day's prices for a symbol.
type StockRecord struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// CompanyRecord is one ticker search match.
type CompanyRecord struct {
	Symbol          string
	Name            string
	ExchangeAcronym string
	ExchangeName    string
	Country         string
}

func toStockRecord(bar marketstack.EODBar) StockRecord {
	return StockRecord{
		Date:   bar.Date.Time,
		Open:   bar.Open,
		High:   bar.High,
		Low:    bar.Low,
		Close:  bar.Close,
		Volume: int64(math.Round(bar.Volume)),
	}
}

func toCompanyRecord(t marketstack.Ticker) CompanyRecord {
	return CompanyRecord{
		Symbol:          t.Symbol,
		Name:            t.Name,
		ExchangeAcronym: t.StockExchange.Acronym,
		ExchangeName:    t.StockExchange.Name,
		Country:         t.StockExchange.Country,
	}
}
