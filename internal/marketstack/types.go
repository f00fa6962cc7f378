package marketstack

import (
	"bytes"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day as reported by MarketStack. The API sends either a
// bare day or a midnight timestamp such as 2024-01-10T00:00:00+0000; only
// the day portion is kept.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	if len(s) < len(dateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	t, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// EODBar is one end-of-day record from the /eod and /eod/latest endpoints.
type EODBar struct {
	Symbol   string  `json:"symbol"`
	Exchange string  `json:"exchange"`
	Date     Date    `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// Exchange describes the venue a ticker is listed on.
type Exchange struct {
	Name        string `json:"name"`
	Acronym     string `json:"acronym"`
	MIC         string `json:"mic"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
}

// Ticker is one entry returned by the /tickers search endpoint.
type Ticker struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	StockExchange Exchange `json:"stock_exchange"`
}

// EODQuery selects a date range of end-of-day bars for one symbol.
type EODQuery struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}
