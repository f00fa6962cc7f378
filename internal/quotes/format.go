package quotes

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	displayDateLayout = "1/2/2006"
	historyHeader     = "Date | Open | High | Low | Close | Volume\n"
	historySeparator  = "---- | ---- | ---- | --- | ----- | ------\n"
	companySeparator  = "------------------\n"
)

func noQuoteText(symbol string) string {
	return fmt.Sprintf("No stock data found for symbol %s", symbol)
}

func noHistoryText(symbol string) string {
	return fmt.Sprintf("No historical data found for symbol %s in the specified date range.", symbol)
}

func noCompaniesText(query string) string {
	return fmt.Sprintf("No companies found matching \"%s\".", query)
}

// FormatQuote renders the latest end-of-day record as a short report.
func FormatQuote(symbol string, r StockRecord) string {
	change := r.Close - r.Open
	lines := []string{
		fmt.Sprintf("Stock quote for %s:", symbol),
		"Price: " + price(r.Close),
		fmt.Sprintf("Change: %.2f (%s)", change, PercentChange(r.Open, r.Close)),
		"Volume: " + humanize.Comma(r.Volume),
		"High: " + price(r.High),
		"Low: " + price(r.Low),
		"Date: " + displayDate(r.Date),
	}
	return strings.Join(lines, "\n")
}

// FormatHistory renders records, already ordered, as a pipe-separated table.
func FormatHistory(symbol string, days int, records []StockRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Historical data for %s (last %d days):\n\n", symbol, days)
	b.WriteString(historyHeader)
	b.WriteString(historySeparator)
	for _, r := range records {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s\n",
			displayDate(r.Date), price(r.Open), price(r.High), price(r.Low), price(r.Close), humanize.Comma(r.Volume))
	}
	return b.String()
}

// FormatCompanies renders one block per match in the given order.
func FormatCompanies(query string, companies []CompanyRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Companies matching \"%s\":\n\n", query)
	for _, c := range companies {
		fmt.Fprintf(&b, "Symbol: %s\n", c.Symbol)
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
		fmt.Fprintf(&b, "Exchange: %s (%s)\n", orNA(c.ExchangeAcronym), orNA(c.ExchangeName))
		fmt.Fprintf(&b, "Country: %s\n", orNA(c.Country))
		b.WriteString(companySeparator)
	}
	return b.String()
}

// PercentChange returns (close-open)/open*100 with two decimals and a percent
// sign, or N/A when open is zero or the ratio is not finite.
func PercentChange(open, close float64) string {
	if open == 0 {
		return "N/A"
	}
	pct := (close - open) / open * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// orNA marks fields the provider left empty, e.g. a ticker whose
// stock_exchange is null.
func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func displayDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(displayDateLayout)
}
