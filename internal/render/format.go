// Package render draws search results for a terminal.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// UnknownTitle replaces a missing result title.
	UnknownTitle = "Unknown Rug"

	// EmptyState is shown when no search has produced results.
	EmptyState = "No results yet, run a search above"

	// LoadingHeader is shown while a search is in flight.
	LoadingHeader = "Finding matches…"

	notAvailable = "n/a"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders a price in rupees with English digit grouping.
func FormatPrice(price *float64) string {
	if price == nil {
		return "₹ " + notAvailable
	}
	return printer.Sprintf("₹ %v", number.Decimal(*price, number.MaxFractionDigits(2)))
}

// FormatScore renders a similarity score with three decimals.
func FormatScore(score *float64) string {
	if score == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.3f", *score)
}

// FormatTitle falls back to UnknownTitle for blank titles.
func FormatTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return UnknownTitle
	}
	return title
}

// ResultsHeader is the count line above the results.
func ResultsHeader(n int, loading bool) string {
	if loading {
		return LoadingHeader
	}
	return fmt.Sprintf("%d results", n)
}
