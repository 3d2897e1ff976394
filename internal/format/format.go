// Package format renders amounts, dates and periods the way French rental
// documents expect them ("1 234,56 €", "02/01/2024", "janvier 2024").
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var french = message.NewPrinter(language.French)

// Euros formats an amount with locale-correct separators and a trailing symbol.
func Euros(amount float64) string {
	return french.Sprintf("%.2f €", amount)
}

// Date formats a date as DD/MM/YYYY with leading zeros.
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

var monthNames = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthYear formats a rent period as a full French month name plus year.
// An out-of-range month falls back to "MM/YYYY" rather than panicking.
func MonthYear(month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}
