// Package format renders amounts, dates and labels for a caller-supplied locale.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gperojohn83-art/Construction/internal/models"
)

// Tag maps a supported locale to its language tag. Unsupported locales
// fall back to English.
func Tag(locale models.Locale) language.Tag {
	switch locale {
	case models.LocaleGreek:
		return language.Greek
	case models.LocaleEnglish:
		return language.AmericanEnglish
	}
	return language.AmericanEnglish
}

// Currency formats amount in whole currency units using the grouping rules
// and narrow currency symbol of locale, e.g. "820.000 €" for Greek and
// "€820,000" for English.
func Currency(amount decimal.Decimal, locale models.Locale, unit currency.Unit) string {
	printer := message.NewPrinter(Tag(locale))
	whole := amount.Round(0)
	digits := printer.Sprintf("%d", whole.Abs().IntPart())
	symbol := printer.Sprint(currency.NarrowSymbol(unit))

	sign := ""
	if whole.IsNegative() {
		sign = "-"
	}
	if locale == models.LocaleGreek {
		return sign + digits + " " + symbol
	}
	return sign + symbol + digits
}
