package format

import (
	"fmt"
	"time"

	"github.com/gperojohn83-art/Construction/internal/models"
)

type DateStyle int

const (
	// DateShort renders dd/MM/yyyy.
	DateShort DateStyle = iota
	// DateMonthYear renders an abbreviated month and a two-digit year, e.g. "Mar '25".
	DateMonthYear
)

var monthAbbrev = map[models.Locale][12]string{
	models.LocaleEnglish: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	models.LocaleGreek:   {"Ιαν", "Φεβ", "Μαρ", "Απρ", "Μαΐ", "Ιουν", "Ιουλ", "Αυγ", "Σεπ", "Οκτ", "Νοε", "Δεκ"},
}

// Date formats t in its own location.
func Date(t time.Time, style DateStyle, locale models.Locale) string {
	switch style {
	case DateMonthYear:
		months, ok := monthAbbrev[locale]
		if !ok {
			months = monthAbbrev[models.LocaleEnglish]
		}
		return fmt.Sprintf("%s '%02d", months[t.Month()-1], t.Year()%100)
	default:
		return t.Format("02/01/2006")
	}
}
