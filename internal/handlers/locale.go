package handlers

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/gperojohn83-art/Construction/internal/models"
)

var (
	supportedLocales = []models.Locale{models.LocaleEnglish, models.LocaleGreek}
	localeMatcher    = language.NewMatcher([]language.Tag{language.English, language.Greek})
)

// requestLocale picks the display locale from ?locale=, then
// Accept-Language, then the configured default.
func (h HandlerSet) requestLocale(c *gin.Context) models.Locale {
	if q := models.Locale(c.Query("locale")); q != "" {
		for _, l := range supportedLocales {
			if q == l {
				return q
			}
		}
	}

	header := c.GetHeader("Accept-Language")
	if header == "" {
		return h.Locale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return h.Locale
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return h.Locale
	}
	return supportedLocales[index]
}
