package ui

import (
	"github.com/ignite/subscribebox/internal/domain"
	"golang.org/x/text/language"
)

// Copy is the localized static text of the widget.
type Copy struct {
	Lang         string
	Title        string
	SubtitleLead string
	SubtitleTail string
	Placeholder  string
	Button       string
	Messages     domain.Messages
}

var catalog = map[string]Copy{
	"en": {
		Lang:         "en",
		Title:        "Don't miss our offers!",
		SubtitleLead: "Subscribe with your",
		SubtitleTail: "and get all our news and exclusive promotions.",
		Placeholder:  "Your email address",
		Button:       "Subscribe",
		Messages:     domain.EnglishMessages,
	},
	"es": {
		Lang:         "es",
		Title:        "¡No te pierdas nuestras ofertas!",
		SubtitleLead: "Suscríbete con tu",
		SubtitleTail: "y recibe todas nuestras novedades y promociones exclusivas.",
		Placeholder:  "Tu correo electrónico",
		Button:       "Suscribirse",
		Messages:     domain.SpanishMessages,
	},
}

// order matches the matcher's supported tags
var (
	codes   = []string{"en", "es"}
	matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})
)

// DefaultLocale is used when nothing else matches.
const DefaultLocale = "en"

// Supported reports whether code has a copy deck.
func Supported(code string) bool {
	_, ok := catalog[code]
	return ok
}

// CopyFor returns the copy deck for code, falling back to DefaultLocale.
func CopyFor(code string) Copy {
	if c, ok := catalog[code]; ok {
		return c
	}
	return catalog[DefaultLocale]
}

// MessagesFor returns the feedback catalog for code.
func MessagesFor(code string) domain.Messages {
	return CopyFor(code).Messages
}

// Negotiate picks a supported locale code.
func Negotiate(query, acceptLanguage, fallback string) string {
	if query != "" {
		if tag, err := language.Parse(query); err == nil {
			if code, ok := match(tag); ok {
				return code
			}
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if code, ok := match(tags...); ok {
				return code
			}
		}
	}
	if Supported(fallback) {
		return fallback
	}
	return DefaultLocale
}

func match(tags ...language.Tag) (string, bool) {
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return codes[idx], true
}
