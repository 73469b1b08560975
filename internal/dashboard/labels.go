package dashboard

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	keyTitle       = "Price Prediction for IBM 📈"
	keySubtitle    = "Predictions for the next 60 minutes."
	keySubheading  = "Predictions"
	keyDateTime    = "Date and Time"
	keyPrice       = "Price ($)"
	keyTraceName   = "Prediction"
	keyChartTitle  = "IBM Prediction"
	keyUnavailable = "Prediction data is not available"
)

var spanish = map[string]string{
	keyTitle:       "Predicción de Cotización de IBM 📈",
	keySubtitle:    "Visualización de las predicciones para los próximos 60 minutos.",
	keySubheading:  "Predicciones",
	keyDateTime:    "Fecha y Hora",
	keyPrice:       "Precio ($)",
	keyTraceName:   "Predicción",
	keyChartTitle:  "Predicción de IBM",
	keyUnavailable: "Los datos de predicción no están disponibles",
}

var supported = []language.Tag{language.Spanish, language.English}

// Labels are the fixed, localized strings of one page.
type Labels struct {
	Lang        string
	Title       string
	Subtitle    string
	Subheading  string
	DateTime    string
	Price       string
	TraceName   string
	ChartTitle  string
	Unavailable string
}

// Localizer resolves a language and produces the labels for it.
type Localizer struct {
	catalog  catalog.Catalog
	matcher  language.Matcher
	fallback language.Tag
}

// NewLocalizer builds the message catalog. defaultLang is used when a
// request expresses no usable preference.
func NewLocalizer(defaultLang string) (*Localizer, error) {
	fallback, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range spanish {
		if err := b.SetString(language.Spanish, key, text); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", key, err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", key, err)
		}
	}

	matcher := language.NewMatcher(supported)
	_, idx, confidence := matcher.Match(fallback)
	if confidence == language.No {
		return nil, fmt.Errorf("unsupported default language %q", defaultLang)
	}

	return &Localizer{
		catalog:  b,
		matcher:  matcher,
		fallback: supported[idx],
	}, nil
}

// Resolve picks the page language: an explicit choice (e.g. ?lang=en)
// wins over the Accept-Language header, which wins over the default.
func (l *Localizer) Resolve(explicit, acceptLanguage string) language.Tag {
	for _, p := range []string{explicit, acceptLanguage} {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		if _, idx, confidence := l.matcher.Match(tags...); confidence != language.No {
			return supported[idx]
		}
	}
	return l.fallback
}

// Labels returns the page strings for tag.
func (l *Localizer) Labels(tag language.Tag) Labels {
	p := message.NewPrinter(tag, message.Catalog(l.catalog))
	base, _ := tag.Base()
	return Labels{
		Lang:        base.String(),
		Title:       p.Sprintf(keyTitle),
		Subtitle:    p.Sprintf(keySubtitle),
		Subheading:  p.Sprintf(keySubheading),
		DateTime:    p.Sprintf(keyDateTime),
		Price:       p.Sprintf(keyPrice),
		TraceName:   p.Sprintf(keyTraceName),
		ChartTitle:  p.Sprintf(keyChartTitle),
		Unavailable: p.Sprintf(keyUnavailable),
	}
}
