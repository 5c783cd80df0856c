package validate

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avalon-data/langextract/types"
)

// recognizer matches extraction text against one type and, on success,
// returns the coerced value, its type name, and any extra attributes to
// attach (e.g. email's domain, url's scheme/host).
type recognizer struct {
	typeName string
	match    func(text string) (value interface{}, extra map[string]interface{}, ok bool)
}

var (
	// The symbol is required, unlike spec §4.6's literal pattern (which
	// makes it optional): a symbol-less bare number would otherwise match
	// currency before integer/float ever get a turn, since currency is
	// tried first. See DESIGN.md for this Open Question resolution.
	currencyRe = regexp.MustCompile(`^([\$€£])\s?(-?\d{1,3}(?:,\d{3})*(?:\.\d+)?)$`)
	percentageRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s?%$`)
	integerRe    = regexp.MustCompile(`^-?\d+$`)
	floatRe      = regexp.MustCompile(`^-?\d+\.\d+$`)
	booleanRe    = regexp.MustCompile(`(?i)^(true|false|yes|no|1|0)$`)
	emailRe      = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneRe      = regexp.MustCompile(`^\+?\(?\d{1,4}\)?[\s.-]?\d{2,4}[\s.-]?\d{2,4}[\s.-]?\d{0,4}$`)
	urlRe        = regexp.MustCompile(`(?i)^https?://`)
	nonDigitRe   = regexp.MustCompile(`\D`)

	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"January 2, 2006",
		"Jan 2, 2006",
		"01/02/2006",
	}
)

// recognizers is applied in order; first match wins, per §4.6.
var recognizers = []recognizer{
	{typeName: "currency", match: matchCurrency},
	{typeName: "percentage", match: matchPercentage},
	{typeName: "integer", match: matchInteger},
	{typeName: "float", match: matchFloat},
	{typeName: "boolean", match: matchBoolean},
	{typeName: "email", match: matchEmail},
	{typeName: "phone", match: matchPhone},
	{typeName: "url", match: matchURL},
	{typeName: "date", match: matchDate},
}

// coerceExtraction attempts each recognizer in order against e.Text; the
// first match attaches coerced_value/coerced_type (plus any type-specific
// attributes) to a copy of e.Attributes. e.Text itself is never modified.
func coerceExtraction(e types.Extraction) types.Extraction {
	text := strings.TrimSpace(e.Text)
	for _, r := range recognizers {
		value, extra, ok := r.match(text)
		if !ok {
			continue
		}
		attrs := cloneAttributes(e.Attributes)
		attrs["coerced_value"] = value
		attrs["coerced_type"] = r.typeName
		for k, v := range extra {
			attrs[k] = v
		}
		e.Attributes = attrs
		return e
	}
	return e
}

func cloneAttributes(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func matchCurrency(text string) (interface{}, map[string]interface{}, bool) {
	m := currencyRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, false
	}
	numeric := strings.ReplaceAll(m[2], ",", "")
	f, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return nil, nil, false
	}
	var extra map[string]interface{}
	switch m[1] {
	case "$":
		extra = map[string]interface{}{"currency": "USD"}
	case "€":
		extra = map[string]interface{}{"currency": "EUR"}
	case "£":
		extra = map[string]interface{}{"currency": "GBP"}
	}
	return f, extra, true
}

func matchPercentage(text string) (interface{}, map[string]interface{}, bool) {
	m := percentageRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, nil, false
	}
	return f / 100, nil, true
}

func matchInteger(text string) (interface{}, map[string]interface{}, bool) {
	if !integerRe.MatchString(text) {
		return nil, nil, false
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, nil, false
	}
	return n, nil, true
}

func matchFloat(text string) (interface{}, map[string]interface{}, bool) {
	if !floatRe.MatchString(text) {
		return nil, nil, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, nil, false
	}
	return f, nil, true
}

func matchBoolean(text string) (interface{}, map[string]interface{}, bool) {
	if !booleanRe.MatchString(text) {
		return nil, nil, false
	}
	switch strings.ToLower(text) {
	case "true", "yes", "1":
		return true, nil, true
	default:
		return false, nil, true
	}
}

func matchEmail(text string) (interface{}, map[string]interface{}, bool) {
	if !emailRe.MatchString(text) {
		return nil, nil, false
	}
	parts := strings.SplitN(text, "@", 2)
	domain := ""
	if len(parts) == 2 {
		domain = parts[1]
	}
	return text, map[string]interface{}{"domain": domain}, true
}

func matchPhone(text string) (interface{}, map[string]interface{}, bool) {
	if !phoneRe.MatchString(text) {
		return nil, nil, false
	}
	digitsOnly := nonDigitRe.ReplaceAllString(text, "")
	if len(digitsOnly) < 7 {
		return nil, nil, false
	}
	return digitsOnly, nil, true
}

func matchURL(text string) (interface{}, map[string]interface{}, bool) {
	if !urlRe.MatchString(text) {
		return nil, nil, false
	}
	u, err := url.Parse(text)
	if err != nil {
		return nil, nil, false
	}
	return text, map[string]interface{}{"scheme": u.Scheme, "host": u.Host}, true
}

func matchDate(text string) (interface{}, map[string]interface{}, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02"), nil, true
		}
	}
	return nil, nil, false
}
