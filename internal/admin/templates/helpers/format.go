package helpers

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money formats amount with two decimals, dot grouping and a comma decimal
// separator, prefixed by the currency symbol ("colones", "dolares" or an ISO code).
func Money(amount decimal.Decimal, currency string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + currencySymbol(currency) + groupThousands(whole) + "," + frac
}

// Colones formats amount in Costa Rican colones.
func Colones(amount decimal.Decimal) string {
	return Money(amount, "colones")
}

// Percent formats a percentage without trailing zeros.
func Percent(value decimal.Decimal) string {
	return strings.Replace(value.Round(2).String(), ".", ",", 1) + " %"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func currencySymbol(code string) string {
	switch strings.ToLower(code) {
	case "colones", "crc":
		return "₡"
	case "dolares", "usd":
		return "$"
	case "eur":
		return "€"
	case "":
		return ""
	default:
		return strings.ToUpper(code) + " "
	}
}

// Date formats the timestamp in the provided layout (defaults to 02/01/2006 15:04).
func Date(ts time.Time, layout string) string {
	if ts.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = "02/01/2006 15:04"
	}
	return ts.In(time.Local).Format(layout)
}

// Relative returns a coarse Spanish "time ago" string measured from now.
func Relative(ts, now time.Time) string {
	if ts.IsZero() {
		return "nunca"
	}
	diff := now.Sub(ts)
	switch {
	case diff < time.Minute:
		return "hace un momento"
	case diff < time.Hour:
		return fmt.Sprintf("hace %d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("hace %d h", int(diff.Hours()))
	default:
		return ts.Format("02/01/2006")
	}
}

// NavClass returns sidebar link classes.
func NavClass(active bool) string {
	if active {
		return "nav-link nav-link--active"
	}
	return "nav-link"
}

// BadgeClass maps semantic tones to badge classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success", "warning", "danger", "info":
		return "badge badge--" + tone
	default:
		return "badge"
	}
}

// SetRawQuery sets key=value in rawQuery, replacing any previous values.
func SetRawQuery(rawQuery, key, value string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	values.Set(key, value)
	return values.Encode()
}

// DelRawQuery removes key from rawQuery.
func DelRawQuery(rawQuery, key string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	values.Del(key)
	return values.Encode()
}

// BuildURL replaces the query of path with rawQuery. An empty rawQuery drops
// the query entirely.
func BuildURL(path, rawQuery string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// FuncMap exposes the helpers to html/template views.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":        Money,
		"colones":      Colones,
		"percent":      Percent,
		"date":         Date,
		"navClass":     NavClass,
		"badge":        BadgeClass,
		"buildURL":     BuildURL,
		"setQuery":     SetRawQuery,
		"delQuery":     DelRawQuery,
		"highlight":    HighlightSegments,
		"field":        NewField,
		"decimalField": NewDecimalField,
	}
}
