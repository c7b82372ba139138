package lang

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout is the default layout used to parse and format dates. It is
// the day-month-year form used by the record files ("dd-MM-yyyy").
const DateLayout = "02-01-2006"

// Format is the stringification policy used by interpolation, the string
// builtin, and sink writes.
//
// With the zero Locale (language.Und), numbers are formatted with strconv
// and dates with [time.Time.Format]; the output never depends on the
// process environment. A non-zero Locale formats numbers with
// golang.org/x/text and month and day names with goodsign/monday.
type Format struct {
	Locale     language.Tag
	DateLayout string // Layout for time.Time values; empty means DateLayout
	Precision  int    // Fraction digits for floats; zero or negative means shortest
}

// DefaultFormat returns the locale-independent policy.
func DefaultFormat() Format {
	return Format{Locale: language.Und, DateLayout: DateLayout}
}

// String converts v to its canonical string representation. nil and
// [Undefined] become the empty string.
func (f Format) String(v any) string {
	switch x := v.(type) {
	case nil, undefined:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return f.integer(x)
	case float64:
		return f.float(x)
	case time.Time:
		return f.date(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(normalize(v))
	}
}

func (f Format) localized() bool { return f.Locale != language.Und }

func (f Format) integer(n int64) string {
	if !f.localized() {
		return strconv.FormatInt(n, 10)
	}

	return message.NewPrinter(f.Locale).Sprintf("%v", number.Decimal(n))
}

func (f Format) float(n float64) string {
	if !f.localized() {
		prec := -1
		if f.Precision > 0 {
			prec = f.Precision
		}

		return strconv.FormatFloat(n, 'f', prec, 64)
	}

	opts := []number.Option{}
	if f.Precision > 0 {
		opts = append(opts,
			number.MinFractionDigits(f.Precision),
			number.MaxFractionDigits(f.Precision),
		)
	}

	return message.NewPrinter(f.Locale).Sprintf("%v", number.Decimal(n, opts...))
}

func (f Format) date(t time.Time) string {
	layout := f.DateLayout
	if layout == "" {
		layout = DateLayout
	}

	if !f.localized() {
		return t.Format(layout)
	}

	return monday.Format(t, layout, mondayLocale(f.Locale))
}

// mondayLocale maps a language tag to the closest locale known to monday,
// falling back to en_US.
func mondayLocale(tag language.Tag) monday.Locale {
	base, _ := tag.Base()
	region, _ := tag.Region()

	exact := base.String() + "_" + region.String()

	var partial monday.Locale

	for _, loc := range monday.ListLocales() {
		s := string(loc)
		if strings.EqualFold(s, exact) {
			return loc
		}

		if strings.HasPrefix(s, base.String()+"_") && (partial == "" || loc < partial) {
			partial = loc
		}
	}

	if partial != "" {
		return partial
	}

	return monday.LocaleEnUS
}

// ParseDate parses s using layout, or [DateLayout] if layout is empty.
func ParseDate(s, layout string) (time.Time, error) {
	if layout == "" {
		layout = DateLayout
	}

	return time.Parse(layout, strings.TrimSpace(s))
}
