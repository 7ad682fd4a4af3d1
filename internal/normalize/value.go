// Package normalize parses and cleans raw cell values from bank exports.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDate reads a date from a raw cell. time.Time values are accepted as
// they are. Text is read as ISO "YYYY-MM-DD" when it contains a dash, or as
// day-month-year "DD/MM/YYYY" when it contains a slash; a time of day after
// the first space, or after "T" in ISO text, is ignored. The result is
// midnight UTC.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(v), true
	}

	s := strings.TrimSpace(CellText(raw))
	if strings.Contains(s, "-") {
		iso, _, _ := strings.Cut(firstWord(s), "T")
		if d, err := time.Parse("2006-01-02", iso); err == nil {
			return d, true
		}
	}
	if strings.Contains(s, "/") {
		if d, ok := parseDayMonthYear(firstWord(s)); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseDayMonthYear(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return time.Time{}, false
		}
		n[i] = v
	}
	day, month, year := n[0], n[1], n[2]
	if len(parts[2]) <= 2 {
		year += 2000
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 -> 02/03); reject instead.
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	currencySymbols = strings.NewReplacer("€", "", "$", "", "£", "")
	leadingNumber   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)
)

// ParseMoney reads a signed amount from a raw cell. Numeric cells pass
// through. Text may use either "1500.00" or the Italian "1.500,00"; a lone
// comma is a decimal comma. Unparseable input yields zero.
func ParseMoney(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}

	s := strings.TrimSpace(currencySymbols.Replace(CellText(raw)))
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}
	s = strings.ReplaceAll(s, " ", "")

	num := strings.TrimPrefix(leadingNumber.FindString(s), "+")
	if num == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CellText renders a raw cell as text.
func CellText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}
