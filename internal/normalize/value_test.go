package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  any
		want time.Time
	}{
		{"2024-12-20", date(2024, 12, 20)},
		{"2024-12-20 11:02:41", date(2024, 12, 20)},
		{"2024-12-20T11:02:41", date(2024, 12, 20)},
		{"2024-12-20T00:00:00Z", date(2024, 12, 20)},
		{"  2024-01-05  ", date(2024, 1, 5)},
		{"20/12/2024", date(2024, 12, 20)},
		{"05/01/2024 09:30", date(2024, 1, 5)},
		{"5/1/24", date(2024, 1, 5)},
		{time.Date(2024, 12, 20, 18, 45, 0, 0, time.UTC), date(2024, 12, 20)},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		require.True(t, ok, "ParseDate(%v)", tt.raw)
		assert.Equal(t, tt.want, got, "ParseDate(%v)", tt.raw)
	}
}

func TestParseDate_SeparatorStylesAgree(t *testing.T) {
	iso, ok := ParseDate("2024-02-29")
	require.True(t, ok)
	dmy, ok := ParseDate("29/02/2024")
	require.True(t, ok)
	assert.Equal(t, iso, dmy)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, raw := range []any{
		nil,
		"",
		"20241220",
		"yesterday",
		"2024-13-01",
		"2024-02-30",
		"2024-02-30T10:00:00",
		"31/02/2024",
		"12/2024",
		"aa/bb/cccc",
		"20-12-2024",
		time.Time{},
	} {
		_, ok := ParseDate(raw)
		assert.False(t, ok, "ParseDate(%v) should fail", raw)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{"1.500,00", "1500"},
		{"1500.00", "1500"},
		{"€ 40,00", "40"},
		{"-3.50", "-3.5"},
		{"-12,5", "-12.5"},
		{"$ 7.25", "7.25"},
		{"  +100  ", "100"},
		{"- 3,50 €", "-3.5"},
		{-42.75, "-42.75"},
		{10, "10"},
		{decimal.RequireFromString("9.99"), "9.99"},
	}
	for _, tt := range tests {
		got := ParseMoney(tt.raw)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "ParseMoney(%v) = %s, want %s", tt.raw, got, tt.want)
	}
}

func TestParseMoney_FormsAgree(t *testing.T) {
	assert.True(t, ParseMoney("1.500,00").Equal(ParseMoney("1500.00")))
}

func TestParseMoney_UnparseableIsZero(t *testing.T) {
	for _, raw := range []any{nil, "", "abc", "€", "-", "n/a"} {
		assert.True(t, ParseMoney(raw).IsZero(), "ParseMoney(%v)", raw)
	}
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "abc", CellText("abc"))
	assert.Equal(t, "-3.5", CellText(-3.5))
	assert.Equal(t, "2024-12-20 11:02:41", CellText(time.Date(2024, 12, 20, 11, 2, 41, 0, time.UTC)))
}
