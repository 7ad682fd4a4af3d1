package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCSVSource_CommaDelimited(t *testing.T) {
	rows, err := (&CSVSource{}).Rows(strings.NewReader("a,b,c\n\n1,\"2,5\",3\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"1", "2,5", "3"}, rows[1])
}

func TestCSVSource_SemicolonDelimited(t *testing.T) {
	data := "\xef\xbb\xbfData;Dettagli;Importo\n02/01/2025;COOP;-1.234,56\n;;\n"
	rows, err := (&CSVSource{}).Rows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"Data", "Dettagli", "Importo"}, rows[0])
	assert.Equal(t, Row{"02/01/2025", "COOP", "-1.234,56"}, rows[1])
}

func TestCSVSource_RaggedRows(t *testing.T) {
	rows, err := (&CSVSource{}).Rows(strings.NewReader("title\na,b,c\n1,2\n"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[2], 2)
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"a,b,c", ','},
		{"a;b;c", ';'},
		{"a\tb\tc", '\t'},
		{"a|b|c", '|'},
		{"\n\n\"x;y\",b,c", ','},
		{"single", ','},
		{"Estratto conto\nData;Dettagli;Importo\n02/01/2025;COOP;-10,00\n03/01/2025;BAR;-2,50", ';'},
		{"Export, generated 2025\nDate\tDescription\tAmount\n2025-01-02\tCOOP\t-10.00", '\t'},
		{"", ','},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sniffDelimiter([]byte(tt.in)), "sniffDelimiter(%q)", tt.in)
	}
}

func TestXLSXSource_NativeCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Data", "Dettagli", "Categoria", "Importo"}))
	require.NoError(t, f.SetCellValue(sheet, "A2", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B2", "COOP"))
	require.NoError(t, f.SetCellValue(sheet, "C2", "ALIMENTARI"))
	require.NoError(t, f.SetCellValue(sheet, "D2", -1234.56))
	require.NoError(t, f.SetCellValue(sheet, "A3", "03/01/2025"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Stipendio"))
	require.NoError(t, f.SetCellValue(sheet, "D3", "2.500,00"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := (&XLSXSource{}).Rows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	d, ok := rows[1][0].(time.Time)
	require.True(t, ok, "expected time.Time, got %T", rows[1][0])
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 2, d.Day())
	assert.Equal(t, -1234.56, rows[1][3])
	assert.Equal(t, "03/01/2025", rows[2][0])

	res, err := newTestImporter().ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "2025-01-02", res.Transactions[0].DateString())
	assert.Equal(t, "Alimentari", res.Transactions[0].BankCategory)
	assert.True(t, res.Transactions[1].Amount.Equal(dec("2500")))
}

func TestParseFile_TitleLineAboveHeader(t *testing.T) {
	data := "Estratto conto\nData;Dettagli;Importo\n02/01/2025;COOP;-10,00\n03/01/2025;BAR;-2,50\n"
	res, err := newTestImporter().ParseFile("intesa.csv", strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Intesa Sanpaolo", res.Bank)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "-10.00", res.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "BAR", res.Transactions[1].Description)
}

func TestXLSRows_RenderedDates(t *testing.T) {
	rows := xlsRows([][]string{
		{"Data", "Dettagli", "Importo"},
		{"", "", ""},
		{"2024-12-20T00:00:00Z", "COOP", "-10.5"},
		{"21/12/2024", "BAR", "-2.5"},
	})
	require.Len(t, rows, 3)

	d, ok := rows[1][0].(time.Time)
	require.True(t, ok, "expected time.Time, got %T", rows[1][0])
	assert.Equal(t, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "21/12/2024", rows[2][0])

	res, err := newTestImporter().ParseRows(rows)
	require.NoError(t, err)
	assert.Equal(t, "Intesa Sanpaolo", res.Bank)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "2024-12-20", res.Transactions[0].DateString())
	assert.Equal(t, "-10.50", res.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "2024-12-21", res.Transactions[1].DateString())
}

func TestXLSXSource_NotAWorkbook(t *testing.T) {
	_, err := (&XLSXSource{}).Rows(strings.NewReader("a,b,c"))
	assert.Error(t, err)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("dd/mm/yyyy"))
	assert.True(t, isDateFormatCode("yyyy-mm-dd hh:mm"))
	assert.False(t, isDateFormatCode("#,##0.00"))
	assert.False(t, isDateFormatCode("[Red]#,##0.00"))
	assert.False(t, isDateFormatCode(`#,##0.00 [$€-410];"debit" 0.00`))
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get(".pdf"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get(".CSV"))
	assert.NotNil(t, r.Get(".Xlsx"))
	assert.NotNil(t, r.Get(".xls"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVSource{})
	assert.Panics(t, func() { r.Register(&CSVSource{}) })
}
