package normalizer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/domain"
)

func decodeOne(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	values, err := decodeDocuments(raw)
	require.NoError(t, err)
	require.Len(t, values, 1)
	obj, ok := values[0].(map[string]interface{})
	require.True(t, ok)
	return obj
}

func TestParseLocaleDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string // empty means nil
	}{
		{"12.50", "12.50"},
		{"2.980,07", "2980.07"},
		{"2,980.07", "2980.07"},
		{"2,880", "2.880"},
		{"0,640", "0.640"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"2 980,07", "2980.07"},
		{"€ 1.234,56", "1234.56"},
		{"-12,5 EUR", "-12.5"},
		{"340 kg", "340"},
		{"2,880 m3", "2.880"},
		{"15/11", ""},
		{"abc", ""},
		{"", ""},
		{"12 y 13", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLocaleDecimal(tt.in)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.StringFixed(-got.Exponent()))
		})
	}
}

func TestCoerceInvoice_SpanishKeys(t *testing.T) {
	obj := decodeOne(t, `{
		"numeroFactura": "F43289956",
		"fecha": "29/11/2024",
		"cliente": 375986,
		"importeTotal": 2980.07,
		"moneda": "eur",
		"expediciones": [
			{"expedicion": "43/4262436/4", "fecha": "15/11/2024", "remitente": null, "destinatario": "JISO ILUMINACION, S.", "bultos": 2, "peso": 340, "volumen": 2.880},
			{"expedicion": "43/4280450/4", "fecha": "15/11/2024", "destinatario": "LUPA 192", "bultos": "1", "peso": "100", "volumen": "0,640"}
		]
	}`)

	rec := coerceInvoice(obj)

	assert.Equal(t, "F43289956", *rec.InvoiceNumber)
	assert.Equal(t, "29/11/2024", *rec.Date)
	assert.Equal(t, "375986", *rec.ClientCode)
	assert.Equal(t, "2980.07", rec.TotalAmount.String())
	assert.Equal(t, "EUR", *rec.Currency)
	require.Len(t, rec.Shipments, 2)

	first := rec.Shipments[0]
	assert.Equal(t, "43/4262436/4", *first.ShipmentID)
	assert.Nil(t, first.Sender)
	assert.Equal(t, "JISO ILUMINACION, S.", *first.Recipient)
	assert.Equal(t, int64(2), *first.PackageCount)
	assert.Equal(t, "340", first.Weight.String())
	assert.Equal(t, "2.880", first.Volume.StringFixed(3))

	second := rec.Shipments[1]
	assert.Equal(t, int64(1), *second.PackageCount)
	assert.Equal(t, "100", second.Weight.String())
	assert.Equal(t, "0.64", second.Volume.String())
}

func TestCoerceInvoice_EnglishAliases(t *testing.T) {
	obj := decodeOne(t, `{"invoiceNumber":"INV-7","date":"01/02/2025","clientCode":"C9","totalAmount":"-15.00","currency":"USD",
		"shipments":[{"shipmentId":"S1","sender":"ACME","recipient":"Bob","packageCount":3,"weight":1.5,"volume":0.2}]}`)

	rec := coerceInvoice(obj)

	assert.Equal(t, "INV-7", *rec.InvoiceNumber)
	assert.Equal(t, "-15.00", rec.TotalAmount.StringFixed(2))
	require.Len(t, rec.Shipments, 1)
	assert.Equal(t, "ACME", *rec.Shipments[0].Sender)
	assert.Equal(t, "Bob", *rec.Shipments[0].Recipient)
}

func TestCoerceInvoice_MismatchesBecomeNull(t *testing.T) {
	obj := decodeOne(t, `{
		"numeroFactura": {"value": "F1"},
		"fecha": "2024-11-29",
		"cliente": true,
		"importeTotal": "unknown",
		"moneda": "  ",
		"expediciones": [
			{"expedicion": ["x"], "fecha": "15/11", "bultos": 2.5, "peso": -3, "volumen": "n/a"},
			"not a row",
			{"bultos": -1, "peso": "31/02/2024", "fecha": "31/02/2024"},
			{"bultos": 18446744073709551617},
			{"bultos": "9.223.372.036.854.775.809"},
			{"bultos": 1e99999999, "peso": 1e99999999, "volumen": 1e-99999999},
			{"peso": "12345678901234567890123456789012345678901234567890"}
		]
	}`)

	rec := coerceInvoice(obj)

	assert.Nil(t, rec.InvoiceNumber)
	assert.Nil(t, rec.Date)
	assert.Nil(t, rec.ClientCode)
	assert.Nil(t, rec.TotalAmount)
	assert.Nil(t, rec.Currency)
	require.Len(t, rec.Shipments, 6)
	for _, s := range rec.Shipments {
		assert.Nil(t, s.ShipmentID)
		assert.Nil(t, s.Date)
		assert.Nil(t, s.PackageCount)
		assert.Nil(t, s.Weight)
		assert.Nil(t, s.Volume)
	}
}

func TestCoerceInvoice_HugeTotalBecomesNull(t *testing.T) {
	for _, raw := range []string{
		`{"importeTotal": 1e99999999}`,
		`{"importeTotal": -1e-99999999}`,
		`{"importeTotal": "1e99999999"}`,
	} {
		rec := coerceInvoice(decodeOne(t, raw))
		assert.Nil(t, rec.TotalAmount, raw)
	}
}

func TestCoerceCount_Bounds(t *testing.T) {
	n := coerceCount(json.Number("9223372036854775807"))
	require.NotNil(t, n)
	assert.Equal(t, int64(9223372036854775807), *n)
	assert.Nil(t, coerceCount(json.Number("9223372036854775808")))
	assert.Nil(t, coerceCount("9.223.372.036.854.775.808"))
}

func TestCoerceInvoice_ShipmentsNotArray(t *testing.T) {
	rec := coerceInvoice(decodeOne(t, `{"expediciones": {"expedicion": "43/1"}}`))
	assert.NotNil(t, rec.Shipments)
	assert.Empty(t, rec.Shipments)
}

func TestCoerceInvoice_NoRowCap(t *testing.T) {
	rows := make([]string, 500)
	for i := range rows {
		rows[i] = `{"expedicion":"x"}`
	}
	rec := coerceInvoice(decodeOne(t, `{"expediciones":[`+strings.Join(rows, ",")+`]}`))
	assert.Len(t, rec.Shipments, 500)
}

func TestCoerceDate_PadsAndValidates(t *testing.T) {
	assert.Equal(t, "01/02/2024", *coerceDate("1/2/2024"))
	assert.Equal(t, "29/02/2024", *coerceDate("29/02/2024"))
	assert.Nil(t, coerceDate("29/02/2023"))
	assert.Nil(t, coerceDate("2024/02/01"))
	assert.Nil(t, coerceDate(json.Number("20241129")))
}

func TestCoerceCurrency(t *testing.T) {
	assert.Equal(t, "EUR", *coerceCurrency("€"))
	assert.Equal(t, "GBP", *coerceCurrency("gbp"))
	assert.Equal(t, "Euros", *coerceCurrency("Euros"))
	assert.Nil(t, coerceCurrency(nil))
}

func TestFlattenObjects(t *testing.T) {
	values, err := decodeDocuments(`[{"a":1}, 2, null] {"b":2} "x"`)
	require.NoError(t, err)

	objects, warnings := flattenObjects(values)

	assert.Len(t, objects, 2)
	assert.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "a number")
	assert.Contains(t, warnings[1], "null")
	assert.Contains(t, warnings[2], "a string")
}

func TestSchemaChecker_ReportsDrift(t *testing.T) {
	checker, err := newSchemaChecker()
	require.NoError(t, err)

	clean := decodeOne(t, `{"numeroFactura":"F1","fecha":"29/11/2024","cliente":"1","importeTotal":10.5,"moneda":"EUR","expediciones":[{"bultos":1,"peso":2}]}`)
	assert.Empty(t, checker.check(clean))

	drifted := decodeOne(t, `{"numeroFactura":"F1","fecha":"2024-11-29","cliente":"1","importeTotal":"10,5","moneda":"EUR","expediciones":[{"bultos":1.5}]}`)
	warnings := checker.check(drifted)
	require.NotEmpty(t, warnings)
	joined := strings.Join(warnings, "\n")
	assert.Contains(t, joined, "/importeTotal")
	assert.Contains(t, joined, "/fecha")
	assert.Contains(t, joined, "/expediciones/0/bultos")
}

func TestMergeRecords_ConflictsWarnButKeepRows(t *testing.T) {
	a := coerceInvoice(decodeOne(t, `{"numeroFactura":"F1","importeTotal":10,"moneda":"EUR","expediciones":[{"expedicion":"1"}]}`))
	b := coerceInvoice(decodeOne(t, `{"numeroFactura":"F1","importeTotal":12,"cliente":"C1","expediciones":[{"expedicion":"2"},{"expedicion":"3"}]}`))

	rec, warnings := mergeRecords([]*domain.InvoiceRecord{a, b})

	assert.Equal(t, "F1", *rec.InvoiceNumber)
	assert.Equal(t, "C1", *rec.ClientCode)
	assert.Equal(t, "10", rec.TotalAmount.String())
	assert.Len(t, rec.Shipments, 3)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "conflicting total amounts 10 and 12")
}

func TestMergeRecords_Empty(t *testing.T) {
	rec, warnings := mergeRecords(nil)
	assert.NotNil(t, rec.Shipments)
	assert.Empty(t, warnings)
}
