package normalizer

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"facturas/internal/domain"
)

// Accepted keys per field, in lookup order. The prompt asks for the Spanish names.
var (
	keysInvoiceNumber = []string{"numeroFactura", "invoiceNumber", "numero_factura", "invoice_number"}
	keysInvoiceDate   = []string{"fecha", "date", "fechaFactura"}
	keysClientCode    = []string{"cliente", "clientCode", "codigoCliente", "client_code"}
	keysTotalAmount   = []string{"importeTotal", "totalAmount", "importe_total", "total_amount"}
	keysCurrency      = []string{"moneda", "currency"}
	keysShipments     = []string{"expediciones", "shipments"}

	keysShipmentID   = []string{"expedicion", "shipmentId", "numeroExpedicion", "shipment_id"}
	keysShipmentDate = []string{"fecha", "date"}
	keysSender       = []string{"remitente", "sender"}
	keysRecipient    = []string{"destinatario", "recipient"}
	keysPackageCount = []string{"bultos", "packageCount", "package_count"}
	keysWeight       = []string{"peso", "weight"}
	keysVolume       = []string{"volumen", "volume"}
)

var (
	numberToken = regexp.MustCompile(`[-+]?\d+(?:[.,' ]\d+)*`)
	volumeUnit  = regexp.MustCompile(`(?i)\s*m(?:3|³)\s*$`)
	datePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

var currencySymbols = map[string]string{
	"€": "EUR",
	"$": "USD",
	"£": "GBP",
}

// coerceInvoice maps one decoded object onto an InvoiceRecord. It never fails:
// values that cannot be converted become null and unknown keys are dropped.
func coerceInvoice(obj map[string]interface{}) *domain.InvoiceRecord {
	rec := &domain.InvoiceRecord{
		InvoiceNumber: coerceString(lookup(obj, keysInvoiceNumber)),
		Date:          coerceDate(lookup(obj, keysInvoiceDate)),
		ClientCode:    coerceString(lookup(obj, keysClientCode)),
		TotalAmount:   coerceDecimal(lookup(obj, keysTotalAmount)),
		Currency:      coerceCurrency(lookup(obj, keysCurrency)),
		Shipments:     []domain.ShipmentRecord{},
	}

	if rows, ok := lookup(obj, keysShipments).([]interface{}); ok {
		for _, row := range rows {
			if m, ok := row.(map[string]interface{}); ok {
				rec.Shipments = append(rec.Shipments, coerceShipment(m))
			}
		}
	}
	return rec
}

func coerceShipment(obj map[string]interface{}) domain.ShipmentRecord {
	return domain.ShipmentRecord{
		ShipmentID:   coerceString(lookup(obj, keysShipmentID)),
		Date:         coerceDate(lookup(obj, keysShipmentDate)),
		Sender:       coerceString(lookup(obj, keysSender)),
		Recipient:    coerceString(lookup(obj, keysRecipient)),
		PackageCount: coerceCount(lookup(obj, keysPackageCount)),
		Weight:       nonNegative(coerceDecimal(lookup(obj, keysWeight))),
		Volume:       nonNegative(coerceDecimal(lookup(obj, keysVolume))),
	}
}

// lookup returns the first non-null value stored under any of keys.
func lookup(obj map[string]interface{}, keys []string) interface{} {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceString(v interface{}) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	default:
		return nil
	}
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
		return nil
	}
	return &s
}

func coerceDate(v interface{}) *string {
	s := coerceString(v)
	if s == nil || !datePattern.MatchString(*s) {
		return nil
	}
	t, err := time.Parse("2/1/2006", *s)
	if err != nil {
		return nil
	}
	out := t.Format("02/01/2006")
	return &out
}

func coerceCurrency(v interface{}) *string {
	s := coerceString(v)
	if s == nil {
		return nil
	}
	if code, ok := currencySymbols[*s]; ok {
		return &code
	}
	if len(*s) == 3 && isASCIILetters(*s) {
		upper := strings.ToUpper(*s)
		return &upper
	}
	return s
}

// coerceDecimal reads a number or numeric string. Values outside
// domain.DecimalInRange become null.
func coerceDecimal(v interface{}) *decimal.Decimal {
	var d *decimal.Decimal
	switch t := v.(type) {
	case json.Number:
		n, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil
		}
		d = &n
	case string:
		d = parseLocaleDecimal(t)
	}
	if d == nil || !domain.DecimalInRange(*d) {
		return nil
	}
	return d
}

var maxCount = decimal.NewFromInt(math.MaxInt64)

func coerceCount(v interface{}) *int64 {
	d := nonNegative(coerceDecimal(v))
	if d == nil || !d.IsInteger() || d.GreaterThan(maxCount) {
		return nil
	}
	n := d.IntPart()
	return &n
}

func nonNegative(d *decimal.Decimal) *decimal.Decimal {
	if d == nil || d.IsNegative() {
		return nil
	}
	return d
}

// parseLocaleDecimal reads a numeric string written with either decimal separator,
// optional thousands separators and an optional currency or unit around it.
func parseLocaleDecimal(s string) *decimal.Decimal {
	s = volumeUnit.ReplaceAllString(strings.TrimSpace(s), "")
	loc := numberToken.FindStringIndex(s)
	if loc == nil {
		return nil
	}
	if strings.ContainsAny(s[:loc[0]]+s[loc[1]:], "0123456789") {
		return nil
	}

	token := strings.NewReplacer(" ", "", "'", "").Replace(s[loc[0]:loc[1]])
	dots, commas := strings.Count(token, "."), strings.Count(token, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(token, ",") > strings.LastIndex(token, ".") {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case commas == 1:
		token = strings.Replace(token, ",", ".", 1)
	case commas > 1:
		token = strings.ReplaceAll(token, ",", "")
	case dots > 1:
		token = strings.ReplaceAll(token, ".", "")
	}

	d, err := decimal.NewFromString(token)
	if err != nil {
		return nil
	}
	return &d
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
