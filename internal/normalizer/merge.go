package normalizer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"facturas/internal/domain"
)

// mergeRecords folds the records decoded from one response into a single invoice.
// The first non-null value wins for each header field and shipment rows are
// concatenated in order. Disagreements are reported as warnings, never dropped rows.
func mergeRecords(records []*domain.InvoiceRecord) (*domain.InvoiceRecord, []string) {
	out := &domain.InvoiceRecord{Shipments: []domain.ShipmentRecord{}}
	var warnings []string
	var invoiceNumbers []string

	for _, r := range records {
		if r.InvoiceNumber != nil && !containsString(invoiceNumbers, *r.InvoiceNumber) {
			invoiceNumbers = append(invoiceNumbers, *r.InvoiceNumber)
		}
		out.InvoiceNumber = firstString(out.InvoiceNumber, r.InvoiceNumber, nil)
		out.Date = firstString(out.Date, r.Date, func(a, b string) {
			warnings = append(warnings, fmt.Sprintf("conflicting invoice dates %q and %q; kept the first", a, b))
		})
		out.ClientCode = firstString(out.ClientCode, r.ClientCode, func(a, b string) {
			warnings = append(warnings, fmt.Sprintf("conflicting client codes %q and %q; kept the first", a, b))
		})
		out.Currency = firstString(out.Currency, r.Currency, func(a, b string) {
			warnings = append(warnings, fmt.Sprintf("conflicting currencies %q and %q; kept the first", a, b))
		})
		out.TotalAmount = firstDecimal(out.TotalAmount, r.TotalAmount, func(a, b decimal.Decimal) {
			warnings = append(warnings, fmt.Sprintf("conflicting total amounts %s and %s; kept the first", a, b))
		})
		out.Shipments = append(out.Shipments, r.Shipments...)
	}

	if len(invoiceNumbers) > 1 {
		warnings = append(warnings, fmt.Sprintf("response contains %d invoice numbers (%s); shipments were merged under %s",
			len(invoiceNumbers), strings.Join(invoiceNumbers, ", "), invoiceNumbers[0]))
	}
	return out, warnings
}

func firstString(cur, next *string, onConflict func(a, b string)) *string {
	if cur == nil {
		return next
	}
	if next != nil && *next != *cur && onConflict != nil {
		onConflict(*cur, *next)
	}
	return cur
}

func firstDecimal(cur, next *decimal.Decimal, onConflict func(a, b decimal.Decimal)) *decimal.Decimal {
	if cur == nil {
		return next
	}
	if next != nil && !next.Equal(*cur) {
		onConflict(*cur, *next)
	}
	return cur
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
