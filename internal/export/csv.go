// Package export renders an InvoiceRecord as a spreadsheet download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"facturas/internal/domain"
)

// BOM is the UTF-8 byte order mark Excel needs to read accented headers on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var invoiceColumns = []string{
	"Número factura",
	"Fecha",
	"Cliente",
	"Importe total",
	"Moneda",
}

var shipmentColumns = []string{
	"Expedición",
	"Fecha expedición",
	"Remitente",
	"Destinatario",
	"Bultos",
	"Peso (kg)",
	"Volumen (m3)",
}

// csvColumns is the CSV header: the invoice fields repeated on every shipment row.
var csvColumns = append(append([]string{}, invoiceColumns...), shipmentColumns...)

// WriteCSV writes one row per shipment with the invoice header fields repeated.
// A record without shipments produces a single row with empty shipment columns.
func WriteCSV(w io.Writer, rec *domain.InvoiceRecord) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	head := invoiceRow(rec)
	if len(rec.Shipments) == 0 {
		if err := cw.Write(append(head, make([]string, len(shipmentColumns))...)); err != nil {
			return err
		}
	}
	for i := range rec.Shipments {
		row := append(append([]string{}, head...), shipmentRow(&rec.Shipments[i])...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func invoiceRow(rec *domain.InvoiceRecord) []string {
	return []string{
		str(rec.InvoiceNumber),
		str(rec.Date),
		str(rec.ClientCode),
		dec(rec.TotalAmount),
		str(rec.Currency),
	}
}

func shipmentRow(s *domain.ShipmentRecord) []string {
	count := ""
	if s.PackageCount != nil {
		count = strconv.FormatInt(*s.PackageCount, 10)
	}
	return []string{
		str(s.ShipmentID),
		str(s.Date),
		str(s.Sender),
		str(s.Recipient),
		count,
		dec(s.Weight),
		dec(s.Volume),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dec(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
