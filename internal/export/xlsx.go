package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"facturas/internal/domain"
)

// Sheet names of the XLSX export.
const (
	SheetInvoice   = "Factura"
	SheetShipments = "Expediciones"
)

// WriteXLSX writes a workbook with the invoice header on one sheet and the
// shipment rows on another. Numbers are stored as numeric cells.
func WriteXLSX(w io.Writer, rec *domain.InvoiceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", SheetInvoice); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetShipments); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := []interface{}{
		cellString(rec.InvoiceNumber),
		cellString(rec.Date),
		cellString(rec.ClientCode),
		cellDecimal(rec.TotalAmount),
		cellString(rec.Currency),
	}
	for i, label := range invoiceColumns {
		if err := setRow(f, SheetInvoice, i+1, label, header[i]); err != nil {
			return err
		}
	}

	if err := setRow(f, SheetShipments, 1, stringsToCells(shipmentColumns)...); err != nil {
		return err
	}
	for i := range rec.Shipments {
		s := &rec.Shipments[i]
		var count interface{}
		if s.PackageCount != nil {
			count = *s.PackageCount
		}
		if err := setRow(f, SheetShipments, i+2,
			cellString(s.ShipmentID),
			cellString(s.Date),
			cellString(s.Sender),
			cellString(s.Recipient),
			count,
			cellDecimal(s.Weight),
			cellDecimal(s.Volume),
		); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(SheetInvoice, "A", "A", 18)
	_ = f.SetColWidth(SheetInvoice, "B", "B", 24)
	_ = f.SetColWidth(SheetShipments, "A", "B", 16)
	_ = f.SetColWidth(SheetShipments, "C", "D", 36)
	_ = f.SetColWidth(SheetShipments, "E", "G", 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func stringsToCells(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func cellString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func cellDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}
