package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Bounds for amounts, weights and volumes. Values outside them are not real
// invoice figures and some decimal operations on them grow without bound.
const (
	MaxDecimalExponent = 28
	MaxDecimalDigits   = 38
)

// DecimalInRange reports whether d has a bounded exponent and coefficient.
func DecimalInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > MaxDecimalExponent || exp < -MaxDecimalExponent {
		return false
	}
	return d.NumDigits() <= MaxDecimalDigits
}

// InvoiceRecord is the normalized representation of one invoice. Every field is optional.
// Amounts keep the scale they were read with.
type InvoiceRecord struct {
	InvoiceNumber *string          `json:"invoiceNumber"`
	Date          *string          `json:"date"`
	ClientCode    *string          `json:"clientCode"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	Currency      *string          `json:"currency"`
	Shipments     []ShipmentRecord `json:"shipments"`

	// Warnings lists structural problems noticed in the model output. Affected fields are null.
	// They are diagnostic and not part of the record contract.
	Warnings []string `json:"warnings,omitempty"`
}

// ShipmentRecord is one expedition line of an invoice.
type ShipmentRecord struct {
	ShipmentID   *string          `json:"shipmentId"`
	Date         *string          `json:"date"`
	Sender       *string          `json:"sender"`
	Recipient    *string          `json:"recipient"`
	PackageCount *int64           `json:"packageCount"`
	Weight       *decimal.Decimal `json:"weight"`
	Volume       *decimal.Decimal `json:"volume"`
}

// ExtractedText is the plain text rendering of a PDF.
type ExtractedText struct {
	Text   string           `json:"text"`
	Pages  int              `json:"pages"`
	Method ExtractionMethod `json:"method"`
}

// ProcessResult pairs the text read from a document with the invoice extracted from it.
type ProcessResult struct {
	Text    string         `json:"text"`
	Invoice *InvoiceRecord `json:"invoice"`
}

// MarshalJSON writes amounts as JSON numbers with their original scale and
// always emits shipments as an array.
func (r InvoiceRecord) MarshalJSON() ([]byte, error) {
	shipments := r.Shipments
	if shipments == nil {
		shipments = []ShipmentRecord{}
	}
	return json.Marshal(struct {
		InvoiceNumber *string          `json:"invoiceNumber"`
		Date          *string          `json:"date"`
		ClientCode    *string          `json:"clientCode"`
		TotalAmount   *json.Number     `json:"totalAmount"`
		Currency      *string          `json:"currency"`
		Shipments     []ShipmentRecord `json:"shipments"`
		Warnings      []string         `json:"warnings,omitempty"`
	}{
		InvoiceNumber: r.InvoiceNumber,
		Date:          r.Date,
		ClientCode:    r.ClientCode,
		TotalAmount:   DecimalNumber(r.TotalAmount),
		Currency:      r.Currency,
		Shipments:     shipments,
		Warnings:      r.Warnings,
	})
}

func (s ShipmentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ShipmentID   *string      `json:"shipmentId"`
		Date         *string      `json:"date"`
		Sender       *string      `json:"sender"`
		Recipient    *string      `json:"recipient"`
		PackageCount *int64       `json:"packageCount"`
		Weight       *json.Number `json:"weight"`
		Volume       *json.Number `json:"volume"`
	}{
		ShipmentID:   s.ShipmentID,
		Date:         s.Date,
		Sender:       s.Sender,
		Recipient:    s.Recipient,
		PackageCount: s.PackageCount,
		Weight:       DecimalNumber(s.Weight),
		Volume:       DecimalNumber(s.Volume),
	})
}

// Validate rejects records carrying numbers outside the decimal bounds or
// negative shipment quantities.
func (r *InvoiceRecord) Validate() error {
	if r.TotalAmount != nil && !DecimalInRange(*r.TotalAmount) {
		return fmt.Errorf("totalAmount %w", errOutOfRange)
	}
	for i, s := range r.Shipments {
		if s.PackageCount != nil && *s.PackageCount < 0 {
			return fmt.Errorf("shipments[%d].packageCount is negative", i)
		}
		if err := checkQuantity(s.Weight); err != nil {
			return fmt.Errorf("shipments[%d].weight %w", i, err)
		}
		if err := checkQuantity(s.Volume); err != nil {
			return fmt.Errorf("shipments[%d].volume %w", i, err)
		}
	}
	return nil
}

func checkQuantity(d *decimal.Decimal) error {
	switch {
	case d == nil:
		return nil
	case !DecimalInRange(*d):
		return errOutOfRange
	case d.IsNegative():
		return errNegative
	}
	return nil
}

// DecimalNumber renders d as a JSON number keeping trailing zeros, or nil for a nil decimal.
// Out of range values are written in exponent form.
func DecimalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	if !DecimalInRange(*d) {
		n := json.Number(d.Coefficient().String() + "e" + strconv.Itoa(int(d.Exponent())))
		return &n
	}
	places := -d.Exponent()
	if places < 0 {
		places = 0
	}
	n := json.Number(d.StringFixed(places))
	return &n
}
