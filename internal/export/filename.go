package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a download name for an invoice export.
// Format: factura_{sanitized_invoice_number}_{YYYY-MM-DD}.{ext}
func BuildFilename(invoiceNumber *string, ext string, now time.Time) string {
	name := "factura"
	if invoiceNumber != nil {
		if s := SanitizeFilename(*invoiceNumber); s != "" {
			name += "_" + s
		}
	}
	return fmt.Sprintf("%s_%s.%s", name, now.Format("2006-01-02"), ext)
}
