package extract

import (
	"path/filepath"
	"regexp"
	"strings"
)

// VendorResult always carries a non-empty name; FromFilename marks the
// filename fallback path.
type VendorResult struct {
	Name         string
	FromFilename bool
}

const (
	vendorMinLength = 6
	vendorMaxLength = 50
)

var (
	numericLeadRe = regexp.MustCompile(`^[0-9]+[.\-/][0-9]+`)
	fieldLabelRe  = regexp.MustCompile(`(?i)^(?:total|subtotal|amount|date|tax|change|cash|card)\b`)
)

// Vendor identifies the business-name line: the first non-empty line long
// enough to be meaningful that is neither numeric-led nor one of the
// amount/date label lines the other extractors own. When no line
// qualifies, a sanitized form of the originating filename guarantees a
// non-empty result.
func Vendor(text, filename string) VendorResult {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < vendorMinLength {
			continue
		}
		if numericLeadRe.MatchString(line) || fieldLabelRe.MatchString(line) {
			continue
		}
		if len(line) > vendorMaxLength {
			line = strings.TrimSpace(line[:vendorMaxLength])
		}
		return VendorResult{Name: line}
	}
	return VendorResult{Name: SanitizeFilename(filename), FromFilename: true}
}

// SanitizeFilename reduces an object key or filename to a displayable
// description: base name without extension. "uploads/img_2043.jpg"
// becomes "img_2043".
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "receipt"
	}
	return base
}
