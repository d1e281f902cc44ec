package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the single canonical calendar-date format used everywhere
// an ExpenseRecord date crosses a boundary.
const DateLayout = "2006-01-02"

type Category string

const (
	CategoryFood       Category = "food"
	CategoryTransport  Category = "transport"
	CategoryOffice     Category = "office"
	CategoryTravel     Category = "travel"
	CategoryHealthcare Category = "healthcare"
	CategoryUtilities  Category = "utilities"
	CategoryOther      Category = "other"
)

// Categories is the closed set of spending categories. CategoryOther is the
// default and always a member.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryOffice,
	CategoryTravel,
	CategoryHealthcare,
	CategoryUtilities,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type DocumentStatus string

const (
	StatusReceived   DocumentStatus = "received"
	StatusExtracting DocumentStatus = "extracting"
	StatusValidating DocumentStatus = "validating"
	StatusProcessed  DocumentStatus = "processed"
	StatusRejected   DocumentStatus = "rejected"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the source receipt as tracked through the pipeline. The
// stored bytes live in object storage; only the pointer travels here.
type Document struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	MimeType      string         `json:"mime_type"`
	StoragePath   string         `json:"storage_path"`
	Status        DocumentStatus `json:"status"`
	RejectReasons []string       `json:"reject_reasons,omitempty"`
	Error         string         `json:"error,omitempty"`
	UploadedAt    time.Time      `json:"uploaded_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type ValidationFlag string

const (
	FlagAmountUnrecoverable ValidationFlag = "amount_unrecoverable"
	FlagAmountLowConfidence ValidationFlag = "amount_low_confidence"
	FlagDateDefaulted       ValidationFlag = "date_defaulted"
	FlagVendorFallback      ValidationFlag = "vendor_fallback"
	FlagTextUnavailable     ValidationFlag = "text_unavailable"
)

// ExpenseRecord is the canonical normalized expense. Records are created
// once by the normalizer and never mutated afterwards.
type ExpenseRecord struct {
	ID              string           `json:"id"`
	Amount          decimal.Decimal  `json:"amount"`
	Category        Category         `json:"category"`
	Description     string           `json:"description"`
	Date            string           `json:"date"`
	Vendor          string           `json:"vendor"`
	SourceReference string           `json:"source_reference"`
	RawTextExcerpt  string           `json:"raw_text_excerpt"`
	ProcessedAt     time.Time        `json:"processed_at"`
	Flags           []ValidationFlag `json:"validation_flags,omitempty"`
}

func (r *ExpenseRecord) HasFlag(flag ValidationFlag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Rejection is the diagnostic produced when a document fails validation.
// It is terminal for the document but never for the batch.
type Rejection struct {
	DocumentID     string   `json:"document_id"`
	Reasons        []string `json:"reasons"`
	RawTextExcerpt string   `json:"raw_text_excerpt"`
}

// Outcome is the per-document result of the normalization pipeline.
// Exactly one of Record and Rejection is set unless Err is non-nil.
type Outcome struct {
	DocumentID string
	Record     *ExpenseRecord
	Rejection  *Rejection
	Err        error
}

func (o Outcome) Accepted() bool {
	return o.Record != nil && o.Rejection == nil && o.Err == nil
}

// CategoryTotal is one row of the category summary.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// Summary is derived from the canonical record sequence on every call,
// never cached.
type Summary struct {
	Total          decimal.Decimal `json:"total"`
	Count          int             `json:"count"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
	Months         []string        `json:"months"`
}
