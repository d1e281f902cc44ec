package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationPolicy carries the tunable thresholds of the validator.
type ValidationPolicy struct {
	// AmountCeiling rejects absurd OCR artifacts. Amounts must be
	// strictly below it.
	AmountCeiling decimal.Decimal
}

func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		AmountCeiling: decimal.RequireFromString("100000.00"),
	}
}

// Validator decides whether a candidate record is storable. It never
// mutates the record; every violated rule is reported as a discrete
// reason string prefixed with the failing field name.
type Validator struct {
	policy ValidationPolicy
}

func NewValidator(policy ValidationPolicy) *Validator {
	if policy.AmountCeiling.IsZero() {
		policy = DefaultValidationPolicy()
	}
	return &Validator{policy: policy}
}

func (v *Validator) Validate(rec *ExpenseRecord) []string {
	var reasons []string

	if !rec.Amount.IsPositive() {
		reasons = append(reasons, fmt.Sprintf("amount: must be positive, got %s", rec.Amount))
	} else if rec.Amount.GreaterThanOrEqual(v.policy.AmountCeiling) {
		reasons = append(reasons, fmt.Sprintf("amount: %s exceeds ceiling %s", rec.Amount, v.policy.AmountCeiling))
	}

	if strings.TrimSpace(rec.Description) == "" {
		reasons = append(reasons, "description: empty after trimming")
	}

	if !rec.Category.Valid() {
		reasons = append(reasons, fmt.Sprintf("category: %q is not in the closed set", rec.Category))
	}

	if _, err := time.Parse(DateLayout, rec.Date); err != nil {
		reasons = append(reasons, fmt.Sprintf("date: %q is not a valid calendar date", rec.Date))
	}

	return reasons
}
