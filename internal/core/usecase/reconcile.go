package usecase

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

// reconcileResultPayload normalizes a legacy query-result payload into
// expense records. Three shapes are accepted: a bare JSON array, an
// object with an "expenses" key, and a DynamoDB-style object with an
// "Items" key whose elements may be attribute-value wrapped. Anything
// else logs a warning and yields an empty, non-nil slice.
func reconcileResultPayload(raw []byte, now time.Time) []domain.ExpenseRecord {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		slog.Warn("legacy payload is empty")
		return []domain.ExpenseRecord{}
	}

	if trimmed[0] == '[' {
		return reconcileItemList(trimmed, now)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		slog.Warn("legacy payload is not valid JSON", "error", err)
		return []domain.ExpenseRecord{}
	}
	if list, ok := envelope["expenses"]; ok {
		return reconcileItemList(list, now)
	}
	if list, ok := envelope["Items"]; ok {
		return reconcileItemList(list, now)
	}

	slog.Warn("legacy payload has an unrecognized shape")
	return []domain.ExpenseRecord{}
}

func reconcileItemList(raw json.RawMessage, now time.Time) []domain.ExpenseRecord {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("legacy payload list is malformed", "error", err)
		return []domain.ExpenseRecord{}
	}

	records := make([]domain.ExpenseRecord, 0, len(items))
	for _, item := range items {
		if attributeWrapped(item) {
			item = unwrapAttributeItem(item)
		}
		records = append(records, reconcileItem(item, now))
	}
	return records
}

// attributeWrapped reports whether every value of the item is a
// single-key {"S"|"N"|"BOOL"|"NULL": ...} attribute-value envelope.
func attributeWrapped(item map[string]any) bool {
	if len(item) == 0 {
		return false
	}
	for _, v := range item {
		inner, ok := v.(map[string]any)
		if !ok || len(inner) != 1 {
			return false
		}
		for key := range inner {
			switch key {
			case "S", "N", "BOOL", "NULL":
			default:
				return false
			}
		}
	}
	return true
}

func unwrapAttributeItem(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for field, v := range item {
		inner := v.(map[string]any)
		for key, value := range inner {
			switch key {
			case "S", "N":
				out[field] = value
			case "BOOL":
				out[field] = value
			case "NULL":
				// absent field, defaults apply
			}
		}
	}
	return out
}

// reconcileItem maps one decoded item onto the canonical record,
// tolerating legacy field aliases and filling defaults so no field is
// ever null downstream.
func reconcileItem(item map[string]any, now time.Time) domain.ExpenseRecord {
	rec := domain.ExpenseRecord{
		ID:              stringField(item, "id", "expense_id"),
		Description:     stringField(item, "description"),
		Vendor:          stringField(item, "vendor"),
		Date:            stringField(item, "date"),
		SourceReference: stringField(item, "source_reference", "s3_key"),
		RawTextExcerpt:  stringField(item, "raw_text_excerpt", "raw_text"),
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Description == "" {
		rec.Description = "unknown"
	}
	if _, err := time.Parse(domain.DateLayout, rec.Date); err != nil {
		rec.Date = now.Format(domain.DateLayout)
	}

	rec.Amount = decimalField(item, "amount")

	category := domain.Category(stringField(item, "category"))
	if !category.Valid() {
		category = domain.CategoryOther
	}
	rec.Category = category

	rec.ProcessedAt = now
	if ts := stringField(item, "processed_at"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.ProcessedAt = parsed
		}
	}

	return rec
}

func stringField(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func decimalField(item map[string]any, key string) decimal.Decimal {
	v, ok := item[key]
	if !ok {
		return decimal.Zero
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		parsed, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}
