// Package categorize maps receipt text to one spending category via
// case-insensitive keyword matching against an immutable lookup table.
package categorize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

// Priority is the fixed tie-break order: when a text matches keywords
// from several categories, the earliest category here wins. This order
// is a contract; changing it changes classification results.
var Priority = []domain.Category{
	domain.CategoryFood,
	domain.CategoryTransport,
	domain.CategoryOffice,
	domain.CategoryTravel,
	domain.CategoryHealthcare,
	domain.CategoryUtilities,
}

var defaultKeywords = map[domain.Category][]string{
	domain.CategoryFood:       {"restaurant", "cafe", "food", "lunch", "dinner", "pizza", "burger", "starbucks", "mcdonald", "subway"},
	domain.CategoryTransport:  {"taxi", "uber", "bus", "train", "fuel", "gas", "parking", "metro", "lyft", "transport"},
	domain.CategoryOffice:     {"office", "supplies", "stationery", "paper", "computer", "software", "staples", "depot"},
	domain.CategoryTravel:     {"hotel", "flight", "airline", "accommodation", "booking", "airbnb", "expedia", "marriott"},
	domain.CategoryHealthcare: {"pharmacy", "medical", "doctor", "hospital", "clinic", "cvs", "walgreens", "health"},
	domain.CategoryUtilities:  {"electricity", "electric", "water bill", "internet", "broadband", "utility", "phone bill"},
}

// Table is the read-only keyword lookup shared by all workers. It is
// built once at startup and never mutated afterwards, so concurrent use
// needs no locking.
type Table struct {
	keywords map[domain.Category][]string
}

func Default() *Table {
	return &Table{keywords: defaultKeywords}
}

// Load builds a table from a YAML file mapping category names to keyword
// lists. Categories outside the closed set are a configuration error.
// Listed categories replace their defaults; omitted ones keep them.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword file: %w", err)
	}

	var overrides map[string][]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse keyword file: %w", err)
	}

	keywords := make(map[domain.Category][]string, len(defaultKeywords))
	for cat, kws := range defaultKeywords {
		keywords[cat] = kws
	}
	for name, kws := range overrides {
		cat := domain.Category(strings.ToLower(strings.TrimSpace(name)))
		if !cat.Valid() || cat == domain.CategoryOther {
			return nil, fmt.Errorf("keyword file: unknown category %q", name)
		}
		lowered := make([]string, 0, len(kws))
		for _, kw := range kws {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				lowered = append(lowered, kw)
			}
		}
		keywords[cat] = lowered
	}
	return &Table{keywords: keywords}, nil
}

// Categorize returns exactly one category from the closed set. Same
// input always yields the same category; the default is CategoryOther.
func (t *Table) Categorize(text, vendor string) domain.Category {
	haystack := strings.ToLower(text + " " + vendor)
	for _, cat := range Priority {
		for _, kw := range t.keywords[cat] {
			if strings.Contains(haystack, kw) {
				return cat
			}
		}
	}
	return domain.CategoryOther
}
