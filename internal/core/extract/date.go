package extract

import (
	"regexp"
	"strconv"
	"time"

	"github.com/expenseops/expense-analyzer/internal/core/domain"
)

// DateResult carries the resolved calendar date or an explicit not-found
// tag. Callers default to the processing date when Found is false.
type DateResult struct {
	Date  time.Time
	Found bool
}

// Two-digit years are century-corrected around a fixed pivot:
// 00-49 map to 20xx, 50-99 map to 19xx.
const centuryPivot = 49

type dateFormat struct {
	re    *regexp.Regexp
	order func(a, b, c int) (year, month, day int)
}

// Formats are attempted in fixed priority order. Within a format the
// first occurrence in the text wins: receipts carry the transaction date
// near the top.
var dateFormats = []dateFormat{
	{
		re:    regexp.MustCompile(`\b([0-9]{4})[-/]([0-9]{1,2})[-/]([0-9]{1,2})\b`),
		order: func(a, b, c int) (int, int, int) { return a, b, c },
	},
	{
		re:    regexp.MustCompile(`\b([0-9]{1,2})[-/]([0-9]{1,2})[-/]([0-9]{4})\b`),
		order: func(a, b, c int) (int, int, int) { return c, a, b },
	},
	{
		re:    regexp.MustCompile(`\b([0-9]{1,2})[-/]([0-9]{1,2})[-/]([0-9]{4})\b`),
		order: func(a, b, c int) (int, int, int) { return c, b, a },
	},
	{
		re:    regexp.MustCompile(`\b([0-9]{1,2})[-/]([0-9]{1,2})[-/]([0-9]{2})\b`),
		order: func(a, b, c int) (int, int, int) { return correctCentury(c), a, b },
	},
}

// Date scans text for a calendar date. Candidates parsing to a date more
// than futureTolerance past now are implausible (receipts are issued in
// the past) and fall through to the next candidate.
func Date(text string, now time.Time, futureTolerance time.Duration) DateResult {
	horizon := now.Add(futureTolerance)

	for _, format := range dateFormats {
		for _, match := range format.re.FindAllStringSubmatch(text, -1) {
			a, _ := strconv.Atoi(match[1])
			b, _ := strconv.Atoi(match[2])
			c, _ := strconv.Atoi(match[3])
			year, month, day := format.order(a, b, c)

			parsed, ok := calendarDate(year, month, day)
			if !ok || parsed.After(horizon) {
				continue
			}
			return DateResult{Date: parsed, Found: true}
		}
	}
	return DateResult{}
}

func correctCentury(yy int) int {
	if yy <= centuryPivot {
		return 2000 + yy
	}
	return 1900 + yy
}

// calendarDate builds a date and confirms the components survive the
// round trip, which catches out-of-bounds days like February 30.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a date in the canonical record format.
func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
