package extract

import (
	"testing"
	"time"
)

var dateNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func extractDate(t *testing.T, text string) DateResult {
	t.Helper()
	return Date(text, dateNow, 24*time.Hour)
}

func TestDateFormatsInPriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "iso", text: "issued 2024-03-10 thanks", want: "2024-03-10"},
		{name: "us slash", text: "Date: 01/15/2024", want: "2024-01-15"},
		{name: "us dash", text: "12-25-2023", want: "2023-12-25"},
		{name: "day first when month is out of range", text: "25/12/2023", want: "2023-12-25"},
		{name: "two digit year low pivot", text: "Date: 01/15/24", want: "2024-01-15"},
		{name: "two digit year high pivot", text: "03/07/99", want: "1999-03-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDate(t, tt.text)
			if !got.Found {
				t.Fatalf("Date(%q) not found", tt.text)
			}
			if formatted := FormatDate(got.Date); formatted != tt.want {
				t.Fatalf("Date(%q) = %s, want %s", tt.text, formatted, tt.want)
			}
		})
	}
}

func TestDateFirstOccurrenceWins(t *testing.T) {
	got := extractDate(t, "2024-01-15 something 2024-02-20")
	if !got.Found || FormatDate(got.Date) != "2024-01-15" {
		t.Fatalf("expected first occurrence, got %v", got)
	}
}

func TestDateRejectsImplausibleFuture(t *testing.T) {
	// The first candidate is far in the future; extraction falls
	// through to the next one.
	got := extractDate(t, "valid until 2031-01-01, purchased 2024-05-30")
	if !got.Found || FormatDate(got.Date) != "2024-05-30" {
		t.Fatalf("expected fallthrough past future date, got %v", got)
	}
}

func TestDateRejectsInvalidCalendarBounds(t *testing.T) {
	got := extractDate(t, "2024-02-30")
	if got.Found {
		t.Fatalf("February 30 should not parse, got %v", got)
	}
}

func TestDateNotFound(t *testing.T) {
	for _, text := range []string{"", "no date here", "total 12.50"} {
		if got := extractDate(t, text); got.Found {
			t.Fatalf("Date(%q) unexpectedly found %s", text, FormatDate(got.Date))
		}
	}
}

func TestCenturyPivot(t *testing.T) {
	if got := correctCentury(49); got != 2049 {
		t.Fatalf("expected 2049, got %d", got)
	}
	if got := correctCentury(50); got != 1950 {
		t.Fatalf("expected 1950, got %d", got)
	}
}
