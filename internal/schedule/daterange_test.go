package schedule

import (
	"errors"
	"testing"
)

func TestEnumerateDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{name: "single day", start: "2025-06-01", end: "2025-06-01", want: []string{"2025-06-01"}},
		{name: "three days", start: "2025-06-01", end: "2025-06-03", want: []string{"2025-06-01", "2025-06-02", "2025-06-03"}},
		{name: "month boundary", start: "2025-01-30", end: "2025-02-02", want: []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"}},
		{name: "leap day", start: "2024-02-28", end: "2024-03-01", want: []string{"2024-02-28", "2024-02-29", "2024-03-01"}},
		{name: "reversed range", start: "2025-06-03", end: "2025-06-01", want: nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := EnumerateDays(MustParseDate(tc.start), MustParseDate(tc.end))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d days, got %d (%v)", len(tc.want), len(got), got)
			}
			for i, day := range got {
				if day.String() != tc.want[i] {
					t.Fatalf("day %d: expected %s, got %s", i, tc.want[i], day)
				}
			}
		})
	}
}

func TestEnumerateDaysLengthAndOrder(t *testing.T) {
	t.Parallel()

	start := MustParseDate("2023-12-15")
	for span := 0; span < 400; span += 7 {
		end := start.AddDays(span)
		days := EnumerateDays(start, end)
		if len(days) != start.DaysUntil(end)+1 {
			t.Fatalf("span %d: expected %d days, got %d", span, start.DaysUntil(end)+1, len(days))
		}
		seen := make(map[Date]struct{}, len(days))
		for i, day := range days {
			if _, dup := seen[day]; dup {
				t.Fatalf("span %d: duplicate day %s", span, day)
			}
			seen[day] = struct{}{}
			if i > 0 && !days[i-1].Before(day) {
				t.Fatalf("span %d: %s not after %s", span, day, days[i-1])
			}
		}
		if again := EnumerateDays(start, end); len(again) != len(days) {
			t.Fatalf("span %d: enumeration is not deterministic", span)
		}
	}
}

func TestDaysUntilAcrossCenturies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{name: "gregorian cycle", start: "2000-01-01", end: "2400-01-01", want: 146097},
		{name: "full calendar", start: "0001-01-01", end: "9999-12-31", want: 3652058},
		{name: "backwards", start: "2400-01-01", end: "2000-01-01", want: -146097},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MustParseDate(tt.start).DaysUntil(MustParseDate(tt.end)); got != tt.want {
				t.Fatalf("DaysUntil(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestEnumerateDaysLongRange(t *testing.T) {
	t.Parallel()

	start, end := MustParseDate("1900-03-01"), MustParseDate("2300-02-28")
	days := EnumerateDays(start, end)
	if want := 146097; len(days) != want {
		t.Fatalf("expected %d days, got %d", want, len(days))
	}
	if days[len(days)-1] != end {
		t.Fatalf("expected last day %s, got %s", end, days[len(days)-1])
	}
	if got := SpanDays(start, end); got != len(days) {
		t.Fatalf("SpanDays = %d, want %d", got, len(days))
	}
}

func TestCheckTableRange(t *testing.T) {
	t.Parallel()

	start := MustParseDate("2025-01-01")
	if err := CheckTableRange(start, start.AddDays(MaxTableDays-1)); err != nil {
		t.Fatalf("a %d day range must be accepted, got %v", MaxTableDays, err)
	}
	if err := CheckTableRange(start, start.AddDays(MaxTableDays)); !errors.Is(err, ErrRangeTooLong) {
		t.Fatalf("expected ErrRangeTooLong, got %v", err)
	}
	if err := CheckTableRange(start, start.AddDays(-1)); err != nil {
		t.Fatalf("an empty range holds no days, got %v", err)
	}
}

func TestEnumerateDaysUnsetBounds(t *testing.T) {
	t.Parallel()

	if got := EnumerateDays(Date{}, MustParseDate("2025-06-01")); got != nil {
		t.Fatalf("expected empty result for unset start, got %v", got)
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	valid := []string{"00:00", "09:05", "23:59", " 17:00 "}
	for _, v := range valid {
		if !ValidClock(v) {
			t.Fatalf("expected %q to be valid", v)
		}
	}
	invalid := []string{"", "9:00", "24:00", "12:60", "12-30", "ab:cd", "12:3a", "+1:00"}
	for _, v := range invalid {
		if ValidClock(v) {
			t.Fatalf("expected %q to be invalid", v)
		}
	}
}
