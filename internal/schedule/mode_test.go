package schedule

import (
	"errors"
	"testing"
)

func TestSwitchToAdvancedPopulatesEmptyTable(t *testing.T) {
	t.Parallel()

	start, end := MustParseDate("2025-06-01"), MustParseDate("2025-06-03")
	table := NewDaySchedule()
	table.SetRange(start, end)

	result, err := Switch(table, ModeUniform, ModeAdvanced, start, end, Interval{Start: "10:00", End: "16:00"})
	if err != nil {
		t.Fatalf("Switch returned error: %v", err)
	}
	if len(result.Populated) != 3 || table.Len() != 3 {
		t.Fatalf("expected three populated days, got %+v", result)
	}
}

func TestSwitchToAdvancedKeepsExistingEntries(t *testing.T) {
	t.Parallel()

	start, end := MustParseDate("2025-06-01"), MustParseDate("2025-06-02")
	table := NewDaySchedule()
	table.Resync(start, end, DefaultInterval)
	if err := table.SetEntry(start, "06:00", "07:00"); err != nil {
		t.Fatalf("SetEntry returned error: %v", err)
	}

	if _, err := Switch(table, ModeAdvanced, ModeAdvanced, start, end, Interval{Start: "12:00", End: "13:00"}); err != nil {
		t.Fatalf("Switch returned error: %v", err)
	}
	if iv, _ := table.Entry(start); iv.Start != "06:00" {
		t.Fatalf("expected existing entry to be kept, got %+v", iv)
	}
}

func TestSwitchRoundTripRestoresUneditedTable(t *testing.T) {
	t.Parallel()

	start, end := MustParseDate("2025-06-01"), MustParseDate("2025-06-04")
	defaults := Interval{Start: "09:30", End: "15:00"}
	table := NewDaySchedule()
	if _, err := Switch(table, ModeUniform, ModeAdvanced, start, end, defaults); err != nil {
		t.Fatalf("Switch returned error: %v", err)
	}
	before := table.Clone()

	result, err := Switch(table, ModeAdvanced, ModeUniform, start, end, defaults)
	if err != nil {
		t.Fatalf("Switch returned error: %v", err)
	}
	if result.Discarded != 4 || table.Len() != 0 {
		t.Fatalf("expected switching to uniform to discard four days, got %+v (len %d)", result, table.Len())
	}

	if _, err := Switch(table, ModeUniform, ModeAdvanced, start, end, defaults); err != nil {
		t.Fatalf("Switch returned error: %v", err)
	}
	if !table.Equal(before) {
		t.Fatalf("expected round trip to restore %v, got %v", before.Entries(), table.Entries())
	}
}

func TestSwitchRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	if _, err := Switch(NewDaySchedule(), ModeUniform, Mode("weekly"), Date{}, Date{}, DefaultInterval); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSwitchToAdvancedRejectsOverlongRange(t *testing.T) {
	t.Parallel()

	table := NewDaySchedule()
	start := MustParseDate("0001-01-01")
	end := MustParseDate("9999-12-31")
	table.SetRange(start, end)

	if _, err := Switch(table, ModeUniform, ModeAdvanced, start, end, DefaultInterval); !errors.Is(err, ErrRangeTooLong) {
		t.Fatalf("expected ErrRangeTooLong, got %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected table to stay empty, got %d entries", table.Len())
	}
}
