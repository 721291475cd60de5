package application

import (
	"testing"
	"time"

	"github.com/example/event-admin/internal/schedule"
)

func problemCodes(vErr *ValidationError) []string {
	if vErr == nil {
		return nil
	}
	codes := make([]string, 0, len(vErr.Problems))
	for _, p := range vErr.Problems {
		codes = append(codes, p.Code)
	}
	return codes
}

func TestValidateDraft_ValidDraftPasses(t *testing.T) {
	t.Parallel()

	d := validDraft(schedule.DateOf(testNow).AddDays(3))
	if vErr := ValidateDraft(d, testNow, DefaultValidationRules()); vErr != nil {
		t.Fatalf("expected no problems, got %+v", vErr.Problems)
	}
}

func TestValidateDraft_StartTimeInPastToday(t *testing.T) {
	t.Parallel()

	today := schedule.DateOf(testNow)
	d := validDraft(today)
	d.UniformStart = testNow.Add(-time.Minute).Format("15:04")
	d.UniformEnd = "18:00"

	vErr := ValidateDraft(d, testNow, DefaultValidationRules())
	if !vErr.Has(CodeTimePast) {
		t.Fatalf("expected time_past problem, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_StartTimeEqualToNowIsPast(t *testing.T) {
	t.Parallel()

	d := validDraft(schedule.DateOf(testNow))
	d.UniformStart = testNow.Format("15:04")

	if vErr := ValidateDraft(d, testNow, DefaultValidationRules()); !vErr.Has(CodeTimePast) {
		t.Fatalf("a start equal to now must be rejected, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_SameDayEndNotAfterStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end string
	}{
		{name: "equal", start: "14:00", end: "14:00"},
		{name: "before", start: "14:00", end: "13:59"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDraft(schedule.DateOf(testNow))
			d.UniformStart, d.UniformEnd = tt.start, tt.end

			vErr := ValidateDraft(d, testNow, DefaultValidationRules())
			if vErr == nil || len(vErr.Problems) != 1 || vErr.Problems[0].Code != CodeTimeOrder {
				t.Fatalf("expected only a time_order problem, got %v", problemCodes(vErr))
			}
		})
	}
}

func TestValidateDraft_MultiDayUniformAllowsEndBeforeStart(t *testing.T) {
	t.Parallel()

	start := schedule.DateOf(testNow).AddDays(2)
	d := validDraft(start)
	d.SetDates(start, start.AddDays(1))
	d.UniformStart, d.UniformEnd = "20:00", "02:00"

	if vErr := ValidateDraft(d, testNow, DefaultValidationRules()); vErr != nil {
		t.Fatalf("overnight multi-day event should validate, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_ReportsAllFailuresInRuleOrder(t *testing.T) {
	t.Parallel()

	d := NewDraft("d", testNow)
	d.Hashtags = "ok, bad-tag"
	d.Registration = "Maybe"
	d.Latitude, d.Longitude = "north", "110"

	vErr := ValidateDraft(d, testNow, DefaultValidationRules())
	want := []string{
		CodeRequired, CodeRequired, CodeRequired, // name, description, event type
		CodeRequired, CodeRequired, // start date, end date
		CodeRequired, CodeRequired, // start time, end time
		CodeCoordinates,
		CodeHashtags,
		CodeAudience,
		CodeRegistration,
		CodeImage,
	}
	got := problemCodes(vErr)
	if len(got) != len(want) {
		t.Fatalf("expected %d problems, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("problem %d: want %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestValidateDraft_UniformRangeSpanningTodayChecksTodaysStart(t *testing.T) {
	t.Parallel()

	today := schedule.DateOf(testNow)
	d := validDraft(today)
	d.SetDates(today.AddDays(-1), today.AddDays(1))
	d.UniformStart, d.UniformEnd = "07:00", "18:00"

	vErr := ValidateDraft(d, testNow, DefaultValidationRules())
	if !vErr.Has(CodeTimePast) {
		t.Fatalf("expected time_past for today's 07:00 start, got %v", problemCodes(vErr))
	}
	if vErr := CheckNotInPast(d, testNow); !vErr.Has(CodeTimePast) {
		t.Fatalf("dispatch check must also reject today's passed start")
	}

	d.UniformStart = "09:00"
	if vErr := ValidateDraft(d, testNow, DefaultValidationRules()); vErr != nil {
		t.Fatalf("an ongoing event whose start today is ahead should validate, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_DatesEntirelyInPast(t *testing.T) {
	t.Parallel()

	today := schedule.DateOf(testNow)
	tests := []struct {
		name     string
		advanced bool
		start    schedule.Date
		end      schedule.Date
	}{
		{name: "single day uniform", start: today.AddDays(-31), end: today.AddDays(-31)},
		{name: "multi day advanced", advanced: true, start: today.AddDays(-31), end: today.AddDays(-29)},
		{name: "ended yesterday", start: today.AddDays(-3), end: today.AddDays(-1)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDraft(tt.start)
			if tt.advanced {
				if _, err := d.SwitchMode(schedule.ModeAdvanced); err != nil {
					t.Fatalf("SwitchMode: %v", err)
				}
			}
			d.SetDates(tt.start, tt.end)

			vErr := ValidateDraft(d, testNow, DefaultValidationRules())
			if !vErr.Has(CodeDateRange) {
				t.Fatalf("expected date_range problem, got %v", problemCodes(vErr))
			}
			if _, ok := vErr.FieldErrors()["end_date"]; !ok {
				t.Fatalf("expected end_date field error, got %v", vErr.FieldErrors())
			}
		})
	}
}

func TestValidateDraft_AdvancedRangeTooLong(t *testing.T) {
	t.Parallel()

	start := schedule.DateOf(testNow).AddDays(1)
	d := validDraft(start)
	if _, err := d.SwitchMode(schedule.ModeAdvanced); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	d.EndDate = start.AddDays(schedule.MaxTableDays)

	vErr := ValidateDraft(d, testNow, DefaultValidationRules())
	if vErr == nil || len(vErr.Problems) != 1 || vErr.Problems[0].Code != CodeDateRange {
		t.Fatalf("expected a single date_range problem, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_EndDateBeforeStartDate(t *testing.T) {
	t.Parallel()

	start := schedule.DateOf(testNow).AddDays(5)
	d := validDraft(start)
	d.StartDate, d.EndDate = start, start.AddDays(-1)

	if vErr := ValidateDraft(d, testNow, DefaultValidationRules()); !vErr.Has(CodeDateRange) {
		t.Fatalf("expected date_range problem, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_TimeFormat(t *testing.T) {
	t.Parallel()

	d := validDraft(schedule.DateOf(testNow).AddDays(1))
	d.UniformStart = "9am"

	vErr := ValidateDraft(d, testNow, DefaultValidationRules())
	if !vErr.Has(CodeTimeFormat) {
		t.Fatalf("expected time_format, got %v", problemCodes(vErr))
	}
	if vErr.FieldErrors()["start_time"] == "" {
		t.Fatalf("expected start_time field error")
	}
}

func TestValidateDraft_AdvancedMode(t *testing.T) {
	t.Parallel()

	today := schedule.DateOf(testNow)
	d := validDraft(today)
	d.SetDates(today, today.AddDays(2))
	if _, err := d.SwitchMode(schedule.ModeAdvanced); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if err := d.SetDayTimes(today, "07:30", "12:00"); err != nil {
		t.Fatalf("SetDayTimes today: %v", err)
	}
	if err := d.SetDayTimes(today.AddDays(1), "15:00", "11:00"); err != nil {
		t.Fatalf("SetDayTimes tomorrow: %v", err)
	}
	if err := d.SetDayTimes(today.AddDays(2), "", "12:00"); err != nil {
		t.Fatalf("SetDayTimes last day: %v", err)
	}

	vErr := ValidateDraft(d, testNow, DefaultValidationRules())
	fields := vErr.FieldErrors()
	for _, field := range []string{
		dayField(today.AddDays(2), "start_time"),
		dayField(today.AddDays(1), "end_time"),
		dayField(today, "start_time"),
	} {
		if _, ok := fields[field]; !ok {
			t.Fatalf("expected problem on %s, got %v", field, fields)
		}
	}
	if !vErr.Has(CodeTimePast) || !vErr.Has(CodeTimeOrder) || !vErr.Has(CodeRequired) {
		t.Fatalf("unexpected codes %v", problemCodes(vErr))
	}
}

func TestValidateDraft_UniformModeRejectsLeftoverDays(t *testing.T) {
	t.Parallel()

	day := schedule.DateOf(testNow).AddDays(1)
	d := validDraft(day)
	d.Days = schedule.RestoreDaySchedule(day, day, []schedule.DayEntry{{Date: day, Interval: schedule.DefaultInterval}})

	if vErr := ValidateDraft(d, testNow, DefaultValidationRules()); !vErr.Has(CodeSchedule) {
		t.Fatalf("expected schedule problem, got %v", problemCodes(vErr))
	}
}

func TestValidateDraft_Coordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lon string
		ok       bool
	}{
		{name: "kuching", lat: "1.5533", lon: "110.3592", ok: true},
		{name: "edge inclusive", lat: "0.85", lon: "115.7", ok: true},
		{name: "kuala lumpur", lat: "3.139", lon: "101.6869"},
		{name: "not a number", lat: "1.5x", lon: "110"},
		{name: "missing", lat: "", lon: "110"},
		{name: "nan", lat: "NaN", lon: "110"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDraft(schedule.DateOf(testNow).AddDays(1))
			d.Latitude, d.Longitude = tt.lat, tt.lon
			vErr := ValidateDraft(d, testNow, DefaultValidationRules())
			if tt.ok && vErr != nil {
				t.Fatalf("expected valid, got %v", problemCodes(vErr))
			}
			if !tt.ok && vErr == nil {
				t.Fatalf("expected coordinate problem")
			}
		})
	}
}

func TestValidateDraft_AudienceCatalog(t *testing.T) {
	t.Parallel()

	rules := DefaultValidationRules()
	rules.Audiences = []string{"Local", "Tourist", "Student"}

	d := validDraft(schedule.DateOf(testNow).AddDays(1))
	d.TargetAudience = []string{"local", "Investor"}

	vErr := ValidateDraft(d, testNow, rules)
	if vErr == nil || vErr.FieldErrors()["target_audience"] != "unknown target audience: Investor" {
		t.Fatalf("unexpected result %+v", vErr)
	}
}

func TestValidateDraft_Image(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		image ImageSource
		ok    bool
	}{
		{name: "existing", image: ImageSource{Existing: "uploads/a.jpg"}, ok: true},
		{name: "upload", image: ImageSource{Upload: uploadPreview("h", 1024)}, ok: true},
		{name: "none", image: ImageSource{}},
		{name: "both", image: ImageSource{Existing: "uploads/a.jpg", Upload: uploadPreview("h", 1024)}},
		{name: "too large", image: ImageSource{Upload: uploadPreview("h", DefaultMaxImageBytes+1)}},
		{name: "empty", image: ImageSource{Upload: uploadPreview("h", 0)}},
		{name: "not an image", image: ImageSource{Upload: &pdfPreview}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDraft(schedule.DateOf(testNow).AddDays(1))
			d.Image = tt.image
			vErr := ValidateDraft(d, testNow, DefaultValidationRules())
			if tt.ok != (vErr == nil) {
				t.Fatalf("ok=%v but got %v", tt.ok, problemCodes(vErr))
			}
			if !tt.ok && !vErr.Has(CodeImage) {
				t.Fatalf("expected image problem, got %v", problemCodes(vErr))
			}
		})
	}
}

func TestCheckNotInPast(t *testing.T) {
	t.Parallel()

	today := schedule.DateOf(testNow)

	future := validDraft(today)
	future.UniformStart = "08:01"
	if vErr := CheckNotInPast(future, testNow); vErr != nil {
		t.Fatalf("08:01 is after 08:00, got %v", problemCodes(vErr))
	}
	if vErr := CheckNotInPast(future, testNow.Add(time.Minute)); !vErr.Has(CodeTimePast) {
		t.Fatalf("expected time_past once the clock reaches the start")
	}

	tomorrow := validDraft(today.AddDays(1))
	tomorrow.UniformStart = "00:00"
	if vErr := CheckNotInPast(tomorrow, testNow); vErr != nil {
		t.Fatalf("tomorrow's start is never in the past, got %v", problemCodes(vErr))
	}
}
