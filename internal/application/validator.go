package application

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/example/event-admin/internal/schedule"
)

// Region is a latitude/longitude bounding box, inclusive on every edge.
type Region struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// SarawakRegion is the default service area.
var SarawakRegion = Region{MinLatitude: 0.85, MaxLatitude: 5.05, MinLongitude: 109.5, MaxLongitude: 115.7}

// Contains reports whether the point lies inside the region.
func (r Region) Contains(lat, lon float64) bool {
	return lat >= r.MinLatitude && lat <= r.MaxLatitude && lon >= r.MinLongitude && lon <= r.MaxLongitude
}

// DefaultMaxImageBytes is the upload ceiling when none is configured.
const DefaultMaxImageBytes int64 = 5 << 20

// ValidationRules are the configurable limits used by ValidateDraft.
type ValidationRules struct {
	Region        Region
	MaxImageBytes int64
	// Audiences, when non-empty, is the catalog target audience tags must come from.
	Audiences []string
}

// DefaultValidationRules returns the Sarawak region with a 5 MiB image ceiling.
func DefaultValidationRules() ValidationRules {
	return ValidationRules{Region: SarawakRegion, MaxImageBytes: DefaultMaxImageBytes}
}

// ValidateDraft checks every rule against d at instant now and returns all failures
// together, in rule order. It returns nil when the draft is valid.
func ValidateDraft(d Draft, now time.Time, rules ValidationRules) *ValidationError {
	vErr := &ValidationError{}

	validateRequiredText(d, vErr)
	datesOK := validateDateRange(d, schedule.DateOf(now), vErr)
	validateTimeCompleteness(d, datesOK, vErr)
	validateSameDayOrder(d, datesOK, vErr)
	vErr.merge(CheckNotInPast(d, now))
	validateCoordinates(d, rules.Region, vErr)
	validateHashtags(d, vErr)
	validateAudience(d, rules.Audiences, vErr)
	validateRegistration(d, vErr)
	validateImage(d, rules.MaxImageBytes, vErr)

	if !vErr.HasErrors() {
		return nil
	}
	return vErr
}

// CheckNotInPast reports schedule entries dated today whose start is not strictly after now.
// It is run during validation and again right before dispatch.
func CheckNotInPast(d Draft, now time.Time) *ValidationError {
	vErr := &ValidationError{}
	today := schedule.DateOf(now)

	switch d.Mode {
	case schedule.ModeAdvanced:
		if d.Days == nil {
			break
		}
		for _, e := range d.Days.Entries() {
			if e.Date != today {
				continue
			}
			if start, err := schedule.ParseClock(e.Start); err == nil && !today.At(start, now.Location()).After(now) {
				vErr.add(dayField(e.Date, "start_time"), CodeTimePast,
					fmt.Sprintf("start time %s on %s has already passed", e.Start, e.Date))
			}
		}
	default:
		// Uniform times apply to every day of the range.
		if !schedule.Contains(d.StartDate, d.EndDate, today) {
			break
		}
		if start, err := schedule.ParseClock(d.UniformStart); err == nil && !today.At(start, now.Location()).After(now) {
			vErr.add("start_time", CodeTimePast, fmt.Sprintf("start time %s today has already passed", d.UniformStart))
		}
	}

	if !vErr.HasErrors() {
		return nil
	}
	return vErr
}

func validateRequiredText(d Draft, vErr *ValidationError) {
	if strings.TrimSpace(d.Name) == "" {
		vErr.add("name", CodeRequired, "name is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		vErr.add("description", CodeRequired, "description is required")
	}
	if strings.TrimSpace(d.EventType) == "" {
		vErr.add("event_type", CodeRequired, "event type is required")
	}
}

func validateDateRange(d Draft, today schedule.Date, vErr *ValidationError) bool {
	ok := true
	if d.StartDate.IsZero() {
		vErr.add("start_date", CodeRequired, "start date is required")
		ok = false
	}
	if d.EndDate.IsZero() {
		vErr.add("end_date", CodeRequired, "end date is required")
		ok = false
	}
	if ok && d.EndDate.Before(d.StartDate) {
		vErr.add("end_date", CodeDateRange, "end date must not be before start date")
		ok = false
	}
	if ok && d.EndDate.Before(today) {
		vErr.add("end_date", CodeDateRange, "end date must not be in the past")
	}
	if ok && d.Mode == schedule.ModeAdvanced && schedule.SpanDays(d.StartDate, d.EndDate) > schedule.MaxTableDays {
		vErr.add("end_date", CodeDateRange, fmt.Sprintf("per-day times cover at most %d days", schedule.MaxTableDays))
		ok = false
	}
	return ok
}

func validateTimeCompleteness(d Draft, datesOK bool, vErr *ValidationError) {
	switch d.Mode {
	case schedule.ModeUniform:
		checkClockField(d.UniformStart, "start_time", "start time", vErr)
		checkClockField(d.UniformEnd, "end_time", "end time", vErr)
		if d.Days != nil && d.Days.Len() > 0 {
			vErr.add("daily_schedule", CodeSchedule, "per-day times must be empty in uniform mode")
		}
	case schedule.ModeAdvanced:
		if !datesOK {
			return
		}
		days := schedule.EnumerateDays(d.StartDate, d.EndDate)
		inRange := make(map[schedule.Date]struct{}, len(days))
		for _, day := range days {
			inRange[day] = struct{}{}
			var iv schedule.Interval
			if d.Days != nil {
				iv, _ = d.Days.Entry(day)
			}
			checkClockField(iv.Start, dayField(day, "start_time"), "start time on "+day.String(), vErr)
			checkClockField(iv.End, dayField(day, "end_time"), "end time on "+day.String(), vErr)
		}
		if d.Days != nil {
			for _, e := range d.Days.Entries() {
				if _, ok := inRange[e.Date]; !ok {
					vErr.add(dayField(e.Date, "date"), CodeSchedule, fmt.Sprintf("%s is outside the event dates", e.Date))
				}
			}
		}
	default:
		vErr.add("time_mode", CodeSchedule, fmt.Sprintf("unknown time mode %q", d.Mode))
	}
}

func checkClockField(value, field, label string, vErr *ValidationError) {
	if strings.TrimSpace(value) == "" {
		vErr.add(field, CodeRequired, label+" is required")
		return
	}
	if !schedule.ValidClock(value) {
		vErr.add(field, CodeTimeFormat, label+" must be HH:MM")
	}
}

func validateSameDayOrder(d Draft, datesOK bool, vErr *ValidationError) {
	switch d.Mode {
	case schedule.ModeUniform:
		if !datesOK || d.StartDate != d.EndDate {
			return
		}
		if !endsAfterStart(d.UniformStart, d.UniformEnd) {
			vErr.add("end_time", CodeTimeOrder, "end time must be after start time")
		}
	case schedule.ModeAdvanced:
		if d.Days == nil {
			return
		}
		for _, e := range d.Days.Entries() {
			if !endsAfterStart(e.Start, e.End) {
				vErr.add(dayField(e.Date, "end_time"), CodeTimeOrder,
					fmt.Sprintf("end time on %s must be after start time", e.Date))
			}
		}
	}
}

// endsAfterStart is true unless both times parse and end is not after start; malformed
// times are reported by the completeness rule instead.
func endsAfterStart(start, end string) bool {
	s, errS := schedule.ParseClock(start)
	e, errE := schedule.ParseClock(end)
	if errS != nil || errE != nil {
		return true
	}
	return s.Before(e)
}

func validateCoordinates(d Draft, region Region, vErr *ValidationError) {
	lat, latErr := parseCoordinate(d.Latitude)
	lon, lonErr := parseCoordinate(d.Longitude)
	switch {
	case strings.TrimSpace(d.Latitude) == "" || strings.TrimSpace(d.Longitude) == "":
		vErr.add("coordinates", CodeRequired, "location coordinates are required")
	case latErr != nil || lonErr != nil:
		vErr.add("coordinates", CodeCoordinates, "coordinates must be decimal numbers")
	case !region.Contains(lat, lon):
		vErr.add("coordinates", CodeCoordinates, "location is outside the supported region")
	}
}

func parseCoordinate(value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coordinate %q is not finite", value)
	}
	return f, nil
}

func validateHashtags(d Draft, vErr *ValidationError) {
	if bad := InvalidHashtags(d.Hashtags); len(bad) > 0 {
		vErr.add("hashtags", CodeHashtags,
			fmt.Sprintf("hashtags must be letters and digits only: %s", strings.Join(bad, ", ")))
	}
}

func validateAudience(d Draft, catalog []string, vErr *ValidationError) {
	tags := normalizeAudience(d.TargetAudience)
	if len(tags) == 0 {
		vErr.add("target_audience", CodeAudience, "select at least one target audience")
		return
	}
	if len(catalog) == 0 {
		return
	}
	allowed := make(map[string]struct{}, len(catalog))
	for _, c := range catalog {
		allowed[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	var unknown []string
	for _, tag := range tags {
		if _, ok := allowed[strings.ToLower(tag)]; !ok {
			unknown = append(unknown, tag)
		}
	}
	if len(unknown) > 0 {
		vErr.add("target_audience", CodeAudience, "unknown target audience: "+strings.Join(unknown, ", "))
	}
}

func validateRegistration(d Draft, vErr *ValidationError) {
	if !d.Registration.Valid() {
		vErr.add("registration_required", CodeRegistration, `registration required must be "Yes" or "No"`)
	}
}

func validateImage(d Draft, maxBytes int64, vErr *ValidationError) {
	hasExisting := strings.TrimSpace(d.Image.Existing) != ""
	hasUpload := d.Image.Upload != nil
	switch {
	case !hasExisting && !hasUpload:
		vErr.add("image", CodeImage, "an event image is required")
		return
	case hasExisting && hasUpload:
		vErr.add("image", CodeImage, "provide either an existing image or a new upload, not both")
		return
	case hasExisting:
		return
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	upload := d.Image.Upload
	if !strings.HasPrefix(upload.ContentType, "image/") {
		vErr.add("image", CodeImage, fmt.Sprintf("uploaded file must be an image, got %s", upload.ContentType))
	}
	if upload.Size <= 0 {
		vErr.add("image", CodeImage, "uploaded image is empty")
	} else if upload.Size > maxBytes {
		vErr.add("image", CodeImage, fmt.Sprintf("image must not exceed %d MB", maxBytes/(1<<20)))
	}
}

func normalizeAudience(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func dayField(day schedule.Date, field string) string {
	return "daily_schedule." + day.String() + "." + field
}
