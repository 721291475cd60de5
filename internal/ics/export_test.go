package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d, h int) time.Time {
	return time.Date(2025, 6, d, h, 0, 0, 0, time.UTC)
}

func TestExportOneEventPerOccurrence(t *testing.T) {
	out, err := Export(Calendar{
		UID:         "draft-1",
		Summary:     "Rainforest Music Festival",
		Description: "Three nights of music",
		Location:    "1.5533,110.3592",
		Categories:  []string{"#Festival", "#culture"},
		Occurrences: []Occurrence{
			{Start: day(1, 9), End: day(1, 17)},
			{Start: day(2, 10), End: day(2, 15)},
			{Start: day(3, 9), End: day(3, 12)},
		},
	}, day(1, 0))
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(string(out)))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "draft-1-20250601", events[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Rainforest Music Festival", events[1].GetProperty(ical.ComponentPropertySummary).Value)

	start, err := events[1].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(day(2, 10)))
}

func TestExportSingleOccurrenceKeepsUID(t *testing.T) {
	out, err := Export(Calendar{UID: "draft-2", Summary: "Night market", Occurrences: []Occurrence{{Start: day(5, 18), End: day(7, 23)}}}, day(1, 0))
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(string(out)))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	assert.Equal(t, "draft-2", cal.Events()[0].GetProperty(ical.ComponentPropertyUniqueId).Value)
}

func TestExportRejectsInvalidInput(t *testing.T) {
	_, err := Export(Calendar{Summary: "x", Occurrences: []Occurrence{{Start: day(1, 9), End: day(1, 10)}}}, day(1, 0))
	assert.Error(t, err)

	_, err = Export(Calendar{UID: "x"}, day(1, 0))
	assert.Error(t, err)

	_, err = Export(Calendar{UID: "x", Occurrences: []Occurrence{{Start: day(1, 10), End: day(1, 9)}}}, day(1, 0))
	assert.Error(t, err)
}
