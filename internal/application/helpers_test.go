package application

import (
	"time"

	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/schedule"
)

var kuching = time.FixedZone("MYT", 8*60*60)

// testNow is 2025-06-01 08:00 in Kuching.
var testNow = time.Date(2025, time.June, 1, 8, 0, 0, 0, kuching)

// validDraft returns a uniform create draft on day that passes every rule at testNow.
func validDraft(day schedule.Date) Draft {
	d := NewDraft("draft-1", testNow)
	d.Name = "Rainforest Music Festival"
	d.Description = "Three days of world music"
	d.EventType = "Music"
	d.Organizers = "Sarawak Tourism Board"
	d.Hashtags = "#Music, #Sarawak"
	d.UniformStart, d.UniformEnd = "10:00", "18:00"
	d.Latitude, d.Longitude = "1.5533", "110.3592"
	d.TargetAudience = []string{"Local", "Tourist"}
	d.Registration = RegistrationYes
	d.Image = ImageSource{Existing: "uploads/rmf.jpg", Reuse: true}
	d.SetDates(day, day)
	return d
}

func uploadPreview(handle string, size int64) *media.Preview {
	return &media.Preview{Handle: handle, Filename: "poster.png", ContentType: "image/png", Size: size, CreatedAt: testNow}
}

// pdfPreview is an upload whose sniffed type is not an image.
var pdfPreview = media.Preview{Handle: "pdf", Filename: "flyer.pdf", ContentType: "application/pdf", Size: 2048}
