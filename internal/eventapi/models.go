// Package eventapi is the client for the remote Event Service that persists events.
package eventapi

// Event is a persisted event as returned by the Event Service.
type Event struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	EventType            string    `json:"eventType"`
	EventOrganizers      string    `json:"eventOrganizers"`
	EventHashtags        string    `json:"eventHashtags"`
	TargetAudience       []string  `json:"targetAudience"`
	RegistrationRequired string    `json:"registrationRequired"`
	StartDate            string    `json:"startDate"`
	EndDate              string    `json:"endDate"`
	StartTime            string    `json:"startTime"`
	EndTime              string    `json:"endTime"`
	DailySchedule        []DaySlot `json:"dailySchedule,omitempty"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	Image                string    `json:"image"`
}

// DaySlot is one day of a per-day schedule on the wire.
type DaySlot struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Registration values accepted by the Event Service.
const (
	RegistrationYes = "Yes"
	RegistrationNo  = "No"
)

// Payload is the create/update request body. It is sent as multipart/form-data.
//
// StartTime and EndTime are always present. DailySchedule is sent in addition to them
// for per-day events; consumers that only understand uniform timing ignore it.
type Payload struct {
	Name                 string
	Description          string
	EventType            string
	EventOrganizers      string
	EventHashtags        string
	TargetAudience       []string
	RegistrationRequired string
	StartDate            string
	EndDate              string
	StartTime            string
	EndTime              string
	DailySchedule        []DaySlot
	Latitude             float64
	Longitude            float64
	Image                *ImagePart
}

// ImagePart is a binary image attached to a payload.
type ImagePart struct {
	Filename    string
	ContentType string
	Data        []byte
}

type listResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Events  []Event `json:"events"`
}

type eventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Event   Event  `json:"event"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
