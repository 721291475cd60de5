// Package http provides HTTP handlers and middleware for the event admin API.
//
// The router exposes the following endpoints:
//   - GET /events: published events from the Event Service.
//   - DELETE /events/{id}: deletes a published event.
//   - POST /events/{id}/edit: opens a draft for an event. Events whose end date has
//     passed open as a new create draft dated today instead of an update.
//   - GET /drafts, POST /drafts: list drafts or start an empty one.
//   - GET /drafts/{id}, PATCH /drafts/{id}, DELETE /drafts/{id}: read, patch or discard a
//     draft. Patching either date resynchronizes the per-day table.
//   - PUT /drafts/{id}/mode: {"mode":"uniform|advanced"}.
//   - PUT /drafts/{id}/days/{date}: {"start_time","end_time"} for one day in advanced mode.
//   - PUT /drafts/{id}/image, DELETE /drafts/{id}/image: attach a multipart "image" upload
//     or drop it and fall back to the original image.
//   - POST /drafts/{id}/validate: every validation problem, in rule order.
//   - POST /drafts/{id}/submit: validate, assemble and send to the Event Service.
//   - GET /drafts/{id}/calendar.ics: iCalendar rendering of the draft's schedule.
//   - GET /healthz: liveness probe.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
