package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/event-admin/internal/persistence"
	"github.com/example/event-admin/internal/schedule"
)

// draftDocument is the stored form of a Draft. The per-day table is flattened into its
// active range plus entries.
type draftDocument struct {
	ID              string              `json:"id"`
	SourceEventID   string              `json:"source_event_id,omitempty"`
	TemplateEventID string              `json:"template_event_id,omitempty"`
	Action          Action              `json:"action"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	EventType       string              `json:"event_type"`
	Organizers      string              `json:"organizers"`
	Hashtags        string              `json:"hashtags"`
	StartDate       schedule.Date       `json:"start_date"`
	EndDate         schedule.Date       `json:"end_date"`
	Mode            schedule.Mode       `json:"mode"`
	UniformStart    string              `json:"uniform_start"`
	UniformEnd      string              `json:"uniform_end"`
	RangeStart      schedule.Date       `json:"range_start"`
	RangeEnd        schedule.Date       `json:"range_end"`
	Days            []schedule.DayEntry `json:"days,omitempty"`
	Latitude        string              `json:"latitude"`
	Longitude       string              `json:"longitude"`
	TargetAudience  []string            `json:"target_audience,omitempty"`
	Registration    Registration        `json:"registration,omitempty"`
	Image           ImageSource         `json:"image"`
	OriginalImage   string              `json:"original_image,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DraftStore adapts a persistence.DraftRepository to the DraftRepository used by the
// service, encoding drafts as JSON documents.
type DraftStore struct {
	repo persistence.DraftRepository
}

// NewDraftStore wraps repo.
func NewDraftStore(repo persistence.DraftRepository) *DraftStore {
	return &DraftStore{repo: repo}
}

// SaveDraft stores d, replacing any previous version.
func (s *DraftStore) SaveDraft(ctx context.Context, d Draft) error {
	record, err := encodeDraft(d)
	if err != nil {
		return err
	}
	return s.repo.UpsertDraft(ctx, record)
}

// GetDraft loads a draft by id.
func (s *DraftStore) GetDraft(ctx context.Context, id string) (Draft, error) {
	record, err := s.repo.GetDraft(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, err
	}
	return decodeDraft(record)
}

// ListDrafts loads every stored draft.
func (s *DraftStore) ListDrafts(ctx context.Context) ([]Draft, error) {
	records, err := s.repo.ListDrafts(ctx)
	if err != nil {
		return nil, err
	}
	drafts := make([]Draft, 0, len(records))
	for _, record := range records {
		d, err := decodeDraft(record)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// DeleteDraft removes a draft by id.
func (s *DraftStore) DeleteDraft(ctx context.Context, id string) error {
	if err := s.repo.DeleteDraft(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func encodeDraft(d Draft) (persistence.DraftRecord, error) {
	doc := draftDocument{
		ID:              d.ID,
		SourceEventID:   d.SourceEventID,
		TemplateEventID: d.TemplateEventID,
		Action:          d.Action,
		Name:            d.Name,
		Description:     d.Description,
		EventType:       d.EventType,
		Organizers:      d.Organizers,
		Hashtags:        d.Hashtags,
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		Mode:            d.Mode,
		UniformStart:    d.UniformStart,
		UniformEnd:      d.UniformEnd,
		Latitude:        d.Latitude,
		Longitude:       d.Longitude,
		TargetAudience:  d.TargetAudience,
		Registration:    d.Registration,
		Image:           d.Image,
		OriginalImage:   d.OriginalImage,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Days != nil {
		doc.RangeStart, doc.RangeEnd = d.Days.Range()
		doc.Days = d.Days.Entries()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return persistence.DraftRecord{}, fmt.Errorf("encode draft %s: %w", d.ID, err)
	}
	action := d.Action
	if action == "" {
		action = ActionCreate
	}
	return persistence.DraftRecord{
		ID:        d.ID,
		Action:    string(action),
		Name:      d.Name,
		Body:      body,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func decodeDraft(record persistence.DraftRecord) (Draft, error) {
	var doc draftDocument
	if err := json.Unmarshal(record.Body, &doc); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", record.ID, err)
	}
	mode := doc.Mode
	if mode == "" {
		mode = schedule.ModeUniform
	}
	return Draft{
		ID:              record.ID,
		SourceEventID:   doc.SourceEventID,
		TemplateEventID: doc.TemplateEventID,
		Action:          doc.Action,
		Name:            doc.Name,
		Description:     doc.Description,
		EventType:       doc.EventType,
		Organizers:      doc.Organizers,
		Hashtags:        doc.Hashtags,
		StartDate:       doc.StartDate,
		EndDate:         doc.EndDate,
		Mode:            mode,
		UniformStart:    doc.UniformStart,
		UniformEnd:      doc.UniformEnd,
		Days:            schedule.RestoreDaySchedule(doc.RangeStart, doc.RangeEnd, doc.Days),
		Latitude:        doc.Latitude,
		Longitude:       doc.Longitude,
		TargetAudience:  doc.TargetAudience,
		Registration:    doc.Registration,
		Image:           doc.Image,
		OriginalImage:   doc.OriginalImage,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}, nil
}
