package testfixtures

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/eventapi"
	"github.com/example/event-admin/internal/media"
	"github.com/example/event-admin/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("draft"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("draft")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// DraftServiceDeps captures dependencies for constructing a draft service. Nil
// dependencies are replaced with in-memory implementations.
type DraftServiceDeps struct {
	Events      application.EventService
	Drafts      application.DraftRepository
	Previews    application.PreviewStore
	Rules       *application.ValidationRules
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewDraftService builds a draft service using the supplied dependencies combined with
// the factory defaults.
func (f *ServiceFactory) NewDraftService(tb testing.TB, deps DraftServiceDeps) *application.DraftService {
	tb.Helper()

	if deps.Events == nil {
		deps.Events = NewFakeEventService()
	}
	if deps.Drafts == nil {
		deps.Drafts = application.NewDraftStore(persistence.NewMemoryDraftRepository())
	}
	if deps.Previews == nil {
		deps.Previews = NewPreviewStore(tb, f.Clock)
	}
	rules := application.DefaultValidationRules()
	if deps.Rules != nil {
		rules = *deps.Rules
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewDraftServiceWithLogger(deps.Events, deps.Drafts, deps.Previews, rules, idGen, now, deps.Logger)
}

// NewPreviewStore returns a media store in a temporary directory that is closed when
// the test ends.
func NewPreviewStore(tb testing.TB, clock *Clock) *media.Store {
	tb.Helper()

	store, err := media.NewStore(tb.TempDir(), 0, clock.NowFunc(), nil)
	if err != nil {
		tb.Fatalf("failed to create preview store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// FakeEventService is an in-memory Event Service. Errors set on it are returned by the
// matching operation until cleared.
type FakeEventService struct {
	mu     sync.Mutex
	events map[string]eventapi.Event
	order  []string
	images map[string]eventapi.ImagePart
	next   int

	Created []eventapi.Payload
	Updated map[string]eventapi.Payload

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	FetchErr  error
}

// NewFakeEventService returns an empty fake seeded with the given events.
func NewFakeEventService(events ...eventapi.Event) *FakeEventService {
	f := &FakeEventService{
		events:  make(map[string]eventapi.Event),
		images:  make(map[string]eventapi.ImagePart),
		Updated: make(map[string]eventapi.Payload),
	}
	for _, ev := range events {
		f.Put(ev)
	}
	return f
}

// Put stores ev, replacing an event with the same id.
func (f *FakeEventService) Put(ev eventapi.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[ev.ID]; !ok {
		f.order = append(f.order, ev.ID)
	}
	f.events[ev.ID] = ev
}

// PutImage makes ref downloadable through FetchImage.
func (f *FakeEventService) PutImage(ref string, part eventapi.ImagePart) {
	f.mu.Lock()
	f.images[ref] = part
	f.mu.Unlock()
}

// ListEvents returns the stored events in insertion order.
func (f *FakeEventService) ListEvents(ctx context.Context) ([]eventapi.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]eventapi.Event, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.events[id])
	}
	return out, nil
}

// CreateEvent records payload and stores a new event built from it.
func (f *FakeEventService) CreateEvent(ctx context.Context, payload eventapi.Payload) (eventapi.Event, error) {
	f.mu.Lock()
	if f.CreateErr != nil {
		err := f.CreateErr
		f.mu.Unlock()
		return eventapi.Event{}, err
	}
	f.next++
	id := fmt.Sprintf("remote-%d", f.next)
	f.Created = append(f.Created, payload)
	f.mu.Unlock()

	ev := eventFromPayload(id, payload)
	f.Put(ev)
	return ev, nil
}

// UpdateEvent records payload and replaces the stored event.
func (f *FakeEventService) UpdateEvent(ctx context.Context, id string, payload eventapi.Payload) (eventapi.Event, error) {
	f.mu.Lock()
	if f.UpdateErr != nil {
		err := f.UpdateErr
		f.mu.Unlock()
		return eventapi.Event{}, err
	}
	if _, ok := f.events[id]; !ok {
		f.mu.Unlock()
		return eventapi.Event{}, &eventapi.RemoteError{Op: "update event", StatusCode: 404, Message: "Event not found", Err: eventapi.ErrEventNotFound}
	}
	f.Updated[id] = payload
	f.mu.Unlock()

	ev := eventFromPayload(id, payload)
	f.Put(ev)
	return ev, nil
}

// DeleteEvent removes an event.
func (f *FakeEventService) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.events[id]; !ok {
		return &eventapi.RemoteError{Op: "delete event", StatusCode: 404, Message: "Event not found", Err: eventapi.ErrEventNotFound}
	}
	delete(f.events, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// FetchImage returns an image registered with PutImage.
func (f *FakeEventService) FetchImage(ctx context.Context, ref string) (eventapi.ImagePart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return eventapi.ImagePart{}, f.FetchErr
	}
	part, ok := f.images[ref]
	if !ok {
		return eventapi.ImagePart{}, &eventapi.RemoteError{Op: "fetch image", StatusCode: 404, Err: eventapi.ErrEventNotFound}
	}
	return part, nil
}

func eventFromPayload(id string, p eventapi.Payload) eventapi.Event {
	ev := eventapi.Event{
		ID:                   id,
		Name:                 p.Name,
		Description:          p.Description,
		EventType:            p.EventType,
		EventOrganizers:      p.EventOrganizers,
		EventHashtags:        p.EventHashtags,
		TargetAudience:       p.TargetAudience,
		RegistrationRequired: p.RegistrationRequired,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		StartTime:            p.StartTime,
		EndTime:              p.EndTime,
		DailySchedule:        p.DailySchedule,
		Latitude:             p.Latitude,
		Longitude:            p.Longitude,
	}
	if p.Image != nil {
		ev.Image = "uploads/" + p.Image.Filename
	}
	return ev
}
