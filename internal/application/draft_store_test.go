package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/event-admin/internal/persistence"
	"github.com/example/event-admin/internal/schedule"
)

func TestDraftStoreRoundTripPreservesScheduleAndMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewDraftStore(persistence.NewMemoryDraftRepository())

	d := validDraft(schedule.MustParseDate("2025-06-01"))
	d.SetDates(schedule.MustParseDate("2025-06-01"), schedule.MustParseDate("2025-06-03"))
	if _, err := d.SwitchMode(schedule.ModeAdvanced); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if err := d.SetDayTimes(schedule.MustParseDate("2025-06-02"), "13:00", "16:30"); err != nil {
		t.Fatalf("SetDayTimes: %v", err)
	}
	d.Image = ImageSource{Upload: uploadPreview("h-1", 512)}
	d.OriginalImage = "uploads/rmf.jpg"

	if err := store.SaveDraft(ctx, d); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := store.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}

	if got.Mode != schedule.ModeAdvanced || !got.Days.Equal(d.Days) {
		t.Fatalf("per-day table changed: %+v vs %+v", got.Days.Entries(), d.Days.Entries())
	}
	if start, end := got.Days.Range(); start != d.StartDate || end != d.EndDate {
		t.Fatalf("range lost: %s..%s", start, end)
	}
	if got.Image.Upload == nil || got.Image.Upload.Handle != "h-1" || got.OriginalImage != d.OriginalImage {
		t.Fatalf("image source lost: %+v", got.Image)
	}
	if got.Registration != d.Registration || len(got.TargetAudience) != 2 {
		t.Fatalf("fields lost: %+v", got)
	}
}

func TestDraftStoreUniformDraftKeepsRangeWithoutEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewDraftStore(persistence.NewMemoryDraftRepository())
	d := validDraft(schedule.MustParseDate("2025-06-05"))
	if err := store.SaveDraft(ctx, d); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	got, err := store.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if got.Days.Len() != 0 {
		t.Fatalf("uniform drafts store no entries, got %d", got.Days.Len())
	}
	if _, err := got.SwitchMode(schedule.ModeAdvanced); err != nil || got.Days.Len() != 1 {
		t.Fatalf("restored range should allow switching to advanced, err=%v len=%d", err, got.Days.Len())
	}
}

func TestDraftStoreNotFound(t *testing.T) {
	t.Parallel()

	store := NewDraftStore(persistence.NewMemoryDraftRepository())
	if _, err := store.GetDraft(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteDraft(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
