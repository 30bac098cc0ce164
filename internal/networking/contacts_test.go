package networking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/worxstance/worxstance/internal/store"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir(), "test", "user", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	book := NewBook(s)
	book.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return book
}

func TestBookAddAndList(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	added, err := book.Add(ctx, &Contact{Name: " Grace Hopper ", Company: "Navy", Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added.ID == "" {
		t.Fatal("expected a generated id")
	}
	if added.Status != StatusNew || added.Platform != PlatformOther || added.LastActionDate != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected defaults: %+v", added)
	}

	list, err := book.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != added.ID || list[0].Name != "Grace Hopper" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestBookAddValidates(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	cases := []struct {
		name    string
		contact *Contact
	}{
		{name: "nil", contact: nil},
		{name: "no name", contact: &Contact{Name: " "}},
		{name: "bad email", contact: &Contact{Name: "A", Email: "nope"}},
		{name: "bad platform", contact: &Contact{Name: "A", Platform: "Fax"}},
		{name: "bad status", contact: &Contact{Name: "A", Status: "friends"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := book.Add(ctx, tc.contact); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBookSetStatus(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	if err := book.SetStatus(ctx, "missing", StatusReplied); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	added, err := book.Add(ctx, &Contact{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := book.SetStatus(ctx, added.ID, "friends"); err == nil {
		t.Fatal("expected error for unknown status")
	}

	book.now = func() time.Time { return time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC) }
	if err := book.SetStatus(ctx, added.ID, StatusMeetingScheduled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := book.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusMeetingScheduled || got.LastActionDate != "2024-03-02T09:00:00Z" {
		t.Fatalf("unexpected contact: %+v", got)
	}
}

func TestBookLogOutreach(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	added, err := book.Add(ctx, &Contact{Name: "Ada", Platform: PlatformLinkedIn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := book.LogOutreach(ctx, added.ID, Outreach{Type: "pigeon"}); err == nil {
		t.Fatal("expected error for unknown outreach type")
	}

	if _, err := book.LogOutreach(ctx, added.ID, Outreach{Type: OutreachConnectionRequest}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := book.SetStatus(ctx, added.ID, StatusReplied); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := book.LogOutreach(ctx, added.ID, Outreach{Type: OutreachMessage, Content: "Thanks!"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := book.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.OutreachHistory) != 2 {
		t.Fatalf("expected two outreach entries, got %+v", got.OutreachHistory)
	}
	if got.OutreachHistory[1].Content != "Thanks!" || got.OutreachHistory[1].Date != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected outreach: %+v", got.OutreachHistory[1])
	}
	if got.Status != StatusReplied {
		t.Fatalf("expected status to stay replied, got %s", got.Status)
	}
}

func TestBookLogOutreachMarksNewContacted(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	added, err := book.Add(ctx, &Contact{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := book.LogOutreach(ctx, added.ID, Outreach{Type: OutreachEmail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusContacted {
		t.Fatalf("expected contacted, got %s", c.Status)
	}
}

func TestBookRemove(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)

	added, err := book.Add(ctx, &Contact{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := book.Remove(ctx, added.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := book.Get(ctx, added.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParsePlatform(t *testing.T) {
	cases := map[string]Platform{
		"":         PlatformOther,
		"linkedin": PlatformLinkedIn,
		" EMAIL ":  PlatformEmail,
		"Twitter":  PlatformTwitter,
	}
	for in, want := range cases {
		got, err := ParsePlatform(in)
		if err != nil || got != want {
			t.Fatalf("ParsePlatform(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePlatform("fax"); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestPersonalize(t *testing.T) {
	c := &Contact{Name: "Grace Brewster Hopper", Company: "Navy"}

	got := Personalize("Hi {{firstName}}, how is {{Company}}?", c)
	if got != "Hi Grace, how is Navy?" {
		t.Fatalf("unexpected text: %q", got)
	}

	if got := Personalize("Hello {{company}}", &Contact{Name: "Ada"}); got != "Hello your team" {
		t.Fatalf("unexpected fallback: %q", got)
	}
	if got := Personalize("Hi {{firstName}}", nil); got != "Hi {{firstName}}" {
		t.Fatalf("expected template untouched, got %q", got)
	}
}
