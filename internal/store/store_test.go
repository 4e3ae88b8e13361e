package store

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"dayplanner/internal/model"

	"pgregory.net/rapid"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "absent.json"))

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Tasks) != 0 || len(doc.Events) != 0 || len(doc.Notes) != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
	if doc.Tasks == nil || doc.Events == nil || doc.Notes == nil {
		t.Error("collections should be empty slices, not nil")
	}
}

func TestLoadDefaultsMissingCollections(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"notes": [{"id": 1, "title": "a", "content": "", "created_at": "2024-01-01 00:00:00", "updated_at": "2024-01-01 00:00:00"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Notes) != 1 {
		t.Errorf("notes = %d, want 1", len(doc.Notes))
	}
	if doc.Tasks == nil || doc.Events == nil {
		t.Error("absent keys should load as empty collections")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"tasks": [`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path).Load(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSaveWritesAllKeysReadably(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	s := New(path)

	doc := &model.Document{
		Tasks: []model.Task{{
			ID:        1,
			Title:     "Купить молоко <срочно>",
			Priority:  model.PriorityHigh,
			CreatedAt: "2024-01-01 09:00:00",
		}},
	}
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, want := range []string{`"tasks"`, `"events": []`, `"notes": []`, "Купить молоко <срочно>", `"due_date": null`, "\n    "} {
		if !strings.Contains(text, want) {
			t.Errorf("saved file missing %q:\n%s", want, text)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the data file, found %d entries", len(entries))
	}
}

func documentGen() *rapid.Generator[*model.Document] {
	text := rapid.StringMatching(`[A-Za-zА-Яа-я0-9 .,!?]{0,30}`)
	date := rapid.Custom(func(t *rapid.T) string {
		return rapid.SampledFrom([]string{"2023-12-31", "2024-01-01", "2024-02-29", "2099-01-01"}).Draw(t, "date")
	})
	stamp := rapid.SampledFrom([]string{"2024-01-01 00:00:00", "2024-05-06 12:30:15"})
	optional := func(g *rapid.Generator[string]) *rapid.Generator[*string] {
		return rapid.Custom(func(t *rapid.T) *string {
			if rapid.Bool().Draw(t, "present") {
				v := g.Draw(t, "value")
				return &v
			}
			return nil
		})
	}

	return rapid.Custom(func(t *rapid.T) *model.Document {
		doc := &model.Document{}
		for i, n := 0, rapid.IntRange(0, 5).Draw(t, "tasks"); i < n; i++ {
			doc.Tasks = append(doc.Tasks, model.Task{
				ID:          i + 1,
				Title:       text.Draw(t, "title"),
				Description: text.Draw(t, "desc"),
				Priority:    rapid.SampledFrom(model.Priorities).Draw(t, "priority"),
				DueDate:     optional(date).Draw(t, "due"),
				Completed:   rapid.Bool().Draw(t, "completed"),
				CreatedAt:   stamp.Draw(t, "created"),
				UpdatedAt:   stamp.Draw(t, "updated"),
			})
		}
		for i, n := 0, rapid.IntRange(0, 5).Draw(t, "events"); i < n; i++ {
			var reminder *int
			if rapid.Bool().Draw(t, "hasReminder") {
				r := rapid.IntRange(0, 1440).Draw(t, "reminder")
				reminder = &r
			}
			doc.Events = append(doc.Events, model.Event{
				ID:          i + 1,
				Title:       text.Draw(t, "title"),
				Description: text.Draw(t, "desc"),
				Date:        date.Draw(t, "date"),
				Time:        optional(rapid.SampledFrom([]string{"00:00", "09:05", "23:59"})).Draw(t, "time"),
				Reminder:    reminder,
				CreatedAt:   stamp.Draw(t, "created"),
				UpdatedAt:   stamp.Draw(t, "updated"),
			})
		}
		for i, n := 0, rapid.IntRange(0, 5).Draw(t, "notes"); i < n; i++ {
			doc.Notes = append(doc.Notes, model.Note{
				ID:        i + 1,
				Title:     text.Draw(t, "title"),
				Content:   text.Draw(t, "content"),
				CreatedAt: stamp.Draw(t, "created"),
				UpdatedAt: stamp.Draw(t, "updated"),
			})
		}
		doc.Normalize()
		return doc
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		s := New(filepath.Join(dir, "roundtrip.json"))
		want := documentGen().Draw(rt, "doc")

		if err := s.Save(want); err != nil {
			rt.Fatalf("Save: %v", err)
		}
		got, err := s.Load()
		if err != nil {
			rt.Fatalf("Load: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			rt.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
		}
	})
}
