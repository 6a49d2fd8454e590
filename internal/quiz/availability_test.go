package quiz

import (
	"errors"
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func TestResolve(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	cases := []struct {
		name string
		quiz Quiz
		want Availability
	}{
		{"no bounds", Quiz{}, Unknown},
		{"before open", Quiz{AvailableFrom: tp(future)}, NotYetOpen},
		{"after close", Quiz{AvailableUntil: tp(past)}, Closed},
		{"inside window", Quiz{AvailableFrom: tp(past), AvailableUntil: tp(future)}, Available},
		{"open-ended from", Quiz{AvailableFrom: tp(past)}, Available},
		{"open-ended until", Quiz{AvailableUntil: tp(future)}, Available},
		{"at the boundary", Quiz{AvailableFrom: tp(now), AvailableUntil: tp(now)}, Available},
	}
	for _, c := range cases {
		if got := Resolve(c.quiz, now); got != c.want {
			t.Fatalf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

func TestDaysUntilOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// exactly 2 days out
	z := Quiz{AvailableFrom: tp(now.Add(48 * time.Hour))}
	if d := DaysUntilOpen(z, now); d != 2 {
		t.Fatalf("want 2 days, got %d", d)
	}
	// 1 day + 1 hour rounds up to 2
	z = Quiz{AvailableFrom: tp(now.Add(25 * time.Hour))}
	if d := DaysUntilOpen(z, now); d != 2 {
		t.Fatalf("want ceil to 2 days, got %d", d)
	}
	// 1 hour rounds up to 1
	z = Quiz{AvailableFrom: tp(now.Add(time.Hour))}
	if d := DaysUntilOpen(z, now); d != 1 {
		t.Fatalf("want 1 day, got %d", d)
	}
	// already open
	z = Quiz{AvailableFrom: tp(now.Add(-time.Hour))}
	if d := DaysUntilOpen(z, now); d != 0 {
		t.Fatalf("want 0 days, got %d", d)
	}
}

func TestVisibleTo(t *testing.T) {
	unpublished := Quiz{Published: false}
	if VisibleTo(unpublished, RoleStudent) {
		t.Fatalf("students must not see unpublished quizzes")
	}
	if !VisibleTo(unpublished, RoleFaculty) {
		t.Fatalf("faculty must see unpublished quizzes")
	}
	if !VisibleTo(Quiz{Published: true}, RoleStudent) {
		t.Fatalf("students must see published quizzes")
	}
}

func TestCheckEntry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := CheckEntry(Quiz{Published: false}, now, 1); err == nil {
		t.Fatalf("unpublished quiz must reject entry")
	}

	z := Quiz{Published: true, AvailableFrom: tp(now.Add(48 * time.Hour))}
	err := CheckEntry(z, now, 1)
	var inel *IneligibleError
	if !errors.As(err, &inel) {
		t.Fatalf("want IneligibleError, got %v", err)
	}
	if inel.DaysUntilOpen != 2 {
		t.Fatalf("want 2 days until open, got %d", inel.DaysUntilOpen)
	}

	z = Quiz{Published: true, AvailableUntil: tp(now.Add(-time.Hour))}
	if err := CheckEntry(z, now, 1); err == nil {
		t.Fatalf("closed quiz must reject entry")
	}

	z = Quiz{Published: true}
	if err := CheckEntry(z, now, 0); err == nil {
		t.Fatalf("exhausted attempts must reject entry")
	}
	if err := CheckEntry(z, now, 1); err != nil {
		t.Fatalf("open quiz with attempts remaining rejected: %v", err)
	}
}

func TestSortByAvailableFrom(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	list := []Quiz{
		{ID: "late", AvailableFrom: tp(now.Add(72 * time.Hour))},
		{ID: "none"},
		{ID: "early", AvailableFrom: tp(now)},
	}
	SortByAvailableFrom(list)
	want := []string{"none", "early", "late"}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestFilterVisible(t *testing.T) {
	list := []Quiz{{ID: "a", Published: true}, {ID: "b"}, {ID: "c", Published: true}}
	got := FilterVisible(list, RoleStudent)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("student filter wrong: %+v", got)
	}
	if len(FilterVisible(list, RoleFaculty)) != 3 {
		t.Fatalf("faculty must see all quizzes")
	}
}
