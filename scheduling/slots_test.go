package scheduling

import (
	"testing"
	"time"
)

func TestGridSlots_AscendingNoDuplicates(t *testing.T) {
	grid := DefaultGrid()
	slots := grid.Slots()

	if len(slots) != 36 {
		t.Fatalf("expected 36 slots between 08:00 and 17:00 at 15 minute steps, got %d", len(slots))
	}
	if slots[0] != "08:00" {
		t.Errorf("expected first slot 08:00, got %s", slots[0])
	}
	if slots[len(slots)-1] != "16:45" {
		t.Errorf("expected last slot 16:45, got %s", slots[len(slots)-1])
	}

	seen := make(map[string]bool)
	for i, s := range slots {
		if seen[s] {
			t.Errorf("duplicate slot %s", s)
		}
		seen[s] = true

		if i == 0 {
			continue
		}
		prev, _ := time.Parse(TimeLayout, slots[i-1])
		cur, _ := time.Parse(TimeLayout, s)
		if !cur.After(prev) {
			t.Errorf("slots not ascending at index %d: %s then %s", i, slots[i-1], s)
		}
		if cur.Sub(prev) != grid.Step {
			t.Errorf("step between %s and %s is %v, want %v", slots[i-1], s, cur.Sub(prev), grid.Step)
		}
	}
}

func TestGridContains(t *testing.T) {
	grid := DefaultGrid()

	for _, tc := range []struct {
		slot string
		want bool
	}{
		{"08:00", true},
		{"16:45", true},
		{"09:15", true},
		{"17:00", false}, // closing time, not a start
		{"07:45", false},
		{"09:07", false}, // off the grid
		{"9:00", false},  // wrong format
	} {
		if got := grid.Contains(tc.slot); got != tc.want {
			t.Errorf("Contains(%q) = %v, want %v", tc.slot, got, tc.want)
		}
	}
}

func TestGridAvailable(t *testing.T) {
	grid := DefaultGrid()

	free := grid.Available([]string{"08:00", "09:30", "16:45"})
	if len(free) != 33 {
		t.Fatalf("expected 33 free slots, got %d", len(free))
	}
	for _, s := range free {
		if s == "08:00" || s == "09:30" || s == "16:45" {
			t.Errorf("taken slot %s returned as free", s)
		}
	}
	if free[0] != "08:15" {
		t.Errorf("expected first free slot 08:15, got %s", free[0])
	}
}

func TestEstimatedDuration(t *testing.T) {
	for _, tc := range []struct {
		tests int
		want  string
	}{
		{1, "15 minutes"},
		{2, "20 minutes"},
		{3, "25 minutes"},
		{0, "15 minutes"},
	} {
		got := FormatDuration(EstimatedDuration(tc.tests))
		if got != tc.want {
			t.Errorf("EstimatedDuration(%d) = %q, want %q", tc.tests, got, tc.want)
		}
	}
}

func TestSpecialtyFor(t *testing.T) {
	for _, tc := range []struct {
		test string
		want string
	}{
		{"Blood Sugar", "Blood Test"},
		{"Full Blood Count", "Blood Test"},
		{"COVID-19", "COVID-19"},
		{"Urine R/E", "Urine Test"},
		{"Stool R/E", "Other"},
	} {
		if got := SpecialtyFor(tc.test); got != tc.want {
			t.Errorf("SpecialtyFor(%q) = %q, want %q", tc.test, got, tc.want)
		}
	}
}
