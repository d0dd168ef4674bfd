package scheduling

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Grid enumerates the bookable slot starts inside the daily operating window.
type Grid struct {
	Open  string
	Close string
	Step  time.Duration
}

func DefaultGrid() Grid {
	return Grid{Open: "08:00", Close: "17:00", Step: 15 * time.Minute}
}

// Slots returns every slot start in ascending order. The last slot begins one
// step before closing time.
func (g Grid) Slots() []string {
	open, err := time.Parse(TimeLayout, g.Open)
	if err != nil {
		return nil
	}
	close, err := time.Parse(TimeLayout, g.Close)
	if err != nil {
		return nil
	}

	var slots []string
	for t := open; t.Before(close); t = t.Add(g.Step) {
		slots = append(slots, t.Format(TimeLayout))
	}
	return slots
}

func (g Grid) Contains(slot string) bool {
	for _, s := range g.Slots() {
		if s == slot {
			return true
		}
	}
	return false
}

// Available returns the grid minus the given taken starts, order preserved.
func (g Grid) Available(taken []string) []string {
	occupied := make(map[string]bool, len(taken))
	for _, t := range taken {
		occupied[t] = true
	}

	var free []string
	for _, s := range g.Slots() {
		if !occupied[s] {
			free = append(free, s)
		}
	}
	return free
}
