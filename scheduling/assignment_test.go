package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

func technician(name string, activated, available bool, specialties ...string) models.Technician {
	return models.Technician{
		ID:          uuid.New(),
		FullName:    name,
		IsActivated: activated,
		IsAvailable: available,
		Specialties: specialties,
	}
}

func TestPickTechnician_FirstFreeInPoolOrder(t *testing.T) {
	pool := []models.Technician{
		technician("Ama", true, true),
		technician("Kofi", true, true),
	}

	picked := PickTechnician(pool, nil, "")
	if picked == nil || picked.FullName != "Ama" {
		t.Fatalf("expected Ama (first in pool), got %+v", picked)
	}

	// Same input, same pick.
	again := PickTechnician(pool, nil, "")
	if again.ID != picked.ID {
		t.Error("selection is not deterministic for identical input")
	}

	busy := map[uuid.UUID]bool{pool[0].ID: true}
	picked = PickTechnician(pool, busy, "")
	if picked == nil || picked.FullName != "Kofi" {
		t.Fatalf("expected Kofi when Ama is busy, got %+v", picked)
	}
}

func TestPickTechnician_SkipsIneligible(t *testing.T) {
	pool := []models.Technician{
		technician("Inactive", false, true),
		technician("Unavailable", true, false),
		technician("Eligible", true, true),
	}

	picked := PickTechnician(pool, nil, "")
	if picked == nil || picked.FullName != "Eligible" {
		t.Fatalf("expected Eligible, got %+v", picked)
	}

	busy := map[uuid.UUID]bool{pool[2].ID: true}
	if picked := PickTechnician(pool, busy, ""); picked != nil {
		t.Errorf("expected nil when no technician is eligible, got %+v", picked)
	}
}

func TestPickTechnician_SpecialtyFilter(t *testing.T) {
	pool := []models.Technician{
		technician("Generalist", true, true, "Other"),
		technician("Phlebotomist", true, true, "Blood Test"),
	}

	picked := PickTechnician(pool, nil, "Blood Test")
	if picked == nil || picked.FullName != "Phlebotomist" {
		t.Fatalf("expected specialty match, got %+v", picked)
	}

	if picked := PickTechnician(pool, nil, "MRI"); picked != nil {
		t.Errorf("expected nil for unmatched specialty, got %+v", picked)
	}
}
