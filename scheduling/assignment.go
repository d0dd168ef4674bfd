package scheduling

import (
	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

// PickTechnician selects the first technician in pool who is activated,
// flagged available, not holding an active job, and (when specialty is
// non-empty) credentialed in the given specialty. Pool order decides ties, so
// callers must supply a stably ordered pool.
func PickTechnician(pool []models.Technician, busy map[uuid.UUID]bool, specialty string) *models.Technician {
	for i := range pool {
		t := &pool[i]
		if !t.IsActivated || !t.IsAvailable || busy[t.ID] {
			continue
		}
		if specialty != "" && !hasSpecialty(t, specialty) {
			continue
		}
		return t
	}
	return nil
}

func hasSpecialty(t *models.Technician, specialty string) bool {
	for _, s := range t.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}
