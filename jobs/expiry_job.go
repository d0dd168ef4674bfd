package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labsync/labsync/database"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/scheduling"
)

// CancelStaleBookings cancels pending bookings whose scheduled day has
// passed without a technician ever being assigned, releasing their slots.
// The scan only collects candidate ids; each cancellation re-checks the
// status under a row lock, so a booking started after the scan survives.
func CancelStaleBookings(svc *scheduling.Service) {
	log.Println("Running job: CancelStaleBookings...")

	cutoff := time.Now().AddDate(0, 0, -1).Format(scheduling.DateLayout)

	var staleIDs []uuid.UUID
	err := database.DB.Model(&models.LabTestBooking{}).
		Where("status = ? AND scheduled_date < ?", models.StatusPending, cutoff).
		Pluck("id", &staleIDs).Error
	if err != nil {
		log.Printf("Error checking for stale bookings: %v", err)
		return
	}

	if len(staleIDs) == 0 {
		return
	}

	ctx := context.Background()
	cancelled := 0
	for _, id := range staleIDs {
		ok, err := svc.CancelIfPending(ctx, id)
		if err != nil {
			log.Printf("Error cancelling stale booking %s: %v", id, err)
			continue
		}
		if ok {
			cancelled++
		}
	}

	log.Printf("Cancelled %d stale booking(s).", cancelled)
}
