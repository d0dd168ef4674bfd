package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/labsync/labsync/database"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/notifications"
	"github.com/labsync/labsync/scheduling"
)

// SendAppointmentReminders emails patients (and assigned technicians) whose
// appointment starts in roughly one hour. Runs every five minutes; the
// 60-65 minute window keeps each booking from being reminded twice.
func SendAppointmentReminders() {
	log.Println("Running job: SendAppointmentReminders...")

	now := time.Now()
	today := now.Format(scheduling.DateLayout)

	var upcoming []models.LabTestBooking
	err := database.DB.
		Preload("Technician").
		Where("scheduled_date = ? AND scheduled_time IS NOT NULL", today).
		Where("status IN ?", []string{models.StatusPending, models.StatusAssigned}).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Error checking for upcoming appointments: %v", err)
		return
	}

	for _, booking := range upcoming {
		start, err := time.ParseInLocation(
			scheduling.DateLayout+" "+scheduling.TimeLayout,
			booking.ScheduledDate+" "+*booking.ScheduledTime,
			now.Location(),
		)
		if err != nil {
			continue
		}

		until := start.Sub(now)
		if until < 60*time.Minute || until >= 65*time.Minute {
			continue
		}

		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		subject := "Reminder: Your Lab Test Appointment is in 1 Hour!"
		body := fmt.Sprintf(
			"<h1>Appointment Reminder</h1><p>Hi %s,</p><p>This is a friendly reminder that your lab test appointment is scheduled for today at %s.</p><p>Please arrive a few minutes early.</p>",
			booking.PatientDetails.FullName,
			*booking.ScheduledTime,
		)
		go notifications.SendEmail(booking.PatientDetails.FullName, booking.PatientDetails.Email, subject, body)

		if booking.Technician != nil {
			techBody := fmt.Sprintf(
				"<h1>Appointment Reminder</h1><p>Hi %s,</p><p>Your assigned lab test for patient %s starts today at %s.</p>",
				booking.Technician.FullName,
				booking.PatientDetails.FullName,
				*booking.ScheduledTime,
			)
			go notifications.SendEmail(booking.Technician.FullName, booking.Technician.Email, subject, techBody)
		}
	}
}
