package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/labsync/labsync/database"
	"github.com/labsync/labsync/models"
	"github.com/labsync/labsync/scheduling"
	"github.com/labsync/labsync/websocket"
)

// AdminGetAllBookings is the only unscoped booking query. Supports
// status, start_date and end_date (created-at range) filters.
func AdminGetAllBookings(c *fiber.Ctx) error {
	filter := scheduling.Filter{Status: c.Query("status")}

	if start, end := c.Query("start_date"), c.Query("end_date"); start != "" && end != "" {
		from, err1 := time.Parse(scheduling.DateLayout, start)
		to, err2 := time.Parse(scheduling.DateLayout, end)
		if err1 != nil || err2 != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format"})
		}
		to = to.Add(24 * time.Hour)
		filter.CreatedFrom = &from
		filter.CreatedTo = &to
	}

	bookings, err := Scheduler.Search(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

type AssignTechnicianRequest struct {
	TechnicianID *string `json:"technician_id"`
}

// AssignTechnician assigns a technician to a pending booking. Without a
// technician_id in the body the engine picks one; with it, the target's
// availability is re-validated at call time.
func AssignTechnician(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		req = AssignTechnicianRequest{}
	}

	var booking *models.LabTestBooking
	if req.TechnicianID != nil {
		technicianID, err := uuid.Parse(*req.TechnicianID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid technician id"})
		}
		booking, err = Scheduler.AssignTo(c.Context(), id, technicianID)
		if err != nil {
			return respondError(c, err)
		}
	} else {
		booking, err = Scheduler.AssignAuto(c.Context(), id)
		if err != nil {
			return respondError(c, err)
		}
	}

	websocket.PublishStatus(booking)

	return c.JSON(fiber.Map{
		"message":     "Technician assigned successfully",
		"appointment": booking,
	})
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	counts := fiber.Map{}
	for _, status := range []string{
		models.StatusPending, models.StatusAssigned, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled,
	} {
		var count int64
		if err := database.DB.Model(&models.LabTestBooking{}).Where("status = ?", status).Count(&count).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		counts[status] = count
	}

	var technicianCount int64
	database.DB.Model(&models.Technician{}).Where("is_activated = ?", true).Count(&technicianCount)

	var patientCount int64
	database.DB.Model(&models.User{}).Where("role = ?", "patient").Count(&patientCount)

	return c.JSON(fiber.Map{
		"bookings":           counts,
		"active_technicians": technicianCount,
		"patients":           patientCount,
	})
}
