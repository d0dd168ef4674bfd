package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/labsync/labsync/handlers"
	"github.com/labsync/labsync/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Post("", middleware.PatientRequired(), handlers.CreateBooking)
	booking.Get("/me", middleware.PatientRequired(), handlers.GetMyBookings)
	booking.Get("/available-slots/:date", handlers.GetAvailableSlots)
	booking.Get("/:id", handlers.GetBooking)
	booking.Patch("/:id", middleware.PatientRequired(), handlers.UpdateBooking)
	booking.Delete("/:id", handlers.CancelBooking)

	booking.Patch("/:id/start", middleware.TechnicianRequired(), handlers.StartBooking)
	booking.Patch("/:id/complete", middleware.TechnicianRequired(), handlers.CompleteBooking)

	technicianBooking := api.Group("/technician/bookings", middleware.Protected(), middleware.TechnicianRequired())
	technicianBooking.Get("/me", handlers.GetMyTechnicianBookings)
}
