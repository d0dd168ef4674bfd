package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/labsync/labsync/handlers"
	"github.com/labsync/labsync/middleware"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/bookings", handlers.AdminGetAllBookings)
	admin.Patch("/bookings/:id/assign", handlers.AssignTechnician)
	admin.Get("/dashboard", handlers.GetDashboardAnalytics)
}
