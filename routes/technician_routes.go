package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/labsync/labsync/handlers"
	"github.com/labsync/labsync/middleware"
)

func TechnicianRoutes(app *fiber.App) {
	technician := app.Group("/api/v1/technicians")

	technician.Post("/login", handlers.LoginTechnician)
	technician.Post("/accept-invitation/:token", handlers.AcceptInvitation)

	technician.Post("/invite", middleware.Protected(), middleware.AdminRequired(), handlers.InviteTechnician)
	technician.Get("", middleware.Protected(), middleware.AdminRequired(), handlers.GetAllTechnicians)

	technician.Get("/profile/me", middleware.Protected(), middleware.TechnicianRequired(), handlers.GetMyTechnicianProfile)
	technician.Put("/profile/me", middleware.Protected(), middleware.TechnicianRequired(), handlers.UpdateMyTechnicianProfile)

	technician.Get("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.GetTechnicianByID)
	technician.Put("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.UpdateTechnician)
	technician.Delete("/:id", middleware.Protected(), middleware.AdminRequired(), handlers.DeleteTechnician)
}
