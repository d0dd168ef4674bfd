package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/labsync/labsync/handlers"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password/:token", handlers.ResetPassword)
}
