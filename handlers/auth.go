// handlers/auth.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"codecall-platform/services"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	app.Post("/authenticate", authService.Authenticate)
}
