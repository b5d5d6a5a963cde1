// handlers/user.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/middleware"
	"codecall-platform/services"
)

func SetupUserRoutes(app *fiber.App, db *gorm.DB, users *services.UserService, notifications *services.NotificationService, gh *services.GitHubClient) {
	app.Get("/leaderboard", users.GetLeaderboard)
	app.Get("/users/:username", users.GetUser)
	app.Get("/users/:username/usdc-balance", users.GetUSDCBalance)

	secured := app.Group("/", middleware.RequireUser(db, gh))
	secured.Put("/users/:username", users.UpdateUser)
	secured.Get("/users/:username/notifications", notifications.GetUnread)
	secured.Patch("/notifications/:id/read", notifications.MarkRead)
}
