// handlers/training.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/middleware"
	"codecall-platform/services"
)

func SetupTrainingRoutes(app *fiber.App, db *gorm.DB, svc *services.TrainingService, xp *services.XPService, gh *services.GitHubClient) {
	app.Get("/training", svc.GetAllTrainings)
	app.Get("/training/:id", svc.GetTraining)

	secured := app.Group("/", middleware.RequireUser(db, gh))
	secured.Post("/training", svc.CreateTraining)
	secured.Post("/training/:id/submit", svc.SubmitWork)
	secured.Post("/awardXP", xp.AwardXP)
}
