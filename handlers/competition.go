// handlers/competition.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/middleware"
	"codecall-platform/services"
)

func SetupCompetitionRoutes(app *fiber.App, db *gorm.DB, svc *services.CompetitionService, gh *services.GitHubClient) {
	// Public reads — phases are derived per request, so no auth and no
	// staleness concerns.
	app.Get("/competitions", svc.GetAllCompetitions)
	app.Get("/competitions/:id", svc.GetCompetition)
	app.Get("/competitions/:id/reward-breakdown", svc.GetRewardBreakdown)

	// Secured routes need a resolved user in locals.
	secured := app.Group("/", middleware.RequireUser(db, gh))

	secured.Post("/competitions", svc.CreateCompetition)
	secured.Patch("/competitions/:id", svc.UpdateCompetition)
	secured.Put("/competitions/:id/changeStatus", svc.ChangeStatus)

	secured.Patch("/competitions/:id/becomeJudge", svc.BecomeJudge)
	secured.Post("/competitions/:id/addJudge", svc.AddJudge)

	// Judge-only operations on submissions.
	judgeOnly := secured.Group("/", middleware.RequireCompetitionRole(db, middleware.RoleJudge))
	judgeOnly.Post("/competitions/:id/mergePR", svc.ApproveAndMergePR)
	judgeOnly.Put("/competitions/:id/approveSubmission", svc.ApproveSubmission)
}
