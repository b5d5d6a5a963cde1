package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/models"
)

// Judge roles are derived from the competition's judge set, never stored on
// the user. The lead judge is whichever judge currently has the highest XP,
// so the check loads the competition fresh on every request.
const (
	RoleJudge     = "judge"
	RoleLeadJudge = "leadJudge"
)

// RequireCompetitionRole gates a route on the caller holding the given role
// within the competition named by the :id route param. Must run after
// RequireUser.
func RequireCompetitionRole(db *gorm.DB, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}

		competitionID := c.Params("id")
		var competition models.Competition
		if err := db.Preload("Judges").First(&competition, "id = ?", competitionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Competition not found"})
			}
			log.Printf("Failed to load competition %s for role check: %v", competitionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to verify role"})
		}

		switch role {
		case RoleLeadJudge:
			if competition.LeadJudgeID == nil || *competition.LeadJudgeID != user.ID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Lead judge access required"})
			}
		case RoleJudge:
			isJudge := false
			for _, j := range competition.Judges {
				if j.ID == user.ID {
					isJudge = true
					break
				}
			}
			if !isJudge {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Judge access required"})
			}
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Unknown role"})
		}

		return c.Next()
	}
}
