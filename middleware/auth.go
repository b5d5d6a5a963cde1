package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/models"
	"codecall-platform/services"
)

// RequireUser resolves the caller from a GitHub bearer token and attaches
// the local account to c.Locals("user"). The platform never issues its own
// tokens; GitHub is the identity provider and every authenticated request
// carries the OAuth access token the client got from /authenticate.
func RequireUser(db *gorm.DB, gh *services.GitHubClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}
		token := strings.TrimPrefix(header, "Bearer ")

		profile, err := gh.GetProfile(token)
		if err != nil {
			log.Printf("Token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
		}

		var user models.User
		if err := db.Where("username = ?", profile.Login).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Account not found, authenticate first"})
			}
			log.Printf("Failed to load user %s: %v", profile.Login, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to authenticate"})
		}

		c.Locals("user", user)
		return c.Next()
	}
}
