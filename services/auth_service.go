package services

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"codecall-platform/models"
	"codecall-platform/utils"
)

type AuthService struct {
	DB       *gorm.DB
	GitHub   *GitHubClient
	validate *validator.Validate
}

func NewAuthService(db *gorm.DB, gh *GitHubClient) *AuthService {
	return &AuthService{
		DB:       db,
		GitHub:   gh,
		validate: validator.New(),
	}
}

type authenticateInput struct {
	Code string `json:"code" validate:"required"`
}

// Authenticate exchanges a GitHub OAuth authorization code for an access
// token, creating a local account on first sign-in. The token is returned
// to the client and never stored server-side.
func (s *AuthService) Authenticate(c *fiber.Ctx) error {
	var input authenticateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := s.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Authorization code is required"})
	}

	accessToken, err := s.GitHub.ExchangeCode(input.Code)
	if err != nil {
		log.Printf("GitHub code exchange failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Failed to exchange authorization code"})
	}

	profile, err := s.GitHub.GetProfile(accessToken)
	if err != nil {
		log.Printf("GitHub profile lookup failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Failed to fetch GitHub profile"})
	}

	var user models.User
	err = s.DB.Where("username = ?", profile.Login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet, werr := utils.RandomWalletAddress()
		if werr != nil {
			log.Printf("Failed to generate wallet address: %v", werr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create account"})
		}
		user = models.User{
			ID:            uuid.New().String(),
			Username:      profile.Login,
			Avatar:        profile.AvatarURL,
			Email:         profile.Email,
			Github:        "https://github.com/" + profile.Login,
			WalletAddress: wallet,
		}
		if cerr := s.DB.Create(&user).Error; cerr != nil {
			log.Printf("Failed to create user %s: %v", profile.Login, cerr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create account"})
		}
		log.Printf("Created account for %s", profile.Login)
	} else if err != nil {
		log.Printf("Failed to look up user %s: %v", profile.Login, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to authenticate"})
	}

	return c.JSON(fiber.Map{
		"username":    user.Username,
		"accessToken": accessToken,
	})
}
