package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/cache"
	"codecall-platform/models"
)

// userCacheTTL bounds how stale a cached profile can be.
const userCacheTTL = 60 * time.Second

type UserService struct {
	DB       *gorm.DB
	Cache    *cache.Cache
	ZkSync   *ZkSyncClient
	validate *validator.Validate
}

func NewUserService(db *gorm.DB, c *cache.Cache, zk *ZkSyncClient) *UserService {
	return &UserService{
		DB:       db,
		Cache:    c,
		ZkSync:   zk,
		validate: validator.New(),
	}
}

// GetUser returns a public profile by username, served from cache when fresh.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	username := c.Params("username")

	if cached, ok := s.Cache.Get(c.Context(), cache.UserKey(username)); ok {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return c.JSON(user)
		}
		log.Printf("Discarding corrupt cache entry for user %s", username)
	}

	var user models.User
	if err := s.DB.Preload("ApprovedSubmissions").Preload("CompletedTasks").
		Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		log.Printf("Failed to fetch user %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch user"})
	}

	if encoded, err := json.Marshal(user); err == nil {
		s.Cache.SetWithTTL(c.Context(), cache.UserKey(username), string(encoded), userCacheTTL)
	}

	return c.JSON(user)
}

// UserUpdateInput is the allow-list of profile fields a user may change.
// Identity and earnings fields are deliberately absent.
type UserUpdateInput struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	Avatar        *string `json:"avatar" validate:"omitempty,url"`
	WalletAddress *string `json:"walletAddress" validate:"omitempty,startswith=0x,len=42"`
	Discord       *string `json:"discord"`
	Telegram      *string `json:"telegram"`
	Twitter       *string `json:"twitter"`
	Linkedin      *string `json:"linkedin"`
	Bio           *string `json:"bio"`
}

// UpdateUser applies a partial profile update. Callers may only update
// their own profile; the auth middleware puts the requester in locals.
func (s *UserService) UpdateUser(c *fiber.Ctx) error {
	username := c.Params("username")

	requester, ok := c.Locals("user").(models.User)
	if !ok || requester.Username != username {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You can only update your own profile"})
	}

	var input UserUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := s.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "error": err.Error()})
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Avatar != nil {
		updates["avatar"] = *input.Avatar
	}
	if input.WalletAddress != nil {
		updates["wallet_address"] = *input.WalletAddress
	}
	if input.Discord != nil {
		updates["discord"] = *input.Discord
	}
	if input.Telegram != nil {
		updates["telegram"] = *input.Telegram
	}
	if input.Twitter != nil {
		updates["twitter"] = *input.Twitter
	}
	if input.Linkedin != nil {
		updates["linkedin"] = *input.Linkedin
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No updatable fields provided"})
	}

	result := s.DB.Model(&models.User{}).Where("username = ?", username).Updates(updates)
	if result.Error != nil {
		log.Printf("Failed to update user %s: %v", username, result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}

	s.Cache.Delete(c.Context(), cache.UserKey(username))

	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		log.Printf("Failed to reload user %s after update: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch updated user"})
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "user": user})
}

// GetLeaderboard returns users ranked by XP.
func (s *UserService) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var users []models.User
	if err := s.DB.Order("xp DESC").Limit(limit).Find(&users).Error; err != nil {
		log.Printf("Failed to fetch leaderboard: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch leaderboard"})
	}

	type leaderboardEntry struct {
		Rank     int    `json:"rank"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
		XP       int64  `json:"xp"`
	}
	entries := make([]leaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, leaderboardEntry{
			Rank:     i + 1,
			Username: u.Username,
			Avatar:   u.Avatar,
			XP:       u.XP,
		})
	}
	return c.JSON(fiber.Map{"message": "OK", "result": entries})
}

// GetUSDCBalance returns the wallet's live USDC balance; when the RPC is
// unreachable it falls back to the last mirrored value.
func (s *UserService) GetUSDCBalance(c *fiber.Ctx) error {
	username := c.Params("username")

	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		log.Printf("Failed to fetch user %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch user"})
	}
	if user.WalletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "User has no wallet address"})
	}

	balance, err := s.ZkSync.USDCBalance(c.Context(), user.WalletAddress)
	if err != nil {
		log.Printf("Live balance lookup failed for %s, serving mirror: %v", user.WalletAddress, err)

		var mirror models.WalletMirror
		if merrr := s.DB.Where("address = ?", user.WalletAddress).First(&mirror).Error; merrr != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Balance temporarily unavailable"})
		}
		return c.JSON(fiber.Map{
			"address": user.WalletAddress,
			"token":   mirror.Token,
			"balance": mirror.Balance,
			"stale":   true,
			"asOf":    mirror.LastBalanceCheckAt,
		})
	}

	return c.JSON(fiber.Map{
		"address": user.WalletAddress,
		"token":   "USDC",
		"balance": balance,
		"stale":   false,
	})
}
