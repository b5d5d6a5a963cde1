// services/xp_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"

	"codecall-platform/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type XPService struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewXPService(db *gorm.DB) *XPService {
	return &XPService{DB: db, validate: validator.New()}
}

// AwardXP grants a training task's share of the point pool. The conflict-
// checked insert on the (user, task, training) unique index is the
// idempotence guard: a pair earns XP at most once, even when two awards
// race, and a repeat is a soft success with no mutation.
func (s *XPService) AwardXP(c *fiber.Ctx) error {
	var req struct {
		Username   string `json:"username" validate:"required"`
		TaskID     int    `json:"taskId" validate:"required"`
		TrainingID string `json:"trainingId" validate:"required,uuid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username, taskId and a valid trainingId are required"})
	}

	percent, ok := TrainingTaskPercent(req.TaskID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var user models.User
	if err := s.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User or Training not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var training models.Training
	if err := s.DB.First(&training, "id = ?", req.TrainingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User or Training not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	awardedXP := int64(math.Round(float64(training.Points) * percent))

	alreadyCompleted := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		entry := models.CompletedTask{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			TaskID:     req.TaskID,
			TrainingID: training.ID,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			alreadyCompleted = true
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("xp", gorm.Expr("xp + ?", awardedXP)).Error
	})
	if err != nil {
		log.Printf("DB Error awarding XP: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error awarding XP"})
	}

	if alreadyCompleted {
		// soft success: the caller's desired end state already holds
		return c.JSON(fiber.Map{"success": false, "message": "Task already completed"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"awardedXP": awardedXP,
		"message":   fmt.Sprintf("XP awarded for Task %d", req.TaskID),
	})
}
