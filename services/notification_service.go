package services

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"codecall-platform/models"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// GetUnread returns a user's unread notifications, newest first.
// Notifications are private, so only their owner can read them.
func (s *NotificationService) GetUnread(c *fiber.Ctx) error {
	username := c.Params("username")

	requester, ok := c.Locals("user").(models.User)
	if !ok || requester.Username != username {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You can only read your own notifications"})
	}

	var notifications []models.Notification
	if err := s.DB.Where("user_id = ? AND read = ?", requester.ID, false).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		log.Printf("Failed to fetch notifications for %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch notifications"})
	}

	return c.JSON(fiber.Map{"message": "OK", "result": notifications})
}

// MarkRead marks a single notification as read.
func (s *NotificationService) MarkRead(c *fiber.Ctx) error {
	id := c.Params("id")

	requester, ok := c.Locals("user").(models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
	}

	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, requester.ID).
		Update("read", true)
	if result.Error != nil {
		log.Printf("Failed to mark notification %s read: %v", id, result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update notification"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Notification not found"})
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
