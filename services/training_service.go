// services/training_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codecall-platform/cache"
	"codecall-platform/models"
	"codecall-platform/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TrainingService struct {
	DB       *gorm.DB
	Cache    *cache.Cache
	R2       *utils.R2Client
	validate *validator.Validate
}

func NewTrainingService(db *gorm.DB, c *cache.Cache, r2 *utils.R2Client) *TrainingService {
	return &TrainingService{
		DB:       db,
		Cache:    c,
		R2:       r2,
		validate: validator.New(),
	}
}

func attachTrainingPhase(t *models.Training, now time.Time) {
	t.Phase = string(ClassifyPhase(now, t.StartDate, t.EndDate))
	t.TimeRemaining = RemainingLabel(now, t.StartDate, t.EndDate)
}

type trainingPage struct {
	Total     int64             `json:"total"`
	Trainings []models.Training `json:"trainings"`
}

// GetAllTrainings lists training modules with pagination metadata.
func (s *TrainingService) GetAllTrainings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var pageData trainingPage
	key := cache.TrainingListKey(page, limit)
	if cached, ok := s.Cache.Get(c.Context(), key); ok {
		if err := json.Unmarshal([]byte(cached), &pageData); err != nil {
			pageData = trainingPage{}
		}
	}

	if pageData.Trainings == nil {
		var trainings []models.Training
		if err := s.DB.
			Order("created_at DESC").
			Limit(limit).Offset(offset).
			Find(&trainings).Error; err != nil {
			log.Printf("DB Error fetching training modules: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch training modules"})
		}

		var total int64
		if err := s.DB.Model(&models.Training{}).Count(&total).Error; err != nil {
			log.Printf("DB Error counting training modules: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch training modules"})
		}

		pageData = trainingPage{Total: total, Trainings: trainings}
		if raw, err := json.Marshal(pageData); err == nil {
			s.Cache.SetWithTTL(c.Context(), key, string(raw), 60*time.Second)
		}
	}

	now := time.Now()
	for i := range pageData.Trainings {
		attachTrainingPhase(&pageData.Trainings[i], now)
	}

	if len(pageData.Trainings) == 0 {
		return c.JSON(fiber.Map{"message": "Training modules not available at this moment", "modules": []models.Training{}})
	}

	return c.JSON(fiber.Map{
		"message": "OK",
		"metaData": fiber.Map{
			"totalModules": pageData.Total,
			"totalPages":   int(math.Ceil(float64(pageData.Total) / float64(limit))),
			"currentPage":  page,
			"limit":        limit,
		},
		"modules": pageData.Trainings,
	})
}

// GetTraining returns one training module with its point breakdown.
func (s *TrainingService) GetTraining(c *fiber.Ctx) error {
	id := c.Params("id")

	var training models.Training
	if err := s.DB.Preload("Submissions").First(&training, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Training module not found"})
		}
		log.Printf("DB Error fetching training module %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	attachTrainingPhase(&training, time.Now())

	return c.JSON(fiber.Map{
		"message":         "OK",
		"module":          training,
		"pointsBreakdown": SplitTrainingPoints(float64(training.Points)),
	})
}

// CreateTraining creates a training module from a multipart form (Admin
// only). Image and starter-code bundle are uploaded to R2 when present.
func (s *TrainingService) CreateTraining(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	difficulty := models.TrainingDifficulty(c.FormValue("difficulty", string(models.DifficultyBeginner)))
	switch difficulty {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "difficulty must be Beginner, Intermediate or Advanced"})
	}

	points, _ := strconv.ParseInt(c.FormValue("points", "0"), 10, 64)

	startDate, err := time.Parse(time.RFC3339, c.FormValue("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid startDate, expected RFC3339"})
	}
	endDate, err := time.Parse(time.RFC3339, c.FormValue("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid endDate, expected RFC3339"})
	}

	training := models.Training{
		ID:              uuid.NewString(),
		Name:            name,
		Slug:            slug.Make(name),
		Description:     c.FormValue("description"),
		Difficulty:      difficulty,
		Status:          "Live",
		Points:          points,
		Languages:       csvToJSON(c.FormValue("languages")),
		Types:           csvToJSON(c.FormValue("types")),
		StartDate:       startDate,
		EndDate:         endDate,
		RepositoryLink:  c.FormValue("repositoryLink"),
		TrainingDetails: c.FormValue("trainingDetails"),
		HowToGuide:      c.FormValue("howToGuide"),
		Scope:           c.FormValue("scope"),
	}

	if tests := c.FormValue("tests"); tests != "" {
		var cases []models.TestCase
		if err := json.Unmarshal([]byte(tests), &cases); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tests must be a JSON array of {input, expectedOutput}"})
		}
		training.Tests = []byte(tests)
	}
	if hints := c.FormValue("hints"); hints != "" {
		var list []string
		if err := json.Unmarshal([]byte(hints), &list); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hints must be a JSON array of strings"})
		}
		training.Hints = []byte(hints)
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		imageKey := "images/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)
		url, err := s.R2.UploadFile(fileHeader, imageKey)
		if err != nil {
			log.Printf("R2 upload failed for training image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
		}
		training.Image = url
	}
	if fileHeader, err := c.FormFile("starterCode"); err == nil {
		bundleKey := "starter-code/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)
		url, err := s.R2.UploadFile(fileHeader, bundleKey)
		if err != nil {
			log.Printf("R2 upload failed for starter code bundle: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload starter code"})
		}
		training.StarterCode = url
	}

	if err := s.DB.Create(&training).Error; err != nil {
		log.Printf("DB Error creating training module: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create training module"})
	}

	s.Cache.DeletePattern(c.Context(), "trainings:*")

	attachTrainingPhase(&training, time.Now())
	return c.Status(fiber.StatusCreated).JSON(training)
}

// SubmitWork appends a work submission to a training module.
func (s *TrainingService) SubmitWork(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		UserID   string `json:"userId" validate:"required,uuid"`
		CodeLink string `json:"codeLink" validate:"required,url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId and a valid codeLink are required"})
	}

	var training models.Training
	if err := s.DB.First(&training, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Training module not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	submission := models.TrainingSubmission{
		ID:         uuid.NewString(),
		TrainingID: training.ID,
		UserID:     req.UserID,
		CodeLink:   req.CodeLink,
	}
	if err := s.DB.Create(&submission).Error; err != nil {
		log.Printf("DB Error submitting training work: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add submission"})
	}

	return c.JSON(fiber.Map{"message": "Submission added successfully"})
}
