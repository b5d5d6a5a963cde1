// services/competition_service.go
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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CompetitionService struct {
	DB       *gorm.DB
	Cache    *cache.Cache
	GitHub   *GitHubClient
	R2       *utils.R2Client
	validate *validator.Validate
}

func NewCompetitionService(db *gorm.DB, c *cache.Cache, gh *GitHubClient, r2 *utils.R2Client) *CompetitionService {
	return &CompetitionService{
		DB:       db,
		Cache:    c,
		GitHub:   gh,
		R2:       r2,
		validate: validator.New(),
	}
}

// attachPhase populates the derived display fields. Never persisted.
func attachPhase(c *models.Competition, now time.Time) {
	c.Phase = string(ClassifyPhase(now, c.StartDate, c.EndDate))
	c.TimeRemaining = RemainingLabel(now, c.StartDate, c.EndDate)
}

type competitionPage struct {
	Total        int64                `json:"total"`
	Competitions []models.Competition `json:"competitions"`
}

// GetAllCompetitions lists competitions with pagination metadata. The page
// rows come through the cache; the derived phase is recomputed per request
// so a cached page never pins an outdated status.
func (s *CompetitionService) GetAllCompetitions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var pageData competitionPage
	key := cache.CompetitionListKey(page, limit)
	if cached, ok := s.Cache.Get(c.Context(), key); ok {
		if err := json.Unmarshal([]byte(cached), &pageData); err != nil {
			pageData = competitionPage{}
		}
	}

	if pageData.Competitions == nil {
		var competitions []models.Competition
		if err := s.DB.
			Select("id", "name", "slug", "description", "status", "reward", "points", "image", "languages", "types", "start_date", "end_date").
			Order("start_date DESC").
			Limit(limit).Offset(offset).
			Find(&competitions).Error; err != nil {
			log.Printf("DB Error fetching competitions: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch competitions"})
		}

		var total int64
		if err := s.DB.Model(&models.Competition{}).Count(&total).Error; err != nil {
			log.Printf("DB Error counting competitions: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch competitions"})
		}

		pageData = competitionPage{Total: total, Competitions: competitions}
		if raw, err := json.Marshal(pageData); err == nil {
			s.Cache.SetWithTTL(c.Context(), key, string(raw), 60*time.Second)
		}
	}

	now := time.Now()
	for i := range pageData.Competitions {
		attachPhase(&pageData.Competitions[i], now)
	}

	if len(pageData.Competitions) == 0 {
		return c.JSON(fiber.Map{"message": "No competitions", "result": []models.Competition{}})
	}

	return c.JSON(fiber.Map{
		"message": "OK",
		"metaData": fiber.Map{
			"totalRecords": pageData.Total,
			"totalPages":   int(math.Ceil(float64(pageData.Total) / float64(limit))),
			"currentPage":  page,
			"limit":        limit,
		},
		"result": pageData.Competitions,
	})
}

// GetCompetition returns full competition details with the judge set,
// reward breakdown, and derived phase.
func (s *CompetitionService) GetCompetition(c *fiber.Ctx) error {
	id := c.Params("id")

	var competition models.Competition
	if err := s.DB.
		Preload("LeadJudge").
		Preload("Judges").
		Preload("Submissions").
		First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition not found"})
		}
		log.Printf("DB Error fetching competition %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	attachPhase(&competition, time.Now())

	return c.JSON(fiber.Map{
		"message":         "OK",
		"competition":     competition,
		"rewardBreakdown": SplitReward(competition.Reward),
	})
}

// GetRewardBreakdown exposes the splitter for an arbitrary pool value.
func (s *CompetitionService) GetRewardBreakdown(c *fiber.Ctx) error {
	pool, err := strconv.ParseFloat(c.Query("pool", "0"), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pool parameter"})
	}
	return c.JSON(SplitReward(pool))
}

// CreateCompetition creates a competition from a multipart form (Admin
// only). An optional image file is uploaded to R2 before the record exists.
func (s *CompetitionService) CreateCompetition(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	reward, _ := strconv.ParseFloat(c.FormValue("reward", "0"), 64)
	points, _ := strconv.ParseInt(c.FormValue("points", "0"), 10, 64)

	startDate, err := time.Parse(time.RFC3339, c.FormValue("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid startDate, expected RFC3339"})
	}
	endDate, err := time.Parse(time.RFC3339, c.FormValue("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid endDate, expected RFC3339"})
	}
	if !endDate.After(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "endDate must be after startDate"})
	}

	competition := models.Competition{
		ID:                 uuid.NewString(),
		Name:               name,
		Slug:               slug.Make(name),
		Description:        c.FormValue("description"),
		Status:             "Live",
		Reward:             reward,
		Points:             points,
		Languages:          csvToJSON(c.FormValue("languages")),
		Types:              csvToJSON(c.FormValue("types")),
		StartDate:          startDate,
		EndDate:            endDate,
		WebsiteLink:        c.FormValue("websiteLink"),
		RepositoryLink:     c.FormValue("repositoryLink"),
		CompetitionDetails: c.FormValue("competitionDetails"),
		HowToGuide:         c.FormValue("howToGuide"),
		Scope:              c.FormValue("scope"),
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		imageKey := "images/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)
		url, err := s.R2.UploadFile(fileHeader, imageKey)
		if err != nil {
			log.Printf("R2 upload failed for competition image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
		}
		competition.Image = url
	}

	if err := s.DB.Create(&competition).Error; err != nil {
		log.Printf("DB Error creating competition: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create competition"})
	}

	s.Cache.DeletePattern(c.Context(), "competitions:*")

	attachPhase(&competition, time.Now())
	return c.Status(fiber.StatusCreated).JSON(competition)
}

// UpdateCompetition applies an allow-listed patch (Admin only). Unknown
// fields never reach the record; absent fields leave it untouched.
func (s *CompetitionService) UpdateCompetition(c *fiber.Ctx) error {
	id := c.Params("id")

	var competition models.Competition
	if err := s.DB.First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Name               *string    `json:"name"`
		Description        *string    `json:"description"`
		Reward             *float64   `json:"reward"`
		Points             *int64     `json:"points"`
		Languages          *[]string  `json:"languages"`
		Types              *[]string  `json:"types"`
		StartDate          *time.Time `json:"startDate"`
		EndDate            *time.Time `json:"endDate"`
		Image              *string    `json:"image"`
		WebsiteLink        *string    `json:"websiteLink"`
		RepositoryLink     *string    `json:"repositoryLink"`
		CompetitionDetails *string    `json:"competitionDetails"`
		HowToGuide         *string    `json:"howToGuide"`
		Scope              *string    `json:"scope"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Name != nil {
		competition.Name = *req.Name
		competition.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		competition.Description = *req.Description
	}
	if req.Reward != nil {
		competition.Reward = *req.Reward
	}
	if req.Points != nil {
		competition.Points = *req.Points
	}
	if req.Languages != nil {
		competition.Languages = sliceToJSON(*req.Languages)
	}
	if req.Types != nil {
		competition.Types = sliceToJSON(*req.Types)
	}
	if req.StartDate != nil {
		competition.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		competition.EndDate = *req.EndDate
	}
	if req.Image != nil {
		competition.Image = *req.Image
	}
	if req.WebsiteLink != nil {
		competition.WebsiteLink = *req.WebsiteLink
	}
	if req.RepositoryLink != nil {
		competition.RepositoryLink = *req.RepositoryLink
	}
	if req.CompetitionDetails != nil {
		competition.CompetitionDetails = *req.CompetitionDetails
	}
	if req.HowToGuide != nil {
		competition.HowToGuide = *req.HowToGuide
	}
	if req.Scope != nil {
		competition.Scope = *req.Scope
	}

	if err := s.DB.Save(&competition).Error; err != nil {
		log.Printf("DB Error updating competition %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update competition"})
	}

	s.Cache.DeletePattern(c.Context(), "competitions:*")

	attachPhase(&competition, time.Now())
	return c.JSON(competition)
}

// ChangeStatus writes the legacy persisted status field. Display status
// stays derived; this value only feeds the watcher's notification watermark.
func (s *CompetitionService) ChangeStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Status string `json:"status" validate:"required,oneof=Live Completed Pending"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be one of Live, Completed, Pending"})
	}

	var competition models.Competition
	if err := s.DB.First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	competition.Status = req.Status
	if err := s.DB.Save(&competition).Error; err != nil {
		log.Printf("DB Error changing competition status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to change status"})
	}

	s.Cache.DeletePattern(c.Context(), "competitions:*")

	attachPhase(&competition, time.Now())
	return c.JSON(competition)
}

// ApproveAndMergePR settles a labeled pull request: looks the PR up, merges
// it, and credits the author's earnings and category counter from the
// competition's explicit reward amounts.
func (s *CompetitionService) ApproveAndMergePR(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		PRNumber int `json:"prNumber" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "prNumber must be a positive integer"})
	}

	var competition models.Competition
	if err := s.DB.First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	repoPath, err := RepoPath(competition.RepositoryLink)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pr, err := s.GitHub.GetPullRequest(repoPath, req.PRNumber)
	if err != nil {
		log.Printf("GitHub PR lookup failed for %s#%d: %v", repoPath, req.PRNumber, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to fetch pull request"})
	}

	var user models.User
	if err := s.DB.First(&user, "username = ?", pr.User.Login).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	amounts := AmountsFor(&competition)
	var reward float64
	updates := map[string]interface{}{}
	switch {
	case prHasLabel(pr, "feature"):
		reward = amounts.Feature
		updates["features"] = gorm.Expr("features + 1")
	case prHasLabel(pr, "bug"):
		reward = amounts.Bug
		updates["bugs"] = gorm.Expr("bugs + 1")
	case prHasLabel(pr, "optimization"):
		reward = amounts.Optimization
		updates["optimisations"] = gorm.Expr("optimisations + 1")
	case prHasLabel(pr, "security"):
		reward = amounts.Security
	}
	updates["total_earnings"] = gorm.Expr("total_earnings + ?", reward)

	if err := s.GitHub.MergePullRequest(repoPath, req.PRNumber); err != nil {
		log.Printf("GitHub merge failed for %s#%d: %v", repoPath, req.PRNumber, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to merge pull request"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}
		notification := models.Notification{
			ID:      uuid.NewString(),
			UserID:  user.ID,
			Message: "Your submission for competition " + competition.Name + " has been approved",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		log.Printf("DB Error settling PR %s#%d: %v", repoPath, req.PRNumber, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "PR merged but settlement failed"})
	}

	s.Cache.Delete(c.Context(), cache.UserKey(user.Username))

	return c.JSON(fiber.Map{"message": "PR merged and user earnings updated", "payout": reward})
}

func prHasLabel(pr *PullRequest, name string) bool {
	for _, label := range pr.Labels {
		if strings.EqualFold(label.Name, name) {
			return true
		}
	}
	return false
}

func csvToJSON(csv string) datatypes.JSON {
	var items []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return sliceToJSON(items)
}

func sliceToJSON(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}
