// services/judges.go
//
// Judge-role assignment and reward-split settlement. Judge-set mutations are
// atomic set-adds on the join table; the lead judge is a derived view (top
// of the judge set by XP) recomputed after every addition. The GitHub team
// grant is a best-effort side effect performed after the local commit and
// never rolled back.
package services

import (
	"errors"
	"log"
	"time"

	"codecall-platform/cache"
	"codecall-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SelectLeadJudge picks the highest-XP judge. Ties keep the earlier entry,
// so callers must pass judges in insertion order. Empty set returns nil.
func SelectLeadJudge(judges []models.User) *models.User {
	var lead *models.User
	for i := range judges {
		if lead == nil || judges[i].XP > lead.XP {
			lead = &judges[i]
		}
	}
	return lead
}

// loadJudges returns the judge set in insertion order.
func (s *CompetitionService) loadJudges(tx *gorm.DB, competitionID string) ([]models.User, error) {
	var judges []models.User
	err := tx.
		Joins("JOIN competition_judges cj ON cj.user_id = users.id").
		Where("cj.competition_id = ?", competitionID).
		Order("cj.created_at ASC").
		Find(&judges).Error
	return judges, err
}

// recomputeLeadJudge rewrites the derived lead-judge reference from the
// current judge set. Run after every judge addition; as XP totals shift the
// lead can change on the next recomputation, which is the intended
// most-qualified policy rather than a fixed assignment.
func (s *CompetitionService) recomputeLeadJudge(tx *gorm.DB, competition *models.Competition) error {
	judges, err := s.loadJudges(tx, competition.ID)
	if err != nil {
		return err
	}

	lead := SelectLeadJudge(judges)
	if lead == nil {
		competition.LeadJudgeID = nil
	} else {
		competition.LeadJudgeID = &lead.ID
	}
	return tx.Model(&models.Competition{}).
		Where("id = ?", competition.ID).
		Update("lead_judge_id", competition.LeadJudgeID).Error
}

// addJudgeEdge inserts the judge edge as an atomic set-add. Returns
// ErrAlreadyJudge when the user already holds judge or lead-judge standing.
var ErrAlreadyJudge = errors.New("user is already a judge or lead judge")

func (s *CompetitionService) addJudgeEdge(tx *gorm.DB, competition *models.Competition, user *models.User) error {
	if competition.LeadJudgeID != nil && *competition.LeadJudgeID == user.ID {
		return ErrAlreadyJudge
	}

	edge := models.CompetitionJudge{
		CompetitionID: competition.ID,
		UserID:        user.ID,
	}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// conflict: the edge already existed
		return ErrAlreadyJudge
	}
	return nil
}

// BecomeJudge assigns judge standing to a user by username. The domain
// mutation commits first; the GitHub review-team grant runs afterwards and
// its failure is reported as a warning, never undone.
func (s *CompetitionService) BecomeJudge(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Username string `json:"username" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username is required"})
	}

	var competition models.Competition
	if err := s.DB.First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var user models.User
	if err := s.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.addJudgeEdge(tx, &competition, &user); err != nil {
			return err
		}
		return s.recomputeLeadJudge(tx, &competition)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyJudge) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User is already a judge or lead judge"})
		}
		log.Printf("DB Error assigning judge role: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign judge role"})
	}

	response := fiber.Map{"message": "OK"}

	// Best-effort external mirror of the judge standing. The judge set is
	// already committed; callers should treat membership as probably but
	// not certainly mirrored.
	teamSlug := "judge-" + competition.Slug
	if err := s.GitHub.GrantTeamMembership(teamSlug, user.Username); err != nil {
		log.Printf("GitHub team grant failed for %s on %s: %v", user.Username, teamSlug, err)
		response["warning"] = "judge role assigned but GitHub team membership could not be granted"
	}

	if err := s.DB.Preload("LeadJudge").Preload("Judges").First(&competition, "id = ?", id).Error; err != nil {
		log.Printf("DB Error reloading competition %s: %v", id, err)
	}
	attachPhase(&competition, time.Now())
	response["competition"] = competition

	return c.JSON(response)
}

// AddJudge is the administrative variant of BecomeJudge without the
// external team grant.
func (s *CompetitionService) AddJudge(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Username string `json:"username" validate:"required"`
		Type     string `json:"type" validate:"required,oneof=judge"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username is required and type must be 'judge'"})
	}

	var competition models.Competition
	if err := s.DB.First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var user models.User
	if err := s.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.addJudgeEdge(tx, &competition, &user); err != nil {
			return err
		}
		return s.recomputeLeadJudge(tx, &competition)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyJudge) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User is already a judge or lead judge"})
		}
		log.Printf("DB Error assigning judge role: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign judge role"})
	}

	if err := s.DB.Preload("LeadJudge").Preload("Judges").First(&competition, "id = ?", id).Error; err != nil {
		log.Printf("DB Error reloading competition %s: %v", id, err)
	}
	attachPhase(&competition, time.Now())
	return c.JSON(competition)
}

// ApproveSubmission appends a payout to the user's ledger and increments
// totalEarnings in one transaction. With a PR number the ledger is keyed by
// (competition, PR) and duplicates are rejected; without one the call is
// deliberately not idempotent — repeated approvals pay again.
func (s *CompetitionService) ApproveSubmission(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Username       string                `json:"username" validate:"required"`
		SubmissionType models.SubmissionType `json:"submissionType" validate:"required,oneof=Feature Optimization Bug"`
		PRNumber       int                   `json:"prNumber"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and a submissionType of Feature, Optimization or Bug are required"})
	}

	var competition models.Competition
	if err := s.DB.First(&competition, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition or user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var user models.User
	if err := s.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Competition or user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	payout := PayoutFor(&competition, req.SubmissionType)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		entry := models.ApprovedSubmission{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			CompetitionID: competition.ID,
			Type:          req.SubmissionType,
			Payout:        payout,
			PRNumber:      req.PRNumber,
		}
		// Deduped approvals land on the partial unique ledger index, so a
		// repeat for the same (competition, PR) conflicts instead of paying
		// again; undeduped rows append unconditionally.
		insert := tx
		if ApprovalDeduped(req.PRNumber) {
			insert = tx.Clauses(clause.OnConflict{DoNothing: true})
		}
		result := insert.Create(&entry)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDuplicateApproval
		}
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("total_earnings", gorm.Expr("total_earnings + ?", payout)).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateApproval) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Submission already approved for this pull request"})
		}
		log.Printf("DB Error approving submission: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve submission"})
	}

	s.Cache.Delete(c.Context(), cache.UserKey(user.Username))

	return c.JSON(fiber.Map{"message": "Submission approved", "payout": payout})
}

// ErrDuplicateApproval marks a repeat approval for an already-settled PR.
var ErrDuplicateApproval = errors.New("submission already approved for this pull request")

// ApprovalDeduped reports whether an approval settles through the
// (competition, PR) dedupe key. Mirrors the ledger's partial unique index
// predicate: approvals without a PR number are appended unconditionally,
// so repeating one pays again.
func ApprovalDeduped(prNumber int) bool {
	return prNumber > 0
}
