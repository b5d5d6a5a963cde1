package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"codecall-platform/models"
)

// StartStatusWatcher polls competitions once a minute and notifies
// participants when one crosses a phase boundary. The stored Status column
// acts as the last-notified watermark; the phase shown to clients is always
// derived from the clock, so a late or missed tick only delays
// notifications, never the displayed phase. The scheduler stops when ctx is
// cancelled.
func (s *CompetitionService) StartStatusWatcher(ctx context.Context) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var competitions []models.Competition
			if err := s.DB.Find(&competitions).Error; err != nil {
				log.Printf("[StatusWatcher] DB error: %v", err)
				return
			}

			now := time.Now()
			for _, comp := range competitions {
				phase := string(ClassifyPhase(now, comp.StartDate, comp.EndDate))
				if phase == comp.Status {
					continue
				}
				if err := s.advancePhase(&comp, phase); err != nil {
					log.Printf("[StatusWatcher] Failed to advance %s to %s: %v", comp.Name, phase, err)
				} else {
					log.Printf("[StatusWatcher] %s entered %s phase", comp.Name, phase)
				}
			}
		}),
	)
}

// advancePhase records the new watermark and fans out notifications to
// everyone with an approved submission in the competition.
func (s *CompetitionService) advancePhase(comp *models.Competition, phase string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Competition{}).
			Where("id = ?", comp.ID).
			Update("status", phase).Error; err != nil {
			return err
		}

		var participantIDs []string
		if err := tx.Model(&models.ApprovedSubmission{}).
			Where("competition_id = ?", comp.ID).
			Distinct("user_id").
			Pluck("user_id", &participantIDs).Error; err != nil {
			return err
		}
		if len(participantIDs) == 0 {
			return nil
		}

		message := phaseMessage(comp.Name, phase)
		notifications := make([]models.Notification, 0, len(participantIDs))
		for _, userID := range participantIDs {
			notifications = append(notifications, models.Notification{
				ID:      uuid.New().String(),
				UserID:  userID,
				Message: message,
			})
		}
		return tx.Create(&notifications).Error
	})
}

func phaseMessage(name, phase string) string {
	switch phase {
	case string(PhaseLive):
		return fmt.Sprintf("%s is now live. Submissions are open.", name)
	case string(PhaseJudging):
		return fmt.Sprintf("%s has entered judging. Submissions are closed.", name)
	case string(PhaseEnded):
		return fmt.Sprintf("%s has ended. Check your profile for results.", name)
	default:
		return fmt.Sprintf("%s is %s.", name, phase)
	}
}
