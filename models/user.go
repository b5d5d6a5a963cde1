package models

import (
	"time"
)

// User is sourced from GitHub on first login. The user record solely owns
// its progress fields; only the judge-role flow and the XP award touch them.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Avatar   string `json:"avatar"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Github   string `json:"github"`

	TotalEarnings float64 `gorm:"default:0" json:"totalEarnings"`
	XP            int64   `gorm:"default:0" json:"xp"`
	Features      int64   `gorm:"default:0" json:"Features"`
	Bugs          int64   `gorm:"default:0" json:"Bugs"`
	Optimisations int64   `gorm:"default:0" json:"Optimisations"`

	WalletAddress string `json:"walletAddress"`
	Discord       string `json:"discord"`
	Telegram      string `json:"telegram"`
	Twitter       string `json:"twitter"`
	Linkedin      string `json:"linkedin"`
	Bio           string `gorm:"type:text" json:"bio"`

	CompletedTasks      []CompletedTask      `gorm:"foreignKey:UserID" json:"completedTasks,omitempty"`
	ApprovedSubmissions []ApprovedSubmission `gorm:"foreignKey:UserID" json:"approvedSubmissions,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CompletedTask marks one (taskId, trainingId) pair as awarded. The unique
// index is the idempotence guard: a pair earns XP at most once, even under
// concurrent awards.
type CompletedTask struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_task_training" json:"user_id"`
	TaskID     int       `gorm:"not null;uniqueIndex:idx_user_task_training" json:"taskId"`
	TrainingID string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_task_training" json:"trainingId"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ApprovedSubmission is one row of the append-only payout ledger. The
// partial unique index on (competition, PR number) is the duplicate-payment
// guard: an approval that carries a PR number settles at most once, even
// under concurrent approvals, while rows without one stay unconstrained.
type ApprovedSubmission struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string         `gorm:"type:uuid;not null;index" json:"user_id"`
	CompetitionID string         `gorm:"type:uuid;not null;index;uniqueIndex:idx_competition_pr" json:"competitionId"`
	Type          SubmissionType `gorm:"type:varchar(16)" json:"submissionType"`
	Payout        float64        `gorm:"default:0" json:"payout"`
	PRNumber      int            `gorm:"default:0;uniqueIndex:idx_competition_pr,where:pr_number > 0" json:"prNumber"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}
