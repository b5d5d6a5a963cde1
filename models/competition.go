package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionType is the category a competition submission competes in,
// mirroring the label the judges attach to the pull request.
type SubmissionType string

const (
	SubmissionTypeFeature      SubmissionType = "Feature"
	SubmissionTypeBug          SubmissionType = "Bug"
	SubmissionTypeOptimization SubmissionType = "Optimization"
	SubmissionTypeSecurity     SubmissionType = "Security"
)

type Competition struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	// Legacy persisted status. Display status is always derived from the
	// dates; this column is only the status watcher's last-notified
	// watermark and the target of the admin changeStatus endpoint.
	Status string `gorm:"default:'Live'" json:"status"`

	Reward float64 `gorm:"default:0" json:"reward"`
	Points int64   `gorm:"default:0" json:"points"`

	// Optional per-category fixed amounts; when absent, payouts fall back
	// to the percentage split of the reward pool.
	Rewards            datatypes.JSON `json:"rewards,omitempty"`
	RewardDistribution datatypes.JSON `json:"rewardDistribution,omitempty"`

	Languages datatypes.JSON `json:"languages,omitempty"` // []string as JSON
	Types     datatypes.JSON `json:"types,omitempty"`     // []string as JSON

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Image              string `json:"image"`
	WebsiteLink        string `json:"websiteLink"`
	RepositoryLink     string `json:"repositoryLink"`
	CompetitionDetails string `gorm:"type:text" json:"competitionDetails"`
	HowToGuide         string `gorm:"type:text" json:"howToGuide"`
	Scope              string `gorm:"type:text" json:"scope"`

	// LeadJudgeID is a derived cache: always the judge with the highest
	// XP, recomputed inside the same transaction as every judge addition.
	LeadJudgeID *string `gorm:"type:uuid" json:"leadJudgeId,omitempty"`
	LeadJudge   *User   `gorm:"foreignKey:LeadJudgeID" json:"leadJudge,omitempty"`
	Judges      []User  `gorm:"many2many:competition_judges" json:"judges,omitempty"`

	Submissions []Submission `gorm:"foreignKey:CompetitionID" json:"submissions,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Derived per request from the clock, never stored.
	Phase         string `gorm:"-" json:"phase,omitempty"`
	TimeRemaining string `gorm:"-" json:"timeRemaining,omitempty"`
}

// CompetitionJudge is the judge join table. CreatedAt orders the judge set
// so lead-judge XP ties resolve to the earliest-added judge.
type CompetitionJudge struct {
	CompetitionID string    `gorm:"primaryKey;type:uuid" json:"competitionId"`
	UserID        string    `gorm:"primaryKey;type:uuid" json:"userId"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Submission is a participant's declared entry in a competition.
type Submission struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	CompetitionID string         `gorm:"type:uuid;not null;index" json:"competitionId"`
	UserID        string         `gorm:"type:uuid;not null;index" json:"userId"`
	Type          SubmissionType `gorm:"type:varchar(16)" json:"type"`
	CodeLink      string         `json:"codeLink"`
	PRNumber      int            `gorm:"default:0" json:"prNumber"`
	Approved      bool           `gorm:"default:false" json:"approved"`
	Payout        float64        `gorm:"default:0" json:"payout"`
	Timestamp     time.Time      `json:"timestamp" gorm:"autoCreateTime"`
}
