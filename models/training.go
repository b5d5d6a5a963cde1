package models

import (
	"time"

	"gorm.io/datatypes"
)

// TrainingDifficulty levels for self-paced modules
type TrainingDifficulty string

const (
	DifficultyBeginner     TrainingDifficulty = "Beginner"
	DifficultyIntermediate TrainingDifficulty = "Intermediate"
	DifficultyAdvanced     TrainingDifficulty = "Advanced"
)

// TestCase is one input/expected-output pair of a training module
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Training is a self-paced module. Same lifecycle shape as Competition but
// its points pool feeds XP awards instead of monetary payouts.
type Training struct {
	ID          string             `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string             `gorm:"not null" json:"name"`
	Slug        string             `gorm:"uniqueIndex" json:"slug"`
	Description string             `gorm:"type:text" json:"description"`
	Difficulty  TrainingDifficulty `gorm:"type:varchar(16);default:'Beginner'" json:"difficulty"`

	// Legacy persisted status; display status is derived from the dates.
	Status string `gorm:"default:'Live'" json:"status"`

	Points int64 `gorm:"default:0" json:"points"`

	Languages datatypes.JSON `json:"languages,omitempty"` // []string as JSON
	Types     datatypes.JSON `json:"types,omitempty"`     // []string as JSON

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Image           string `json:"image"`
	RepositoryLink  string `json:"repositoryLink"`
	TrainingDetails string `gorm:"type:text" json:"trainingDetails"`
	HowToGuide      string `gorm:"type:text" json:"howToGuide"`
	Scope           string `gorm:"type:text" json:"scope"`
	StarterCode     string `json:"starterCode"` // CDN URL of the starter bundle

	Tests datatypes.JSON `json:"tests,omitempty"` // []TestCase as JSON
	Hints datatypes.JSON `json:"hints,omitempty"` // []string as JSON

	Submissions []TrainingSubmission `gorm:"foreignKey:TrainingID" json:"submissions,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Calculated fields (not stored in DB)
	Phase         string `json:"phase,omitempty" gorm:"-"`
	TimeRemaining string `json:"timeRemaining,omitempty" gorm:"-"`
}

// TrainingSubmission records work submitted for a training module
type TrainingSubmission struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	TrainingID string    `gorm:"type:uuid;not null;index" json:"training_id"`
	UserID     string    `gorm:"type:uuid;index" json:"userId"`
	CodeLink   string    `json:"codeLink"`
	Timestamp  time.Time `json:"timestamp" gorm:"autoCreateTime"`
}
