package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"codecall-platform/config"
	"codecall-platform/models"
	"codecall-platform/services"
	"codecall-platform/utils"
)

func main() {
	log.Println("🌱 Starting CodeCall seeder...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("✓ Connected to PostgreSQL")

	if err := db.SetupJoinTable(&models.Competition{}, "Judges", &models.CompetitionJudge{}); err != nil {
		log.Fatalf("Failed to set up judge join table: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.CompletedTask{},
		&models.ApprovedSubmission{},
		&models.Competition{},
		&models.Submission{},
		&models.Training{},
		&models.TrainingSubmission{},
		&models.Notification{},
		&models.WalletMirror{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Database migrations completed")

	wipe(db)

	github := services.NewGitHubClient(cfg.GitHub)

	seedUsers(db)
	seedCompetitions(db, github)
	seedTrainings(db)

	log.Println("✅ Seeding completed")
}

// wipe clears all seedable tables. Join and ledger tables go first so
// foreign keys never dangle mid-wipe.
func wipe(db *gorm.DB) {
	tables := []interface{}{
		&models.Notification{},
		&models.CompletedTask{},
		&models.ApprovedSubmission{},
		&models.Submission{},
		&models.TrainingSubmission{},
		&models.CompetitionJudge{},
		&models.WalletMirror{},
		&models.Competition{},
		&models.Training{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			log.Fatalf("Failed to wipe table %T: %v", table, err)
		}
	}
	log.Println("✓ Existing data cleared")
}

func seedUsers(db *gorm.DB) {
	users := []models.User{
		{
			Username:      "testuser",
			Email:         "testuser@example.com",
			Github:        "https://github.com/testuser",
			XP:            500,
			TotalEarnings: 100,
			Features:      5,
			Bugs:          2,
			Optimisations: 3,
		},
		{
			Username:      "developer2",
			Email:         "dev2@example.com",
			Github:        "https://github.com/developer2",
			XP:            300,
			TotalEarnings: 50,
			Features:      3,
			Bugs:          1,
			Optimisations: 1,
		},
	}
	for i := range users {
		users[i].ID = uuid.New().String()
		wallet, err := utils.RandomWalletAddress()
		if err != nil {
			log.Fatalf("Failed to generate wallet address: %v", err)
		}
		users[i].WalletAddress = wallet
	}
	if err := db.Create(&users).Error; err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	log.Printf("✓ Seeded %d users", len(users))
}

func seedCompetitions(db *gorm.DB, github *services.GitHubClient) {
	now := time.Now()
	competitions := []models.Competition{
		{
			Name:           "Rust CLI Hardening Sprint",
			Description:    "Harden the sample CLI against malformed input and fuzz findings.",
			Reward:         1000,
			Points:         50,
			Languages:      mustJSON([]string{"JavaScript", "Python"}),
			Types:          mustJSON([]string{"Feature", "Optimization"}),
			StartDate:      now.AddDate(0, 0, -3),
			EndDate:        now.AddDate(0, 0, 11),
			RepositoryLink: "https://github.com/codecall-platform/cli-hardening",
		},
		{
			Name:           "API Gateway Bug Hunt",
			Description:    "Find and fix correctness bugs in the gateway request pipeline.",
			Reward:         2000,
			Points:         75,
			Languages:      mustJSON([]string{"Java", "Python"}),
			Types:          mustJSON([]string{"Bug", "Feature"}),
			StartDate:      now.AddDate(0, 0, 7),
			EndDate:        now.AddDate(0, 0, 21),
			RepositoryLink: "https://github.com/codecall-platform/gateway-hunt",
		},
	}
	for i := range competitions {
		competitions[i].ID = uuid.New().String()
		competitions[i].Slug = slug.Make(competitions[i].Name)

		// Pull the repo README as the how-to guide when reachable.
		if repoPath, err := services.RepoPath(competitions[i].RepositoryLink); err == nil {
			if readme, err := github.GetReadme(repoPath); err == nil {
				competitions[i].HowToGuide = readme
			} else {
				log.Printf("README fetch skipped for %s: %v", repoPath, err)
			}
		}
	}
	if err := db.Create(&competitions).Error; err != nil {
		log.Fatalf("Failed to seed competitions: %v", err)
	}
	log.Printf("✓ Seeded %d competitions", len(competitions))
}

func seedTrainings(db *gorm.DB) {
	now := time.Now()
	trainings := []models.Training{
		{
			Name:        "Intro to Concurrency Patterns",
			Description: "Four tasks walking through fan-out, cancellation and backpressure.",
			Difficulty:  models.DifficultyBeginner,
			Points:      200,
			Languages:   mustJSON([]string{"Go"}),
			StartDate:   now.AddDate(0, 0, -1),
			EndDate:     now.AddDate(0, 1, 0),
			Tests: mustJSON([]models.TestCase{
				{Input: "3 workers, 9 jobs", ExpectedOutput: "9 results"},
				{Input: "cancel after 2", ExpectedOutput: "2 results, no leak"},
			}),
			Hints: mustJSON([]string{
				"Start with a buffered channel sized to the worker count.",
				"Close the jobs channel exactly once.",
			}),
		},
	}
	for i := range trainings {
		trainings[i].ID = uuid.New().String()
		trainings[i].Slug = slug.Make(trainings[i].Name)
	}
	if err := db.Create(&trainings).Error; err != nil {
		log.Fatalf("Failed to seed trainings: %v", err)
	}
	log.Printf("✓ Seeded %d trainings", len(trainings))
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("Failed to marshal seed data: %v", err)
	}
	return data
}
