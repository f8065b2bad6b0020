package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lprs-app/peer-review-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config is the process configuration, read from the environment (a local
// .env is loaded when present).
type Config struct {
	Port           string
	JWTSecret      string
	GoogleClientID string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	DocDir        string
	ImageDir      string
	TempDir       string
	ExportDir     string
	RedundantsLog string
	SweepInterval time.Duration
}

func Load() *Config {
	// missing .env is fine, the environment may be set by the host
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         getenv("DB_PORT", "5432"),
		DBUser:         getenv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getenv("DB_NAME", "lprs"),
		DocDir:         getenv("DOC_STORE", "./data/documents"),
		ImageDir:       getenv("IMAGE_STORE", "./data/images"),
		TempDir:        getenv("UPLOAD_TMP", "./data/tmp"),
		ExportDir:      getenv("EXPORT_DIR", "./data/exports"),
		RedundantsLog:  getenv("REDUNDANTS_LOG", "./data/redundants.txt"),
		SweepInterval:  10 * time.Minute,
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SweepInterval = d
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ConnectDB opens the PostgreSQL connection, migrates the schema and seeds
// the default public cohort every new account is registered into. The handle
// is returned to the caller; nothing here keeps global state.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Connected to PostgreSQL & migrated successfully")
	return db, nil
}

// Migrate creates/updates every table and seeds the default cohort. Split out
// so tests can run it against their own handle.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Cohort{},
		&models.Registration{},
		&models.Invite{},
		&models.Post{},
		&models.Question{},
		&models.Criteria{},
		&models.Response{},
		&models.ExportJob{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// cohort 1 is the public cohort all new users join
	general := models.Cohort{
		ID:          1,
		Name:        "General",
		Description: "Everyone starts here",
		IsPrivate:   false,
	}
	if err := db.Where(models.Cohort{ID: 1}).FirstOrCreate(&general).Error; err != nil {
		return fmt.Errorf("seed default cohort: %w", err)
	}
	return nil
}
