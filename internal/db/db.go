package db

import (
	"log"
	"os"

	"discuss/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and migrates the schema. The returned handle
// is the single database dependency for the process; it is wired into the
// services and handlers at startup and closed at shutdown.
func Open() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=discuss port=5432 sslmode=disable"
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return gdb, nil
}

// Migrate creates or updates the tables for all models.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Post{},
		&models.Comment{},
	)
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
