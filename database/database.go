package database

import (
	"fmt"
	"log"

	config "github.com/labsync/labsync/configs"
	"github.com/labsync/labsync/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Technician{},
		&models.LabTestBooking{},
		&models.LabTask{},
		&models.LabReport{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}

	// One active booking per (date, slot). The partial unique index closes the
	// race two concurrent writers would otherwise win together: the loser's
	// insert fails and is surfaced as a slot conflict.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_lab_test_bookings_active_slot
		ON lab_test_bookings (scheduled_date, scheduled_time)
		WHERE status IN ('pending', 'assigned', 'in-progress') AND scheduled_time IS NOT NULL
	`).Error
	if err != nil {
		log.Fatalf("🔥 Failed to create active slot index: %v", err)
	}

	// One active booking per technician. Two concurrent assignments on
	// different bookings lock different rows and both pass the active-job
	// read, so the invariant needs its own arbiter at write time. The loser's
	// commit fails and is surfaced as technician-unavailable.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_lab_test_bookings_active_technician
		ON lab_test_bookings (technician_id)
		WHERE status IN ('assigned', 'in-progress') AND technician_id IS NOT NULL
	`).Error
	if err != nil {
		log.Fatalf("🔥 Failed to create active technician index: %v", err)
	}

	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
