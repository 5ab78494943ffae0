// Operator tool to seed permissions, system roles and the initial
// administrator account. Safe to run repeatedly.
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"graduation-project-api/config"
	"graduation-project-api/models"
	"graduation-project-api/services"
)

func main() {
	adminEmail := flag.String("admin-email", "admin@example.edu", "email for the initial administrator")
	flag.Parse()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	if err := models.AutoMigrate(config.DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	perms := services.NewPermissionService(config.DB)
	if err := perms.Seed(); err != nil {
		log.Fatal("Failed to seed permissions:", err)
	}
	log.Println("Permissions and system roles seeded")

	// Create the initial administrator if none exists
	var admin models.Admin
	err := config.DB.Where("username = ?", "Admin").First(&admin).Error
	switch {
	case err == nil:
		log.Printf("Administrator %q already exists, skipping", admin.Username)
	case err == gorm.ErrRecordNotFound:
		defaultPassword := services.GenerateDefaultPassword("Administrator", "0001")
		hashed, err := services.HashPassword(defaultPassword)
		if err != nil {
			log.Fatal("Failed to hash default password:", err)
		}

		admin = models.Admin{
			Username:           "Admin",
			DisplayName:        "Administrator",
			Email:              *adminEmail,
			Password:           hashed,
			MustChangePassword: true,
		}
		if err := config.DB.Create(&admin).Error; err != nil {
			log.Fatal("Failed to create administrator:", err)
		}
		if _, err := perms.EnsureUser(admin.Username, admin.DisplayName, models.RoleAdmin, admin.AdminID); err != nil {
			log.Fatal("Failed to assign administrator role:", err)
		}

		log.Printf("Administrator created with default password %q, change it on first login", defaultPassword)
	default:
		log.Fatal("Failed to look up administrator:", err)
	}

	log.Println("Account seeding completed")
}
