package main

import (
	"log"
	"os"

	"go-mt-distribution/internal/model"
	"go-mt-distribution/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Resets the bootstrap admin password, or creates the account if the seed
// never ran. Useful when the local credential is lost and the identity
// directory is unreachable.
func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup database
	db := database.ConnectDB()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// 3. Find or create the admin account
	var user model.User
	if err := db.Where("username = ?", "admin").First(&user).Error; err != nil {
		var adminRole model.Role
		if err := db.Where("name = ?", string(model.RoleAdmin)).First(&adminRole).Error; err != nil {
			log.Fatalf("Admin role not found; run the API once to seed defaults: %v", err)
		}

		user = model.User{
			Username: "admin",
			FullName: "System Administrator",
			Password: string(hashed),
			IsActive: true,
			Roles:    []model.Role{adminRole},
		}
		user.CreatedBy = "system"
		user.UpdatedBy = "system"
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Println("Admin user created")
		return
	}

	// 4. Update the existing account
	if err := db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		log.Fatalf("Failed to update password: %v", err)
	}
	log.Println("Admin password has been reset")
}
