package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/igtharvillage/thar-api/config"
	"github.com/igtharvillage/thar-api/database"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/services/identity"
	"github.com/igtharvillage/thar-api/utils"
)

func main() {
	// Load environment variables
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	logger, err := utils.InitLogger(env.LOG_LEVEL, "", false)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection using GORM
	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	provider := identity.NewLocalProvider(store.GetDB(), identity.Config{
		JWT: identity.JWTConfig{
			Secret: env.JWT_SECRET,
			Issuer: env.JWT_ISSUER,
		},
		BcryptCost: identity.DefaultCost,
	})
	seeder := database.NewSeeder(store.GetDB(), provider)

	// Run seeds
	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("IG Thar Village - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	site := services.DefaultSiteSettings(env)
	if err := seeder.SeedAll(ctx, site, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("Seeding completed successfully!")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("Admin user created from ADMIN_EMAIL and ADMIN_PASSWORD environment variables.")
	fmt.Println("If not set, admin user creation is skipped.")
	fmt.Println()
}
