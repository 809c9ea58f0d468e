package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/CosmicMagnetar/unilodge/pkg/jwt"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
)

func main() {
	var (
		dbURLFlag string
		name      string
		email     string
		password  string
		roleFlag  string
		migrate   bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&name, "name", "Administrator", "display name of the account")
	flag.StringVar(&email, "email", "", "login email (required)")
	flag.StringVar(&password, "password", "", "login password (defaults to ADMIN_PASSWORD)")
	flag.StringVar(&roleFlag, "role", string(models.RoleAdmin), "ADMIN or WARDEN")
	flag.BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	flag.Parse()

	// Load .env from the working directory if present
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if email == "" {
		log.Fatal("-email is required")
	}
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		log.Fatal("-password was not provided and ADMIN_PASSWORD is not set")
	}

	role := models.Role(roleFlag)
	if role != models.RoleAdmin && role != models.RoleWarden {
		log.Fatalf("role must be %s or %s, got %q", models.RoleAdmin, models.RoleWarden, roleFlag)
	}

	// Minimal database config without loading full app config
	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if migrate {
		applied, err := database.Migrate(db)
		if err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
		for _, m := range applied {
			fmt.Printf("Applied migration %s\n", m)
		}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	// Tokens are never issued here, so the signer only needs placeholder secrets
	authService := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewRefreshTokenRepository(db),
		jwt.NewService("unused", "unused-refresh", 0, 0),
		services.NewMemoryDenylist(),
		validator.New(),
		bcrypt.DefaultCost,
		logger,
	)

	user, err := authService.CreateUser(services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	}, role)
	if err != nil {
		log.Fatalf("failed to create account: %v", err)
	}

	fmt.Printf("Created %s account %s (%s)\n", user.Role, user.Email, user.ID)
}
