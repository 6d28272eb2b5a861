package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"session-auth/internal/config"
	"session-auth/internal/domain/user"
	"session-auth/internal/rbac/presets"
	"session-auth/internal/repository/postgres"
	apperrors "session-auth/pkg/errors"
	"session-auth/pkg/password"

	"github.com/joho/godotenv"
)

const (
	defaultSchemaPath = "database/schema.sql"
	setupTimeout      = 2 * time.Minute

	envOwnerPassword = "SETUP_OWNER_PASSWORD"

	tableExistsQuery = `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	)`
)

var requiredTables = []string{"users", "user_sessions", "auth_audit_events"}

func main() {
	schemaPath := flag.String("schema", defaultSchemaPath, "path to the SQL schema")
	ownerEmail := flag.String("owner-email", "", "create an owner account with this email")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := applySchema(ctx, db, *schemaPath); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Printf("Applied %s", *schemaPath)

	missing, err := missingTables(ctx, db)
	if err != nil {
		log.Fatalf("Failed to verify tables: %v", err)
	}
	if len(missing) > 0 {
		log.Printf("Tables not created: %v", missing)
		os.Exit(1)
	}

	if *ownerEmail != "" {
		if err := createOwner(ctx, db, cfg, *ownerEmail); err != nil {
			log.Fatalf("Failed to create owner: %v", err)
		}
	}

	fmt.Println("Database ready. Start the server with: go run ./cmd/authd")
}

func applySchema(ctx context.Context, db *postgres.DB, path string) error {
	schema, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, string(schema))
	return err
}

func missingTables(ctx context.Context, db *postgres.DB) ([]string, error) {
	var missing []string
	for _, table := range requiredTables {
		var exists bool
		if err := db.Pool.QueryRow(ctx, tableExistsQuery, table).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// createOwner is a no-op when the email is already registered.
func createOwner(ctx context.Context, db *postgres.DB, cfg *config.Config, email string) error {
	plain := os.Getenv(envOwnerPassword)
	if plain == "" {
		return fmt.Errorf("%s must be set when -owner-email is given", envOwnerPassword)
	}

	hash, err := password.HashWithCost(plain, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	users := postgres.NewUserRepository(db, postgres.UserRepositoryOptions{
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	id, err := users.Create(ctx, user.CreateUserInput{
		Email:        email,
		FirstName:    "Owner",
		Role:         presets.LevelOwner,
		PasswordHash: hash,
		Source:       user.SourceLocal,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		log.Printf("Owner %s already exists", email)
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Created owner %s (%s)", email, id)
	return nil
}
