package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/urfave/cli/v3"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/auth"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/config"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/logging"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/store"
)

func runCreateAdmin(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)

	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	email := cmd.String("email")

	existing, err := store.GetUserByEmail(ctx, database, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := store.SetUserAdmin(ctx, database, existing.ID, true); err != nil {
			return fmt.Errorf("promoting user: %w", err)
		}
		fmt.Printf("Existing account %s promoted to admin.\n", email)
		fmt.Println("Its password was not changed.")
		return nil
	}

	password := cmd.String("password")
	generated := password == ""
	if generated {
		password, err = generatePassword(16)
		if err != nil {
			return fmt.Errorf("generating password: %w", err)
		}
	}
	if err := model.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.CreateUser(ctx, database, email, hash, true); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	printAdminCreated(cfg.Database.Path, email, password, generated)
	return nil
}

// printAdminCreated prints the new admin account to stdout.
func printAdminCreated(dbPath, email, password string, generated bool) {
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	if generated {
		fmt.Printf("  Password: %s\n", password)
		fmt.Println()
		fmt.Println("Save this password. It cannot be recovered.")
	}
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
