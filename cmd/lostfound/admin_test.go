package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/auth"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/db"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"

	seen := map[string]bool{}
	for range 10 {
		pw, err := generatePassword(16)
		require.NoError(t, err)
		require.Len(t, pw, 16)
		for _, c := range pw {
			require.True(t, strings.ContainsRune(charset, c), "unexpected character %q in %q", c, pw)
		}
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1, "expected distinct passwords")
}

// runCLI runs the lostfound command against the database at dbPath.
func runCLI(t *testing.T, dbPath string, args ...string) error {
	t.Helper()
	argv := append([]string{
		"lostfound",
		"--database", dbPath,
		"--config", filepath.Join(t.TempDir(), "none.toml"),
	}, args...)
	return newApp().Run(context.Background(), argv)
}

// lookupUser reopens the database and returns the oldest account for email.
func lookupUser(t *testing.T, dbPath, email string) *model.User {
	t.Helper()
	database, err := db.Open(dbPath)
	require.NoError(t, err)
	defer database.Close()

	u, err := store.GetUserByEmail(context.Background(), database, email)
	require.NoError(t, err)
	require.NotNil(t, u, "expected account %s", email)
	return u
}

func TestCreateAdmin(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lostfound.sqlite3")

	require.NoError(t, runCLI(t, dbPath, "create-admin", "--email", "admin@college.edu", "--password", "s3cret"))

	u := lookupUser(t, dbPath, "admin@college.edu")
	assert.True(t, u.IsAdmin)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "s3cret"), "expected the given password to be stored")
}

func TestCreateAdminPromotesExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lostfound.sqlite3")

	database, err := openDatabase(dbPath)
	require.NoError(t, err)
	hash, err := auth.HashPassword("studentpass")
	require.NoError(t, err)
	_, err = store.CreateUser(context.Background(), database, "staff@college.edu", hash, false)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	require.NoError(t, runCLI(t, dbPath, "create-admin", "--email", "staff@college.edu"))

	u := lookupUser(t, dbPath, "staff@college.edu")
	assert.True(t, u.IsAdmin, "expected user to be promoted")
	assert.True(t, auth.CheckPassword(u.PasswordHash, "studentpass"), "expected password to be unchanged")
}
