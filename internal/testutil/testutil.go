// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/db"
	"github.com/sujalbistaa/suara/internal/models"
)

// NewDB returns a migrated, private in-memory SQLite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	url := fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Init(url)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	t.Cleanup(func() { _ = db.Close(database) })
	return database
}

// CreateUser inserts a user whose password is "password123".
func CreateUser(t testing.TB, database *gorm.DB, username, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        username + "@kampus.ac.id",
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, database.Create(user).Error)
	return user
}
