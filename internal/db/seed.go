package db

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// SeedFile represents the structure of the JSON seed file
type SeedFile struct {
	Users []UserData `json:"users"`
}

// LoadSeedFile reads the first of paths that exists.
func LoadSeedFile(paths ...string) (*SeedFile, error) {
	var lastErr error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}

		var seed SeedFile
		if err := json.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		logger.Info("Loaded seed file", map[string]interface{}{"path": path, "users": len(seed.Users)})
		return &seed, nil
	}
	return nil, fmt.Errorf("failed to read users file: %w", lastErr)
}

// SeedUsers creates the users that do not exist yet and returns how many were created.
// Unknown roles fall back to citizen.
func SeedUsers(gdb *gorm.DB, users []UserData) (int, error) {
	created := 0
	for _, userData := range users {
		if userData.Username == "" || userData.Password == "" {
			logger.Warn("Skipping seed user without username or password", map[string]interface{}{"email": userData.Email})
			continue
		}

		role := models.UserRole(userData.Role)
		if !role.Valid() {
			logger.Warn("Unknown role for seed user, defaulting to citizen", map[string]interface{}{
				"username": userData.Username,
				"role":     userData.Role,
			})
			role = models.RoleCitizen
		}

		var existing int64
		if err := gdb.Unscoped().Model(&models.User{}).Where("username = ?", userData.Username).Count(&existing).Error; err != nil {
			return created, fmt.Errorf("failed to check user %s: %w", userData.Username, err)
		}
		if existing > 0 {
			logger.Debug("Seed user already exists", map[string]interface{}{"username": userData.Username})
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, fmt.Errorf("failed to hash password for %s: %w", userData.Username, err)
		}

		user := models.User{
			Username:  userData.Username,
			Email:     userData.Email,
			Password:  string(hashedPassword),
			FirstName: userData.FirstName,
			LastName:  userData.LastName,
			Role:      role,
		}
		if err := gdb.Create(&user).Error; err != nil {
			return created, fmt.Errorf("failed to create user %s: %w", userData.Username, err)
		}

		logger.Info("Created seed user", map[string]interface{}{"username": user.Username, "role": user.Role})
		created++
	}
	return created, nil
}
