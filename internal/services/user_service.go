package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// AccountInput describes a new user account.
type AccountInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.UserRole
}

func (in *AccountInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Username == "" {
		return validationError("username is required")
	}
	if len(in.Password) < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return validationError("invalid email address")
		}
	}
	if !in.Role.Valid() {
		return validationError("unknown role %q", in.Role)
	}
	return nil
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a citizen account. Self-registration never grants a staff role.
func (us *UserService) Register(ctx context.Context, in AccountInput) (*models.User, error) {
	in.Role = models.RoleCitizen
	return us.create(us.db.WithContext(ctx), in)
}

// CreateUser lets an admin create an account with any role.
func (us *UserService) CreateUser(ctx context.Context, adminID uint, in AccountInput) (*models.User, error) {
	var user *models.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, adminID, access.AdminCreateUser); err != nil {
			return err
		}
		var err error
		user, err = us.create(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.WithUser(adminID).WithFields(map[string]interface{}{
		"new_user_id": user.ID,
		"role":        user.Role,
	}).Info("Staff account created")
	return user, nil
}

func (us *UserService) create(tx *gorm.DB, in AccountInput) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var existing int64
	if err := tx.Unscoped().Model(&models.User{}).Where("username = ?", in.Username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, in.Username)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func (us *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := us.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (us *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := us.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// List returns users ordered by id, optionally only those holding role.
func (us *UserService) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := us.db.WithContext(ctx)
	if role != "" {
		if !role.Valid() {
			return nil, validationError("unknown role %q", role)
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (us *UserService) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := us.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
