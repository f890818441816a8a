package services

import (
	"errors"
	"fmt"

	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrReportNotFound    = errors.New("report not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrComplaintNotFound = errors.New("complaint not found")

	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTaskExists         = errors.New("report already has a task")
	ErrTaskCompleted      = errors.New("task already completed")
	ErrConflict           = errors.New("record was modified concurrently")
	ErrNotRepairTeam      = errors.New("assignee is not a repair team member")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// loadActor fetches the acting user inside tx and checks the stored role against op.
func loadActor(tx *gorm.DB, actorID uint, op access.Operation) (*models.User, error) {
	var actor models.User
	if err := tx.First(&actor, actorID).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if err := access.Authorize(actor.Role, op); err != nil {
		return nil, err
	}
	return &actor, nil
}
