package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComplaintService struct {
	db        *gorm.DB
	statusLog *StatusLog
	publisher events.Publisher
}

func NewComplaintService(db *gorm.DB, publisher events.Publisher) *ComplaintService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ComplaintService{
		db:        db,
		statusLog: NewStatusLog(db),
		publisher: publisher,
	}
}

func (cs *ComplaintService) Create(ctx context.Context, userID uint, issue, description string) (*models.Complaint, error) {
	issue = strings.TrimSpace(issue)
	if issue == "" {
		return nil, validationError("issue is required")
	}
	if len(issue) > 255 {
		return nil, validationError("issue must be at most 255 characters")
	}

	complaint := &models.Complaint{
		UserID:      userID,
		Issue:       issue,
		Description: strings.TrimSpace(description),
		Status:      models.ComplaintStatusPending,
	}

	var update *models.StatusUpdate
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, userID, access.ComplaintCreate); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(complaint).Error; err != nil {
			return fmt.Errorf("failed to create complaint: %w", err)
		}

		var err error
		update, err = cs.statusLog.Record(tx, models.ComplaintRef(complaint.ID),
			string(models.ReportStatusNew), string(models.ComplaintStatusPending), userID, "Complaint submitted")
		return err
	})
	if err != nil {
		logger.WithUser(userID).WithError(err).Warn("Complaint submission failed")
		return nil, err
	}

	logger.WithUser(userID).WithField("complaint_id", complaint.ID).Info("Complaint submitted")
	publish(ctx, cs.publisher, statusEvent(update, models.ComplaintRef(complaint.ID), userID))
	return complaint, nil
}

func (cs *ComplaintService) UpdateStatus(ctx context.Context, complaintID, municipalID uint, status models.ComplaintStatus, notes string) (*models.Complaint, error) {
	var complaint models.Complaint
	var update *models.StatusUpdate

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, municipalID, access.ComplaintUpdateStatus); err != nil {
			return err
		}
		if !status.Valid() {
			return validationError("unknown complaint status %q", status)
		}
		if err := tx.First(&complaint, complaintID).Error; err != nil {
			return notFound(err, ErrComplaintNotFound)
		}

		prev := complaint.Status
		if !models.CanTransitionComplaint(prev, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, status)
		}

		result := tx.Model(&models.Complaint{}).
			Where("id = ? AND status = ?", complaintID, prev).
			Update("status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update complaint: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}
		complaint.Status = status

		var err error
		update, err = cs.statusLog.Record(tx, models.ComplaintRef(complaintID), string(prev), string(status), municipalID, strings.TrimSpace(notes))
		return err
	})
	if err != nil {
		logger.WithUser(municipalID).WithError(err).WithField("complaint_id", complaintID).Warn("Complaint status update rejected")
		return nil, err
	}

	publish(ctx, cs.publisher, statusEvent(update, models.ComplaintRef(complaintID), municipalID))
	return &complaint, nil
}

// List returns complaints, oldest first, optionally filtered by status.
func (cs *ComplaintService) List(ctx context.Context, status models.ComplaintStatus) ([]models.Complaint, error) {
	query := cs.db.WithContext(ctx).Preload("User")
	if status != "" {
		if !status.Valid() {
			return nil, validationError("unknown complaint status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var complaints []models.Complaint
	if err := query.Order("created_at ASC").Order("id ASC").Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

func (cs *ComplaintService) ListForUser(ctx context.Context, userID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := cs.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

func (cs *ComplaintService) CountByStatus(ctx context.Context, status models.ComplaintStatus) (int64, error) {
	var count int64
	err := cs.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	return count, nil
}

func (cs *ComplaintService) Get(ctx context.Context, complaintID uint) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := cs.db.WithContext(ctx).First(&complaint, complaintID).Error; err != nil {
		return nil, notFound(err, ErrComplaintNotFound)
	}
	return &complaint, nil
}

// Timeline returns the complaint's status history, oldest first.
func (cs *ComplaintService) Timeline(ctx context.Context, complaintID uint) ([]models.StatusUpdate, error) {
	return cs.statusLog.Timeline(ctx, models.ComplaintRef(complaintID))
}
