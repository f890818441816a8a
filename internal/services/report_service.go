package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const submittedNote = "Report submitted via citizen portal"

// ReportInput is what a citizen supplies when filing a report.
type ReportInput struct {
	Title       string
	Description string
	Location    string
	Image       string
	Tags        []string
}

func (in *ReportInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Image = strings.TrimSpace(in.Image)

	switch {
	case in.Title == "":
		return validationError("title is required")
	case in.Description == "":
		return validationError("description is required")
	case in.Location == "":
		return validationError("location is required")
	case len(in.Title) > 255:
		return validationError("title must be at most 255 characters")
	}

	tags := make([]string, 0, len(in.Tags))
	seen := make(map[string]bool)
	for _, tag := range in.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	in.Tags = tags
	return nil
}

type ReportService struct {
	db        *gorm.DB
	statusLog *StatusLog
	publisher events.Publisher
}

func NewReportService(db *gorm.DB, publisher events.Publisher) *ReportService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ReportService{
		db:        db,
		statusLog: NewStatusLog(db),
		publisher: publisher,
	}
}

// Create files a new report in Pending and records its first audit entry.
func (rs *ReportService) Create(ctx context.Context, citizenID uint, in ReportInput) (*models.Report, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	report := &models.Report{
		CitizenID:   citizenID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Tags:        in.Tags,
		Status:      models.ReportStatusPending,
		Priority:    models.PriorityMedium,
	}
	if in.Image != "" {
		image := in.Image
		report.Image = &image
	}

	var update *models.StatusUpdate
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, citizenID, access.ReportCreate); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		var err error
		update, err = rs.statusLog.Record(tx, models.ReportRef(report.ID),
			string(models.ReportStatusNew), string(models.ReportStatusPending), citizenID, submittedNote)
		return err
	})
	if err != nil {
		logger.WithUser(citizenID).WithError(err).Warn("Report submission failed")
		return nil, err
	}

	logger.WithReport(report.ID, citizenID).Info("Report submitted")
	publish(ctx, rs.publisher, statusEvent(update, models.ReportRef(report.ID), citizenID))
	return report, nil
}

// Assign creates the repair task for a Pending or Reviewed report and moves the report
// to Assigned.
func (rs *ReportService) Assign(ctx context.Context, reportID, municipalID, repairTeamID uint) (*models.Task, error) {
	var task *models.Task
	var update *models.StatusUpdate

	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, municipalID, access.ReportAssign); err != nil {
			return err
		}

		var assignee models.User
		if err := tx.First(&assignee, repairTeamID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if assignee.Role != models.RoleRepairTeam {
			return ErrNotRepairTeam
		}

		var report models.Report
		if err := tx.First(&report, reportID).Error; err != nil {
			return notFound(err, ErrReportNotFound)
		}

		var existing int64
		if err := tx.Model(&models.Task{}).Where("report_id = ?", reportID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing task: %w", err)
		}
		if existing > 0 {
			return ErrTaskExists
		}

		prev := report.Status
		if !prev.Assignable() || !models.CanTransitionReport(prev, models.ReportStatusAssigned) {
			return fmt.Errorf("%w: cannot assign a report in status %s", ErrInvalidTransition, prev)
		}

		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, prev).
			Updates(map[string]interface{}{
				"status":         models.ReportStatusAssigned,
				"assigned_to_id": repairTeamID,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update report: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}
		report.Status = models.ReportStatusAssigned

		assignedBy := municipalID
		task = &models.Task{
			ReportID:     reportID,
			AssignedByID: &assignedBy,
			AssignedToID: repairTeamID,
			TaskDetails:  models.TaskDetailsFor(&report),
			Status:       models.TaskStatusAssigned,
		}
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		var err error
		update, err = rs.statusLog.Record(tx, models.ReportRef(reportID), string(prev),
			string(models.ReportStatusAssigned), municipalID,
			fmt.Sprintf("Assigned to %s", assignee.Username))
		return err
	})
	if err != nil {
		logger.WithReport(reportID, municipalID).WithError(err).Warn("Task assignment failed")
		return nil, err
	}

	logger.WithReport(reportID, municipalID).WithField("assignee_id", repairTeamID).Info("Report assigned")
	publish(ctx, rs.publisher, statusEvent(update, models.ReportRef(reportID), municipalID))
	return task, nil
}

// UpdateStatus applies a manual status change by municipal staff. The previous status is
// read before the change and stored as the audit entry's from_status.
func (rs *ReportService) UpdateStatus(ctx context.Context, reportID, municipalID uint, status models.ReportStatus, notes string) (*models.Report, error) {
	var report models.Report
	var update *models.StatusUpdate

	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, municipalID, access.ReportUpdateStatus); err != nil {
			return err
		}
		if !status.Valid() {
			return validationError("unknown report status %q", status)
		}
		if err := tx.First(&report, reportID).Error; err != nil {
			return notFound(err, ErrReportNotFound)
		}

		prev := report.Status
		if !models.CanManuallySetReport(prev, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, status)
		}

		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, prev).
			Update("status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update report status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}
		report.Status = status

		if status == models.ReportStatusInProgress {
			if err := tx.Model(&models.Task{}).
				Where("report_id = ? AND status = ?", reportID, models.TaskStatusAssigned).
				Update("status", models.TaskStatusInProgress).Error; err != nil {
				return fmt.Errorf("failed to update task status: %w", err)
			}
		}

		var err error
		update, err = rs.statusLog.Record(tx, models.ReportRef(reportID), string(prev), string(status), municipalID, strings.TrimSpace(notes))
		return err
	})
	if err != nil {
		logger.WithReport(reportID, municipalID).WithError(err).Warn("Report status update rejected")
		return nil, err
	}

	logger.WithReport(reportID, municipalID).WithFields(map[string]interface{}{
		"from": update.FromStatus,
		"to":   update.ToStatus,
	}).Info("Report status updated")
	publish(ctx, rs.publisher, statusEvent(update, models.ReportRef(reportID), municipalID))
	return &report, nil
}

func (rs *ReportService) UpdatePriority(ctx context.Context, reportID, municipalID uint, priority models.ReportPriority) (*models.Report, error) {
	var report models.Report
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, municipalID, access.ReportUpdatePriority); err != nil {
			return err
		}
		if !priority.Valid() {
			return validationError("unknown priority %q", priority)
		}
		if err := tx.First(&report, reportID).Error; err != nil {
			return notFound(err, ErrReportNotFound)
		}
		if err := tx.Model(&report).Update("priority", priority).Error; err != nil {
			return fmt.Errorf("failed to update priority: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithReport(reportID, municipalID).WithField("priority", priority).Info("Report priority updated")
	return &report, nil
}

// Get loads a report with its citizen, assignee and task.
func (rs *ReportService) Get(ctx context.Context, reportID uint) (*models.Report, error) {
	var report models.Report
	err := rs.db.WithContext(ctx).
		Preload("Citizen").
		Preload("AssignedTo").
		Preload("Task").
		First(&report, reportID).Error
	if err != nil {
		return nil, notFound(err, ErrReportNotFound)
	}
	return &report, nil
}

// ListForCitizen returns a citizen's reports, newest first. limit <= 0 returns all.
func (rs *ReportService) ListForCitizen(ctx context.Context, citizenID uint, limit int) ([]models.Report, error) {
	query := rs.db.WithContext(ctx).
		Where("citizen_id = ?", citizenID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// ReviewQueue returns reports awaiting assignment, most urgent first and oldest first
// within a priority. An empty priority returns every priority.
func (rs *ReportService) ReviewQueue(ctx context.Context, priority models.ReportPriority) ([]models.Report, error) {
	query := rs.db.WithContext(ctx).
		Preload("Citizen").
		Where("status IN ?", []models.ReportStatus{models.ReportStatusPending, models.ReportStatusReviewed})
	if priority != "" {
		if !priority.Valid() {
			return nil, validationError("unknown priority %q", priority)
		}
		query = query.Where("priority = ?", priority)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to load review queue: %w", err)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return reports, nil
}

func (rs *ReportService) ListAll(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := rs.db.WithContext(ctx).
		Preload("Citizen").
		Preload("AssignedTo").
		Order("created_at DESC").Order("id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// CountByStatus counts reports in status. An empty status counts every report.
func (rs *ReportService) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	query := rs.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// Timeline returns the audit trail of a report.
func (rs *ReportService) Timeline(ctx context.Context, reportID uint) ([]models.StatusUpdate, error) {
	return rs.statusLog.Timeline(ctx, models.ReportRef(reportID))
}
