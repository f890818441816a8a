package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/gorm"
)

type TaskService struct {
	db        *gorm.DB
	statusLog *StatusLog
	publisher events.Publisher
}

func NewTaskService(db *gorm.DB, publisher events.Publisher) *TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TaskService{
		db:        db,
		statusLog: NewStatusLog(db),
		publisher: publisher,
	}
}

// loadOwnTask fetches a task inside tx and checks that actorID is its assignee.
func loadOwnTask(tx *gorm.DB, taskID, actorID uint) (*models.Task, error) {
	var task models.Task
	if err := tx.First(&task, taskID).Error; err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	if task.AssignedToID != actorID {
		return nil, fmt.Errorf("%w: task %d is not assigned to user %d", access.ErrUnauthorized, taskID, actorID)
	}
	return &task, nil
}

// moveReport advances the task's report to status and records the change. It is a
// no-op when the report is already there.
func (ts *TaskService) moveReport(tx *gorm.DB, reportID, actorID uint, status models.ReportStatus, notes string) (*models.StatusUpdate, error) {
	var report models.Report
	if err := tx.First(&report, reportID).Error; err != nil {
		return nil, notFound(err, ErrReportNotFound)
	}

	prev := report.Status
	if prev == status {
		return nil, nil
	}
	if !models.CanTransitionReport(prev, status) {
		return nil, fmt.Errorf("%w: report %s -> %s", ErrInvalidTransition, prev, status)
	}

	result := tx.Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, prev).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update report status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}

	return ts.statusLog.Record(tx, models.ReportRef(reportID), string(prev), string(status), actorID, notes)
}

// Start moves an Assigned task and its report to In Progress.
func (ts *TaskService) Start(ctx context.Context, taskID, repairID uint) (*models.Task, error) {
	var task *models.Task
	var update *models.StatusUpdate

	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, repairID, access.TaskStart); err != nil {
			return err
		}

		var err error
		task, err = loadOwnTask(tx, taskID, repairID)
		if err != nil {
			return err
		}
		switch task.Status {
		case models.TaskStatusCompleted:
			return ErrTaskCompleted
		case models.TaskStatusInProgress:
			return fmt.Errorf("%w: task already in progress", ErrInvalidTransition)
		}

		result := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", taskID, models.TaskStatusAssigned).
			Update("status", models.TaskStatusInProgress)
		if result.Error != nil {
			return fmt.Errorf("failed to start task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConflict
		}
		task.Status = models.TaskStatusInProgress

		update, err = ts.moveReport(tx, task.ReportID, repairID, models.ReportStatusInProgress, "Repair work started")
		return err
	})
	if err != nil {
		logger.WithTask(taskID, repairID).WithError(err).Warn("Task start rejected")
		return nil, err
	}

	logger.WithTask(taskID, repairID).Info("Task started")
	if update != nil {
		publish(ctx, ts.publisher, statusEvent(update, models.ReportRef(task.ReportID), repairID))
	}
	return task, nil
}

// Complete closes a task and its report in one transaction. completed_at is written
// only by the first successful completion.
func (ts *TaskService) Complete(ctx context.Context, taskID, repairID uint) (*models.Task, error) {
	var task *models.Task
	var update *models.StatusUpdate

	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadActor(tx, repairID, access.TaskComplete); err != nil {
			return err
		}

		var err error
		task, err = loadOwnTask(tx, taskID, repairID)
		if err != nil {
			return err
		}
		if task.Status == models.TaskStatusCompleted {
			return ErrTaskCompleted
		}

		now := time.Now()
		result := tx.Model(&models.Task{}).
			Where("id = ? AND status <> ?", taskID, models.TaskStatusCompleted).
			Updates(map[string]interface{}{
				"status":       models.TaskStatusCompleted,
				"completed_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTaskCompleted
		}
		task.Status = models.TaskStatusCompleted
		task.CompletedAt = &now

		update, err = ts.moveReport(tx, task.ReportID, repairID, models.ReportStatusCompleted, "Task completed by repair team")
		return err
	})
	if err != nil {
		logger.WithTask(taskID, repairID).WithError(err).Warn("Task completion rejected")
		return nil, err
	}

	logger.WithTask(taskID, repairID).WithField("report_id", task.ReportID).Info("Task completed")
	if update != nil {
		publish(ctx, ts.publisher, statusEvent(update, models.ReportRef(task.ReportID), repairID))
	}
	return task, nil
}

// ListForAssignee returns the tasks assigned to a repair team user, newest first.
func (ts *TaskService) ListForAssignee(ctx context.Context, assigneeID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := ts.db.WithContext(ctx).
		Preload("Report").
		Where("assigned_to_id = ?", assigneeID).
		Order("created_at DESC").Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetForAssignee loads one task. Tasks assigned to someone else are reported as not found.
func (ts *TaskService) GetForAssignee(ctx context.Context, taskID, assigneeID uint) (*models.Task, error) {
	var task models.Task
	err := ts.db.WithContext(ctx).
		Preload("Report").
		Preload("AssignedBy").
		Where("id = ? AND assigned_to_id = ?", taskID, assigneeID).
		First(&task).Error
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	return &task, nil
}

// CountActive counts tasks still waiting to be started.
func (ts *TaskService) CountActive(ctx context.Context, assigneeID uint) (int64, error) {
	var count int64
	err := ts.db.WithContext(ctx).Model(&models.Task{}).
		Where("assigned_to_id = ? AND status = ?", assigneeID, models.TaskStatusAssigned).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func (ts *TaskService) GetByReport(ctx context.Context, reportID uint) (*models.Task, error) {
	var task models.Task
	err := ts.db.WithContext(ctx).
		Preload("AssignedTo").
		Where("report_id = ?", reportID).
		First(&task).Error
	if err != nil {
		return nil, notFound(err, ErrTaskNotFound)
	}
	return &task, nil
}
