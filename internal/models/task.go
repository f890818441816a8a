package models

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskStatusAssigned   TaskStatus = "Assigned"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Task is the repair work item derived from an assigned report. A report has at most one.
type Task struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	ReportID     uint       `json:"reportId" gorm:"not null;uniqueIndex"`
	Report       *Report    `json:"report,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	AssignedByID *uint      `json:"assignedById"`
	AssignedBy   *User      `json:"assignedBy,omitempty" gorm:"foreignKey:AssignedByID;constraint:OnDelete:SET NULL"`
	AssignedToID uint       `json:"assignedToId" gorm:"not null;index"`
	AssignedTo   *User      `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE"`
	TaskDetails  string     `json:"taskDetails" gorm:"type:text;not null"`
	Status       TaskStatus `json:"status" gorm:"not null;default:'Assigned';size:20;index"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskDetailsFor describes the work for a report, e.g. "Fix Pothole (Priority: High)".
func TaskDetailsFor(r *Report) string {
	return fmt.Sprintf("Fix %s (Priority: %s)", r.Title, r.Priority)
}
