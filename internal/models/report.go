package models

import (
	"time"

	"github.com/lib/pq"
)

type ReportStatus string
type ReportPriority string

const (
	ReportStatusNew        ReportStatus = "New" // only ever used as a from_status in the audit log
	ReportStatusPending    ReportStatus = "Pending"
	ReportStatusReviewed   ReportStatus = "Reviewed"
	ReportStatusAssigned   ReportStatus = "Assigned"
	ReportStatusInProgress ReportStatus = "In Progress"
	ReportStatusCompleted  ReportStatus = "Completed"
)

const (
	PriorityLow      ReportPriority = "Low"
	PriorityMedium   ReportPriority = "Medium"
	PriorityHigh     ReportPriority = "High"
	PriorityCritical ReportPriority = "Critical"
)

// ReportStatuses lists the statuses a stored report can hold.
var ReportStatuses = []ReportStatus{
	ReportStatusPending,
	ReportStatusReviewed,
	ReportStatusAssigned,
	ReportStatusInProgress,
	ReportStatusCompleted,
}

func (s ReportStatus) Valid() bool {
	for _, status := range ReportStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// priorityRank orders priorities from most to least urgent.
var priorityRank = map[ReportPriority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

func (p ReportPriority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Rank returns 0 for Critical up to 3 for Low. Unknown priorities sort last.
func (p ReportPriority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

type Report struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CitizenID    uint           `json:"citizenId" gorm:"not null;index"`
	Citizen      User           `json:"citizen" gorm:"foreignKey:CitizenID;constraint:OnDelete:CASCADE"`
	Title        string         `json:"title" gorm:"not null;size:255"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	Location     string         `json:"location" gorm:"not null;size:255"`
	Image        *string        `json:"image,omitempty" gorm:"size:255"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text"`
	Status       ReportStatus   `json:"status" gorm:"not null;default:'Pending';size:20;index"`
	Priority     ReportPriority `json:"priority" gorm:"not null;default:'Medium';size:20"`
	AssignedToID *uint          `json:"assignedToId"`
	AssignedTo   *User          `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL"`
	Task         *Task          `json:"task,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (Report) TableName() string {
	return "reports"
}
