package models

import "time"

type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "Pending"
	ComplaintStatusReviewed ComplaintStatus = "Reviewed"
	ComplaintStatusResolved ComplaintStatus = "Resolved"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusReviewed, ComplaintStatusResolved:
		return true
	}
	return false
}

// Complaint is a citizen grievance that is tracked separately from road reports.
type Complaint struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"userId" gorm:"not null;index"`
	User        *User           `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Issue       string          `json:"issue" gorm:"not null;size:255"`
	Description string          `json:"description" gorm:"type:text"`
	Status      ComplaintStatus `json:"status" gorm:"not null;default:'Pending';size:20;index"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Complaint) TableName() string {
	return "complaints"
}
