package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type EntityKind string

const (
	EntityReport    EntityKind = "report"
	EntityComplaint EntityKind = "complaint"
)

// EntityRef points at exactly one audited entity.
type EntityRef struct {
	Kind EntityKind
	ID   uint
}

func ReportRef(id uint) EntityRef    { return EntityRef{Kind: EntityReport, ID: id} }
func ComplaintRef(id uint) EntityRef { return EntityRef{Kind: EntityComplaint, ID: id} }

func (r EntityRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

var ErrInvalidEntityRef = errors.New("status update must reference exactly one report or complaint")

// StatusUpdate is an append-only audit row for a status transition.
type StatusUpdate struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ComplaintID *uint      `json:"complaintId,omitempty" gorm:"index"`
	Complaint   *Complaint `json:"-" gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE"`
	ReportID    *uint      `json:"reportId,omitempty" gorm:"index"`
	Report      *Report    `json:"-" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	FromStatus  string     `json:"fromStatus" gorm:"not null;size:20"`
	ToStatus    string     `json:"toStatus" gorm:"not null;size:20;index"`
	Notes       string     `json:"notes" gorm:"type:text"`
	UpdatedByID *uint      `json:"updatedById"`
	UpdatedBy   *User      `json:"updatedBy,omitempty" gorm:"foreignKey:UpdatedByID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"index"`
}

func (StatusUpdate) TableName() string {
	return "status_updates"
}

// NewStatusUpdate builds an audit row for ref. actorID may be zero for system changes.
func NewStatusUpdate(ref EntityRef, from, to string, actorID uint, notes string) (*StatusUpdate, error) {
	if ref.ID == 0 {
		return nil, ErrInvalidEntityRef
	}
	su := &StatusUpdate{FromStatus: from, ToStatus: to, Notes: notes}
	id := ref.ID
	switch ref.Kind {
	case EntityReport:
		su.ReportID = &id
	case EntityComplaint:
		su.ComplaintID = &id
	default:
		return nil, ErrInvalidEntityRef
	}
	if actorID != 0 {
		actor := actorID
		su.UpdatedByID = &actor
	}
	return su, nil
}

// Ref reports which entity the row belongs to.
func (su *StatusUpdate) Ref() (EntityRef, error) {
	switch {
	case su.ReportID != nil && su.ComplaintID == nil:
		return ReportRef(*su.ReportID), nil
	case su.ComplaintID != nil && su.ReportID == nil:
		return ComplaintRef(*su.ComplaintID), nil
	default:
		return EntityRef{}, ErrInvalidEntityRef
	}
}

func (su *StatusUpdate) BeforeCreate(tx *gorm.DB) error {
	_, err := su.Ref()
	return err
}

func (su *StatusUpdate) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("status updates are append-only")
}
