package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/models"
	"gorm.io/gorm"
)

// StatusLog appends and reads the status audit trail for reports and complaints.
type StatusLog struct {
	db *gorm.DB
}

func NewStatusLog(db *gorm.DB) *StatusLog {
	return &StatusLog{db: db}
}

// Record appends one audit row using tx so it commits or rolls back with the change it
// describes.
func (sl *StatusLog) Record(tx *gorm.DB, ref models.EntityRef, from, to string, actorID uint, notes string) (*models.StatusUpdate, error) {
	update, err := models.NewStatusUpdate(ref, from, to, actorID, notes)
	if err != nil {
		return nil, err
	}
	if err := tx.Omit("Complaint", "Report", "UpdatedBy").Create(update).Error; err != nil {
		return nil, fmt.Errorf("failed to record status update for %s: %w", ref, err)
	}
	return update, nil
}

// Timeline returns the audit rows of one entity, oldest first.
func (sl *StatusLog) Timeline(ctx context.Context, ref models.EntityRef) ([]models.StatusUpdate, error) {
	query := sl.db.WithContext(ctx).Preload("UpdatedBy")
	switch ref.Kind {
	case models.EntityReport:
		query = query.Where("report_id = ?", ref.ID)
	case models.EntityComplaint:
		query = query.Where("complaint_id = ?", ref.ID)
	default:
		return nil, models.ErrInvalidEntityRef
	}

	var updates []models.StatusUpdate
	if err := query.Order("created_at ASC").Order("id ASC").Find(&updates).Error; err != nil {
		return nil, fmt.Errorf("failed to load timeline for %s: %w", ref, err)
	}
	return updates, nil
}

func statusEvent(update *models.StatusUpdate, ref models.EntityRef, actorID uint) events.StatusChanged {
	return events.StatusChanged{
		Entity:   ref.Kind,
		EntityID: ref.ID,
		From:     update.FromStatus,
		To:       update.ToStatus,
		ActorID:  actorID,
		At:       update.CreatedAt,
	}
}

// publish sends committed transitions. Broker failures are logged and never surface to
// the caller since the database change has already been committed.
func publish(ctx context.Context, p events.Publisher, evts ...events.StatusChanged) {
	for _, evt := range evts {
		if evt.At.IsZero() {
			evt.At = time.Now()
		}
		if err := p.PublishStatusChanged(ctx, evt); err != nil {
			logger.WithError(err, "events").WithField("routing_key", evt.RoutingKey()).Warn("Failed to publish status event")
		}
	}
}
