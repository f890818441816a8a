package services

import (
	"context"
	"errors"
	"testing"

	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/models"
)

func TestComplaintLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	complaint, err := f.complaints.Create(ctx, f.citizen.ID, "Noise from roadworks", "Every night after 11pm")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if complaint.Status != models.ComplaintStatusPending {
		t.Errorf("expected Pending, got %s", complaint.Status)
	}

	if _, err := f.complaints.UpdateStatus(ctx, complaint.ID, f.municipal.ID, models.ComplaintStatusReviewed, "Contacted contractor"); err != nil {
		t.Fatalf("UpdateStatus to Reviewed failed: %v", err)
	}
	if _, err := f.complaints.UpdateStatus(ctx, complaint.ID, f.municipal.ID, models.ComplaintStatusPending, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("backwards transition: expected ErrInvalidTransition, got %v", err)
	}
	resolved, err := f.complaints.UpdateStatus(ctx, complaint.ID, f.municipal.ID, models.ComplaintStatusResolved, "")
	if err != nil {
		t.Fatalf("UpdateStatus to Resolved failed: %v", err)
	}
	if resolved.Status != models.ComplaintStatusResolved {
		t.Errorf("expected Resolved, got %s", resolved.Status)
	}

	updates, err := f.complaints.Timeline(ctx, complaint.ID)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(updates))
	}
	for _, u := range updates {
		if u.ReportID != nil || u.ComplaintID == nil || *u.ComplaintID != complaint.ID {
			t.Errorf("entry %d does not reference only the complaint", u.ID)
		}
	}
	if updates[1].FromStatus != "Pending" || updates[1].ToStatus != "Reviewed" {
		t.Errorf("expected Pending -> Reviewed, got %s -> %s", updates[1].FromStatus, updates[1].ToStatus)
	}
}

func TestComplaintPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.complaints.Create(ctx, f.repair.ID, "issue", ""); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("repair create: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.complaints.Create(ctx, f.citizen.ID, "  ", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("blank issue: expected ErrValidation, got %v", err)
	}

	complaint, err := f.complaints.Create(ctx, f.citizen.ID, "issue", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.complaints.UpdateStatus(ctx, complaint.ID, f.citizen.ID, models.ComplaintStatusResolved, ""); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("citizen update: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.complaints.UpdateStatus(ctx, 404, f.municipal.ID, models.ComplaintStatusResolved, ""); !errors.Is(err, ErrComplaintNotFound) {
		t.Errorf("missing complaint: expected ErrComplaintNotFound, got %v", err)
	}
}

func TestListComplaints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _ := f.complaints.Create(ctx, f.citizen.ID, "first", "")
	second, _ := f.complaints.Create(ctx, f.citizen.ID, "second", "")
	if _, err := f.complaints.UpdateStatus(ctx, second.ID, f.municipal.ID, models.ComplaintStatusResolved, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	pending, err := f.complaints.List(ctx, models.ComplaintStatusPending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Errorf("expected only complaint %d pending, got %v", first.ID, pending)
	}

	all, _ := f.complaints.List(ctx, "")
	if len(all) != 2 {
		t.Errorf("expected 2 complaints, got %d", len(all))
	}

	mine, _ := f.complaints.ListForUser(ctx, f.citizen.ID)
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Errorf("expected newest first, got %v", mine)
	}

	count, _ := f.complaints.CountByStatus(ctx, models.ComplaintStatusResolved)
	if count != 1 {
		t.Errorf("expected 1 resolved complaint, got %d", count)
	}
}
