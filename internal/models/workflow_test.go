package models

import "testing"

func TestCanTransitionReport(t *testing.T) {
	tests := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportStatusPending, ReportStatusReviewed, true},
		{ReportStatusPending, ReportStatusAssigned, true},
		{ReportStatusReviewed, ReportStatusAssigned, true},
		{ReportStatusAssigned, ReportStatusInProgress, true},
		{ReportStatusAssigned, ReportStatusCompleted, true},
		{ReportStatusInProgress, ReportStatusCompleted, true},
		{ReportStatusPending, ReportStatusInProgress, false},
		{ReportStatusPending, ReportStatusCompleted, false},
		{ReportStatusReviewed, ReportStatusPending, false},
		{ReportStatusAssigned, ReportStatusReviewed, false},
		{ReportStatusCompleted, ReportStatusPending, false},
		{ReportStatusCompleted, ReportStatusCompleted, false},
	}

	for _, test := range tests {
		if got := CanTransitionReport(test.from, test.to); got != test.want {
			t.Errorf("CanTransitionReport(%q, %q) = %v, want %v", test.from, test.to, got, test.want)
		}
	}
}

func TestManualTransitionsAreSubsetOfGraph(t *testing.T) {
	for from, to := range manualReportTransitions {
		if !CanTransitionReport(from, to) {
			t.Errorf("manual transition %q -> %q is not in the report graph", from, to)
		}
	}
	if CanManuallySetReport(ReportStatusPending, ReportStatusAssigned) {
		t.Error("Assigned must only be reachable through task assignment")
	}
	if CanManuallySetReport(ReportStatusInProgress, ReportStatusCompleted) {
		t.Error("Completed must only be reachable through task completion")
	}
}

func TestCanTransitionComplaint(t *testing.T) {
	if !CanTransitionComplaint(ComplaintStatusPending, ComplaintStatusReviewed) {
		t.Error("Pending -> Reviewed should be allowed")
	}
	if !CanTransitionComplaint(ComplaintStatusReviewed, ComplaintStatusResolved) {
		t.Error("Reviewed -> Resolved should be allowed")
	}
	if CanTransitionComplaint(ComplaintStatusResolved, ComplaintStatusPending) {
		t.Error("Resolved -> Pending should be rejected")
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityCritical.Rank() < PriorityHigh.Rank() &&
		PriorityHigh.Rank() < PriorityMedium.Rank() &&
		PriorityMedium.Rank() < PriorityLow.Rank()) {
		t.Error("priorities are not ranked Critical > High > Medium > Low")
	}
	if ReportPriority("Urgent").Valid() {
		t.Error("unknown priority reported as valid")
	}
	if ReportPriority("Urgent").Rank() <= PriorityLow.Rank() {
		t.Error("unknown priority should sort after Low")
	}
}

func TestNewStatusUpdate(t *testing.T) {
	su, err := NewStatusUpdate(ReportRef(7), "New", "Pending", 3, "submitted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if su.ReportID == nil || *su.ReportID != 7 || su.ComplaintID != nil {
		t.Errorf("expected report reference only, got report=%v complaint=%v", su.ReportID, su.ComplaintID)
	}
	if su.UpdatedByID == nil || *su.UpdatedByID != 3 {
		t.Errorf("expected actor 3, got %v", su.UpdatedByID)
	}

	system, err := NewStatusUpdate(ComplaintRef(2), "New", "Pending", 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if system.UpdatedByID != nil {
		t.Error("expected nil actor for system change")
	}

	if _, err := NewStatusUpdate(EntityRef{Kind: "road", ID: 1}, "a", "b", 1, ""); err != ErrInvalidEntityRef {
		t.Errorf("expected ErrInvalidEntityRef for unknown kind, got %v", err)
	}
	if _, err := NewStatusUpdate(ReportRef(0), "a", "b", 1, ""); err != ErrInvalidEntityRef {
		t.Errorf("expected ErrInvalidEntityRef for zero id, got %v", err)
	}
}

func TestStatusUpdateRef(t *testing.T) {
	one := uint(1)
	both := &StatusUpdate{ReportID: &one, ComplaintID: &one}
	if _, err := both.Ref(); err != ErrInvalidEntityRef {
		t.Errorf("expected error when both references are set, got %v", err)
	}
	neither := &StatusUpdate{}
	if err := neither.BeforeCreate(nil); err != ErrInvalidEntityRef {
		t.Errorf("expected BeforeCreate to reject empty reference, got %v", err)
	}
}

func TestRoleHelpers(t *testing.T) {
	if UserRole("superuser").Valid() {
		t.Error("unknown role reported as valid")
	}
	if RoleRepairTeam.LandingPath() != "/dashboard/repair-team/" {
		t.Errorf("unexpected landing path %s", RoleRepairTeam.LandingPath())
	}
	if RoleMunicipal.Label() != "Municipal Authority" {
		t.Errorf("unexpected label %s", RoleMunicipal.Label())
	}
}
