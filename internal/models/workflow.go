package models

// reportTransitions is the full forward-only report graph. Assigned is only reachable
// through task assignment and Completed only through task completion.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending:    {ReportStatusReviewed, ReportStatusAssigned},
	ReportStatusReviewed:   {ReportStatusAssigned},
	ReportStatusAssigned:   {ReportStatusInProgress, ReportStatusCompleted},
	ReportStatusInProgress: {ReportStatusCompleted},
}

// manualReportTransitions are the changes a municipal actor may make directly.
var manualReportTransitions = map[ReportStatus]ReportStatus{
	ReportStatusPending:  ReportStatusReviewed,
	ReportStatusAssigned: ReportStatusInProgress,
}

var complaintTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusPending:  {ComplaintStatusReviewed, ComplaintStatusResolved},
	ComplaintStatusReviewed: {ComplaintStatusResolved},
}

func CanTransitionReport(from, to ReportStatus) bool {
	for _, next := range reportTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanManuallySetReport reports whether update-status may move a report from -> to.
func CanManuallySetReport(from, to ReportStatus) bool {
	next, ok := manualReportTransitions[from]
	return ok && next == to
}

// Assignable reports whether a task may be created for a report in status s.
func (s ReportStatus) Assignable() bool {
	return s == ReportStatusPending || s == ReportStatusReviewed
}

func CanTransitionComplaint(from, to ComplaintStatus) bool {
	for _, next := range complaintTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
