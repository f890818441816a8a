// Package access holds the permission table that decides which role may invoke each
// protected operation.
package access

import (
	"errors"
	"fmt"

	"github.com/roadsmart/backend/internal/models"
)

// ErrUnauthorized is returned when the actor's role may not perform an operation.
var ErrUnauthorized = errors.New("unauthorized")

type Operation string

const (
	ReportCreate         Operation = "report.create"
	ReportAssign         Operation = "report.assign"
	ReportUpdateStatus   Operation = "report.update_status"
	ReportUpdatePriority Operation = "report.update_priority"
	ReportReviewQueue    Operation = "report.review_queue"
	ReportTimeline       Operation = "report.timeline"
	ReportListOwn        Operation = "report.list_own"

	TaskStart    Operation = "task.start"
	TaskComplete Operation = "task.complete"
	TaskList     Operation = "task.list"

	ComplaintCreate       Operation = "complaint.create"
	ComplaintList         Operation = "complaint.list"
	ComplaintUpdateStatus Operation = "complaint.update_status"
	ComplaintTimeline     Operation = "complaint.timeline"

	AdminDashboard  Operation = "admin.dashboard"
	AdminListUsers  Operation = "admin.list_users"
	AdminCreateUser Operation = "admin.create_user"
	AdminReports    Operation = "admin.reports"
)

// anyRole marks operations open to every authenticated user.
var anyRole = []models.UserRole{models.RoleAdmin, models.RoleMunicipal, models.RoleRepairTeam, models.RoleCitizen}

var permissions = map[Operation][]models.UserRole{
	ReportCreate:         {models.RoleCitizen},
	ReportAssign:         {models.RoleMunicipal},
	ReportUpdateStatus:   {models.RoleMunicipal},
	ReportUpdatePriority: {models.RoleMunicipal},
	ReportReviewQueue:    {models.RoleMunicipal},
	ReportTimeline:       anyRole,
	ReportListOwn:        {models.RoleCitizen},

	TaskStart:    {models.RoleRepairTeam},
	TaskComplete: {models.RoleRepairTeam},
	TaskList:     {models.RoleRepairTeam},

	ComplaintCreate:       {models.RoleCitizen},
	ComplaintList:         {models.RoleMunicipal},
	ComplaintUpdateStatus: {models.RoleMunicipal},
	ComplaintTimeline:     {models.RoleCitizen, models.RoleMunicipal, models.RoleAdmin},

	AdminDashboard:  {models.RoleAdmin},
	AdminListUsers:  {models.RoleAdmin},
	AdminCreateUser: {models.RoleAdmin},
	AdminReports:    {models.RoleAdmin},
}

// Authorize returns nil when role may invoke op and an error wrapping ErrUnauthorized
// otherwise.
func Authorize(role models.UserRole, op Operation) error {
	for _, allowed := range permissions[op] {
		if allowed == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q may not perform %s", ErrUnauthorized, role, op)
}
