package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/middleware"
	"github.com/roadsmart/backend/internal/models"
	"github.com/roadsmart/backend/internal/services"
)

const citizenDashboardLimit = 5

type ReportController struct {
	reports    *services.ReportService
	complaints *services.ComplaintService
	users      *services.UserService
}

func NewReportController(reports *services.ReportService, complaints *services.ComplaintService, users *services.UserService) *ReportController {
	return &ReportController{reports: reports, complaints: complaints, users: users}
}

type ReportIssueRequest struct {
	Title       string   `json:"title" form:"title" binding:"required"`
	Description string   `json:"description" form:"description" binding:"required"`
	Location    string   `json:"location" form:"location" binding:"required"`
	Image       string   `json:"image" form:"image"`
	Tags        []string `json:"tags" form:"tags"`
}

type AssignTaskRequest struct {
	RepairTeamID uint `json:"repairTeamId" form:"repair_team" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
	Notes  string `json:"notes" form:"notes"`
}

type UpdatePriorityRequest struct {
	Priority string `json:"priority" form:"priority" binding:"required"`
}

// splitTags accepts repeated tag values as well as one comma separated value.
func splitTags(raw []string) []string {
	var tags []string
	for _, value := range raw {
		tags = append(tags, strings.Split(value, ",")...)
	}
	return tags
}

func (rc *ReportController) ReportIssue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ReportIssueRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := rc.reports.Create(c.Request.Context(), userID, services.ReportInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Image:       req.Image,
		Tags:        splitTags(req.Tags),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Report submitted successfully",
		"report":  report,
	})
}

func (rc *ReportController) CitizenDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reports, err := rc.reports.ListForCitizen(c.Request.Context(), userID, citizenDashboardLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	complaints, err := rc.complaints.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":    reports,
		"complaints": complaints,
	})
}

func (rc *ReportController) CitizenReports(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	reports, err := rc.reports.ListForCitizen(c.Request.Context(), userID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Timeline is open to staff and to the citizen who filed the report.
func (rc *ReportController) Timeline(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reportID, ok := parseID(c)
	if !ok {
		return
	}

	report, err := rc.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	if middleware.CurrentRole(c) == models.RoleCitizen && report.CitizenID != userID {
		respondError(c, fmt.Errorf("%w: report %d belongs to another citizen", access.ErrUnauthorized, reportID))
		return
	}

	updates, err := rc.reports.Timeline(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"timeline": updates,
	})
}

func (rc *ReportController) MunicipalDashboard(c *gin.Context) {
	pending, err := rc.reports.CountByStatus(c.Request.Context(), models.ReportStatusPending)
	if err != nil {
		respondError(c, err)
		return
	}
	pendingComplaints, err := rc.complaints.CountByStatus(c.Request.Context(), models.ComplaintStatusPending)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pendingReports":    pending,
		"pendingComplaints": pendingComplaints,
	})
}

func (rc *ReportController) ReviewQueue(c *gin.Context) {
	priority := models.ReportPriority(c.Query("priority"))

	reports, err := rc.reports.ReviewQueue(c.Request.Context(), priority)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":  reports,
		"priority": priority,
	})
}

func (rc *ReportController) ReportDetail(c *gin.Context) {
	reportID, ok := parseID(c)
	if !ok {
		return
	}

	report, err := rc.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	updates, err := rc.reports.Timeline(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"task":     report.Task,
		"timeline": updates,
	})
}

// AssignTaskForm returns the report together with the repair teams it can go to.
func (rc *ReportController) AssignTaskForm(c *gin.Context) {
	reportID, ok := parseID(c)
	if !ok {
		return
	}

	report, err := rc.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	teams, err := rc.users.List(c.Request.Context(), models.RoleRepairTeam)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":      report,
		"repairTeams": teams,
	})
}

func (rc *ReportController) AssignTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reportID, ok := parseID(c)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := rc.reports.Assign(c.Request.Context(), reportID, userID, req.RepairTeamID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task assigned successfully",
		"task":    task,
	})
}

func (rc *ReportController) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reportID, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := rc.reports.UpdateStatus(c.Request.Context(), reportID, userID, models.ReportStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report status updated",
		"report":  report,
	})
}

func (rc *ReportController) UpdatePriority(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reportID, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdatePriorityRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := rc.reports.UpdatePriority(c.Request.Context(), reportID, userID, models.ReportPriority(req.Priority))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report priority updated",
		"report":  report,
	})
}
