package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/middleware"
	"github.com/roadsmart/backend/internal/models"
	"github.com/roadsmart/backend/internal/services"
)

type ComplaintController struct {
	complaints *services.ComplaintService
}

func NewComplaintController(complaints *services.ComplaintService) *ComplaintController {
	return &ComplaintController{complaints: complaints}
}

type SubmitComplaintRequest struct {
	Issue       string `json:"issue" form:"issue" binding:"required"`
	Description string `json:"description" form:"description"`
}

type ComplaintStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
	Notes  string `json:"notes" form:"notes"`
}

func (cc *ComplaintController) SubmitComplaint(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubmitComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := cc.complaints.Create(c.Request.Context(), userID, req.Issue, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Complaint submitted successfully",
		"complaint": complaint,
	})
}

func (cc *ComplaintController) ListComplaints(c *gin.Context) {
	complaints, err := cc.complaints.List(c.Request.Context(), models.ComplaintStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

func (cc *ComplaintController) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	complaintID, ok := parseID(c)
	if !ok {
		return
	}

	var req ComplaintStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := cc.complaints.UpdateStatus(c.Request.Context(), complaintID, userID, models.ComplaintStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Complaint status updated",
		"complaint": complaint,
	})
}

// Timeline is open to staff and to the citizen who filed the complaint.
func (cc *ComplaintController) Timeline(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	complaintID, ok := parseID(c)
	if !ok {
		return
	}

	complaint, err := cc.complaints.Get(c.Request.Context(), complaintID)
	if err != nil {
		respondError(c, err)
		return
	}
	if middleware.CurrentRole(c) == models.RoleCitizen && complaint.UserID != userID {
		respondError(c, fmt.Errorf("%w: complaint %d belongs to another citizen", access.ErrUnauthorized, complaintID))
		return
	}

	updates, err := cc.complaints.Timeline(c.Request.Context(), complaintID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint": complaint,
		"timeline":  updates,
	})
}
