package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/models"
	"github.com/roadsmart/backend/internal/services"
)

// UserController serves the admin dashboard and staff account management.
type UserController struct {
	users      *services.UserService
	reports    *services.ReportService
	complaints *services.ComplaintService
}

func NewUserController(users *services.UserService, reports *services.ReportService, complaints *services.ComplaintService) *UserController {
	return &UserController{users: users, reports: reports, complaints: complaints}
}

type AddUserRequest struct {
	Username  string `json:"username" form:"username" binding:"required"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" form:"first_name"`
	LastName  string `json:"lastName" form:"last_name"`
	Role      string `json:"role" form:"role" binding:"required"`
}

func (uc *UserController) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := uc.users.Count(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := uc.reports.CountByStatus(ctx, "")
	if err != nil {
		respondError(c, err)
		return
	}

	byStatus := make(map[models.ReportStatus]int64, len(models.ReportStatuses))
	for _, status := range models.ReportStatuses {
		count, err := uc.reports.CountByStatus(ctx, status)
		if err != nil {
			respondError(c, err)
			return
		}
		byStatus[status] = count
	}

	pendingComplaints, err := uc.complaints.CountByStatus(ctx, models.ComplaintStatusPending)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":             users,
		"reports":           total,
		"reportsByStatus":   byStatus,
		"pendingComplaints": pendingComplaints,
	})
}

func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.users.List(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (uc *UserController) AddUser(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	var req AddUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := uc.users.CreateUser(c.Request.Context(), adminID, services.AccountInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.UserRole(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"user":    user,
	})
}

func (uc *UserController) AllReports(c *gin.Context) {
	reports, err := uc.reports.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
