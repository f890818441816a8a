package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/access"
	"github.com/roadsmart/backend/internal/controllers"
	"github.com/roadsmart/backend/internal/events"
	"github.com/roadsmart/backend/internal/middleware"
	"github.com/roadsmart/backend/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the shared resources the routes are built from. Publisher and
// ReportCounter may be nil.
type Dependencies struct {
	DB               *gorm.DB
	Tokens           *middleware.TokenManager
	Publisher        events.Publisher
	ReportCounter    middleware.SubmissionCounter
	ReportDailyLimit int
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize services
	userService := services.NewUserService(deps.DB)
	reportService := services.NewReportService(deps.DB, deps.Publisher)
	taskService := services.NewTaskService(deps.DB, deps.Publisher)
	complaintService := services.NewComplaintService(deps.DB, deps.Publisher)

	// Initialize controllers
	authController := controllers.NewAuthController(userService, deps.Tokens)
	reportController := controllers.NewReportController(reportService, complaintService, userService)
	taskController := controllers.NewTaskController(taskService)
	complaintController := controllers.NewComplaintController(complaintService)
	userController := controllers.NewUserController(userService, reportService, complaintService)

	r.POST("/register/", authController.Register)
	r.POST("/login/", authController.Login)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		protected.POST("/logout/", authController.Logout)
		protected.GET("/me/", authController.Me)

		protected.POST("/report-issue/",
			middleware.RequirePermission(access.ReportCreate),
			middleware.ReportRateLimiter(deps.ReportCounter, deps.ReportDailyLimit),
			reportController.ReportIssue)
		protected.POST("/submit-complaint/",
			middleware.RequirePermission(access.ComplaintCreate),
			complaintController.SubmitComplaint)

		// Citizen
		citizen := protected.Group("/dashboard/citizen")
		{
			citizen.GET("/", middleware.RequirePermission(access.ReportListOwn), reportController.CitizenDashboard)
			citizen.GET("/reports/", middleware.RequirePermission(access.ReportListOwn), reportController.CitizenReports)
			citizen.GET("/report/:id/timeline/", middleware.RequirePermission(access.ReportTimeline), reportController.Timeline)
			citizen.GET("/complaint/:id/timeline/", middleware.RequirePermission(access.ComplaintTimeline), complaintController.Timeline)
		}

		// Municipal authority
		municipal := protected.Group("/dashboard/municipal")
		{
			municipal.GET("/", middleware.RequirePermission(access.ReportReviewQueue), reportController.MunicipalDashboard)
			municipal.GET("/reports/", middleware.RequirePermission(access.ReportReviewQueue), reportController.ReviewQueue)
			municipal.GET("/report/:id/", middleware.RequirePermission(access.ReportReviewQueue), reportController.ReportDetail)
			municipal.GET("/assign-task/:id/", middleware.RequirePermission(access.ReportAssign), reportController.AssignTaskForm)
			municipal.POST("/assign-task/:id/", middleware.RequirePermission(access.ReportAssign), reportController.AssignTask)
			municipal.POST("/update-status/:id/", middleware.RequirePermission(access.ReportUpdateStatus), reportController.UpdateStatus)
			municipal.POST("/update-priority/:id/", middleware.RequirePermission(access.ReportUpdatePriority), reportController.UpdatePriority)
			municipal.GET("/complaints/", middleware.RequirePermission(access.ComplaintList), complaintController.ListComplaints)
			municipal.POST("/complaint-status/:id/", middleware.RequirePermission(access.ComplaintUpdateStatus), complaintController.UpdateStatus)
			municipal.GET("/complaint/:id/timeline/", middleware.RequirePermission(access.ComplaintTimeline), complaintController.Timeline)
		}

		// Repair team
		repair := protected.Group("/dashboard/repair-team")
		{
			repair.GET("/", middleware.RequirePermission(access.TaskList), taskController.RepairDashboard)
			repair.GET("/tasks/", middleware.RequirePermission(access.TaskList), taskController.ListTasks)
			repair.GET("/task/:id/", middleware.RequirePermission(access.TaskList), taskController.TaskDetail)
			repair.POST("/start-task/:id/", middleware.RequirePermission(access.TaskStart), taskController.StartTask)
			repair.POST("/complete-task/:id/", middleware.RequirePermission(access.TaskComplete), taskController.CompleteTask)
		}

		// Admin
		admin := protected.Group("/dashboard/admin")
		{
			admin.GET("/", middleware.RequirePermission(access.AdminDashboard), userController.AdminDashboard)
			admin.GET("/users/", middleware.RequirePermission(access.AdminListUsers), userController.GetUsers)
			admin.POST("/users/", middleware.RequirePermission(access.AdminCreateUser), userController.AddUser)
			admin.GET("/reports/", middleware.RequirePermission(access.AdminReports), userController.AllReports)
		}
	}
}
