package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/services"
)

type TaskController struct {
	tasks *services.TaskService
}

func NewTaskController(tasks *services.TaskService) *TaskController {
	return &TaskController{tasks: tasks}
}

func (tc *TaskController) RepairDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	active, err := tc.tasks.CountActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeTasks": active})
}

func (tc *TaskController) ListTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := tc.tasks.ListForAssignee(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (tc *TaskController) TaskDetail(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c)
	if !ok {
		return
	}

	task, err := tc.tasks.GetForAssignee(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (tc *TaskController) StartTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c)
	if !ok {
		return
	}

	task, err := tc.tasks.Start(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task started",
		"task":    task,
	})
}

func (tc *TaskController) CompleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c)
	if !ok {
		return
	}

	task, err := tc.tasks.Complete(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task marked as completed",
		"task":    task,
	})
}
