package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roadsmart/backend/internal/logger"
	"github.com/roadsmart/backend/internal/middleware"
	"github.com/roadsmart/backend/internal/models"
	"github.com/roadsmart/backend/internal/services"
)

type AuthController struct {
	users  *services.UserService
	tokens *middleware.TokenManager
}

func NewAuthController(users *services.UserService, tokens *middleware.TokenManager) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" form:"username" binding:"required"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" form:"first_name"`
	LastName  string `json:"lastName" form:"last_name"`
}

type AuthResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Redirect  string      `json:"redirect"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ac.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.Register(c.Request.Context(), services.AccountInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.WithUser(user.ID).Info("Citizen registered")
	ac.respondWithToken(c, http.StatusCreated, "Registration successful", user)
}

func (ac *AuthController) Logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := ac.tokens.Revoke(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := ac.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) respondWithToken(c *gin.Context, status int, message string, user *models.User) {
	token, expiresAt, err := ac.tokens.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(status, AuthResponse{
		Success:   true,
		Message:   message,
		Token:     token,
		User:      *user,
		ExpiresAt: expiresAt,
		Redirect:  user.Role.LandingPath(),
	})
}
