package handlers

import (
	"OcuCare/middlewares"
	"OcuCare/models"
	"OcuCare/services"
	"OcuCare/utils"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	UserService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{
		UserService: userService,
	}
}

// Register provisions a profile in the user directory and signs the user in.
// Re-registering an existing id syncs the mutable fields without downgrading
// an elevated role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	profile := models.UserProfile{
		ID:       req.ID,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.RolePatient,
	}

	ctx := c.Request.Context()
	if err := h.UserService.ProvisionProfile(ctx, &profile); err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			c.JSON(401, gin.H{"error": "Invalid credentials for existing account"})
			return
		}
		c.JSON(400, gin.H{"error": fmt.Sprintf("Provisioning failed: %v", err)})
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(profile.ID, profile.Role)
	if err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to generate tokens: %v", err)})
		return
	}
	utils.SetAuthCookies(c, accessToken, refreshToken)

	c.JSON(201, gin.H{
		"user":         profile,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Login authenticates the user and returns tokens along with the profile.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserService.AuthenticateUser(ctx, credentials.Email, credentials.Password)
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("Failed to generate tokens: %v", err)})
		return
	}
	utils.SetAuthCookies(c, accessToken, refreshToken)

	c.JSON(200, gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// GetProfile returns the signed-in user's directory entry.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := middlewares.ExtractUserIDFromContext(c.Request.Context())
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.UserService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, user)
}

// Logoff logs the user out by clearing cookies.
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	c.Status(200)
}
