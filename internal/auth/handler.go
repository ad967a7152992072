package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/dispatcher/cvrp-engine/internal/common/middleware"
	"github.com/dispatcher/cvrp-engine/internal/common/validators"
)

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty" example:"Operation successful"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   string      `json:"error" example:"Bad request"`
	Message string      `json:"message,omitempty" example:"Invalid input"`
	Data    interface{} `json:"data,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// Handler handles authentication HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new authentication handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Login handles user login
// @Summary User login
// @Description Authenticate user with email and password, returns JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} SuccessResponse{data=UserResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}

	// Validate email format
	if err := validators.ValidateEmail(req.Email); err != nil {
		middleware.AbortWithBadRequest(c, "Invalid email: "+err.Error())
		return
	}

	// Sanitize email (trim, lowercase)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, tokens, err := h.service.Login(req)
	if err != nil {
		middleware.AbortWithUnauthorized(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"tokens":  tokens,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh JWT token
// @Description Refresh access token using refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token data"
// @Success 200 {object} SuccessResponse{data=TokenResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}

	tokens, err := h.service.RefreshToken(req.RefreshToken)
	if err != nil {
		middleware.AbortWithUnauthorized(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"tokens":  tokens,
	})
}

// GetProfile handles getting user profile
// @Summary Get user profile
// @Description Get current user profile information
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse{data=UserResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/auth/profile [get]
// @Security BearerAuth
func (h *Handler) GetProfile(c *gin.Context) {
	// Get user ID from JWT claims (set by middleware)
	userID, exists := c.Get("user_id")
	if !exists {
		middleware.AbortWithUnauthorized(c, "User ID not found in context")
		return
	}

	user, err := h.service.GetProfile(userID.(string))
	if err != nil {
		middleware.AbortWithNotFound(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
