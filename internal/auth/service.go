package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/dispatcher/cvrp-engine/pkg/errors"
	"github.com/dispatcher/cvrp-engine/pkg/models"
)

// Service is the bearer-token guard for the dispatch API: it authenticates
// against the user/session tables the company data model already carries,
// and issues/refreshes the JWTs internal/common/middleware.AuthRequired checks
// on every protected route. User and company administration (registration,
// role management, password recovery) live outside this deployment's scope;
// accounts are provisioned by the seed data or a separate admin tool.
type Service struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret []byte
}

// Claims represents JWT claims
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest represents user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents user response data
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	CompanyID   string     `json:"company_id"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewService creates a new authentication service
func NewService(db *gorm.DB, redis *redis.Client, jwtSecret string) *Service {
	return &Service{
		db:        db,
		redis:     redis,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login authenticates a user and returns JWT tokens
func (s *Service) Login(req LoginRequest) (*UserResponse, *TokenResponse, error) {
	// Find user by email
	var user models.User
	if err := s.db.Where("email = ? AND is_active = true", req.Email).First(&user).Error; err != nil {
		// Don't reveal whether email exists or not
		return nil, nil, errors.NewUnauthorizedError("Invalid email or password")
	}

	// Check if account is locked
	if user.IsAccountLocked() {
		return nil, nil, errors.NewForbiddenError("Account is locked due to too many failed login attempts")
	}

	// Verify password
	if !user.CheckPassword(req.Password) {
		// Increment failed attempts
		user.IncrementFailedAttempts()
		s.db.Save(&user)
		return nil, nil, errors.NewUnauthorizedError("Invalid email or password")
	}

	// Reset failed attempts on successful login
	user.ResetFailedAttempts()
	user.UpdateLastLogin()
	s.db.Save(&user)

	// Generate JWT tokens
	tokenResponse, err := s.generateTokens(&user)
	if err != nil {
		return nil, nil, errors.NewInternalError("Failed to generate tokens").WithInternal(err)
	}

	// Create session
	if err := s.createSession(&user, tokenResponse.AccessToken, tokenResponse.RefreshToken); err != nil {
		return nil, nil, errors.NewInternalError("Failed to create session").WithInternal(err)
	}

	return s.userToResponse(&user), tokenResponse, nil
}

// RefreshToken generates new access token using refresh token
func (s *Service) RefreshToken(refreshToken string) (*TokenResponse, error) {
	// Find session by refresh token
	var session models.Session
	if err := s.db.Where("refresh_token = ? AND is_active = true AND expires_at > ?", refreshToken, time.Now()).First(&session).Error; err != nil {
		return nil, errors.NewUnauthorizedError("Invalid or expired refresh token")
	}

	// Get user
	var user models.User
	if err := s.db.Where("id = ?", session.UserID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("User")
		}
		return nil, errors.NewInternalError("Failed to fetch user").WithInternal(err)
	}

	// Check if user is still active
	if !user.IsActive {
		return nil, errors.NewForbiddenError("User account is inactive")
	}

	// Generate new tokens
	tokenResponse, err := s.generateTokens(&user)
	if err != nil {
		return nil, errors.NewInternalError("Failed to generate tokens").WithInternal(err)
	}

	// Update session with new tokens
	session.Token = tokenResponse.AccessToken
	session.RefreshToken = tokenResponse.RefreshToken
	session.ExpiresAt = time.Now().Add(7 * 24 * time.Hour) // 7 days
	s.db.Save(&session)

	return tokenResponse, nil
}

// ValidateToken validates JWT token and returns claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, errors.NewUnauthorizedError("Invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.NewUnauthorizedError("Invalid token claims")
	}

	// Check if token is expired
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.NewUnauthorizedError("Token expired")
	}

	// Verify user still exists and is active
	var user models.User
	if err := s.db.Where("id = ? AND is_active = true", claims.UserID).First(&user).Error; err != nil {
		return nil, errors.NewUnauthorizedError("User not found or inactive")
	}

	return claims, nil
}

// GetProfile returns user profile information
func (s *Service) GetProfile(userID string) (*UserResponse, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("User")
		}
		return nil, errors.NewInternalError("Failed to fetch user").WithInternal(err)
	}

	return s.userToResponse(&user), nil
}

// generateTokens creates JWT access and refresh tokens
func (s *Service) generateTokens(user *models.User) (*TokenResponse, error) {
	// Access token (15 minutes)
	accessClaims := &Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		Username:  user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	// Refresh token (7 days)
	refreshToken, err := s.generateSecureToken()
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessTokenString,
		RefreshToken: refreshToken,
		ExpiresIn:    900, // 15 minutes in seconds
		TokenType:    "Bearer",
	}, nil
}

// createSession creates a new user session
func (s *Service) createSession(user *models.User, accessToken, refreshToken string) error {
	session := models.Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(7 * 24 * time.Hour), // 7 days
		IsActive:     true,
	}

	return s.db.Create(&session).Error
}

// generateSecureToken generates a cryptographically secure random token
func (s *Service) generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// userToResponse converts User model to UserResponse
func (s *Service) userToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		CompanyID:   user.CompanyID,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
