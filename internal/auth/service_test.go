package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dispatcher/cvrp-engine/internal/common/database"
	"github.com/dispatcher/cvrp-engine/internal/common/testutil"
)

func TestService_Login(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "login@test.com"
	user.Username = "loginuser"
	require.NoError(t, db.Create(user).Error)

	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{
			name: "valid login with email",
			request: LoginRequest{
				Email:    "login@test.com",
				Password: "password123",
			},
			wantErr: false,
		},
		{
			name: "invalid password",
			request: LoginRequest{
				Email:    "login@test.com",
				Password: "wrong-password",
			},
			wantErr: true,
		},
		{
			name: "non-existent user",
			request: LoginRequest{
				Email:    "nonexistent@test.com",
				Password: "password123",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loginUser, tokenResp, err := service.Login(tt.request)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, loginUser)
				assert.Nil(t, tokenResp)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, loginUser)
				assert.NotNil(t, tokenResp)
				assert.NotEmpty(t, tokenResp.AccessToken)
				assert.NotEmpty(t, tokenResp.RefreshToken)
				testutil.AssertValidUUID(t, loginUser.ID)
				testutil.AssertValidEmail(t, loginUser.Email)
				assert.Equal(t, tt.request.Email, loginUser.Email)
			}
		})
	}

	t.Run("inactive user cannot log in", func(t *testing.T) {
		db.Model(user).Update("is_active", false)
		defer db.Model(user).Update("is_active", true)

		loginUser, tokenResp, err := service.Login(LoginRequest{
			Email:    "login@test.com",
			Password: "password123",
		})
		assert.Error(t, err)
		assert.Nil(t, loginUser)
		assert.Nil(t, tokenResp)
	})
}

func TestService_TokenGeneration(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "token@test.com"
	user.Username = "tokenuser"
	require.NoError(t, db.Create(user).Error)

	t.Run("login generates valid tokens", func(t *testing.T) {
		_, tokenResp, err := service.Login(LoginRequest{
			Email:    "token@test.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.NotNil(t, tokenResp)
		assert.NotEmpty(t, tokenResp.AccessToken)
		assert.NotEmpty(t, tokenResp.RefreshToken)
		assert.Equal(t, "Bearer", tokenResp.TokenType)
		assert.Greater(t, tokenResp.ExpiresIn, 0)
	})

	t.Run("tokens are JWT format", func(t *testing.T) {
		_, tokenResp, err := service.Login(LoginRequest{
			Email:    "token@test.com",
			Password: "password123",
		})

		require.NoError(t, err)
		// JWT tokens have 3 parts separated by dots
		accessParts := len(strings.Split(tokenResp.AccessToken, "."))
		refreshParts := len(strings.Split(tokenResp.RefreshToken, "."))
		assert.Equal(t, 3, accessParts)
		assert.Equal(t, 3, refreshParts)
	})
}

func TestService_RefreshToken(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "refresh@test.com"
	user.Username = "refreshuser"
	require.NoError(t, db.Create(user).Error)

	_, tokenResp, err := service.Login(LoginRequest{
		Email:    "refresh@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("valid refresh token issues new tokens", func(t *testing.T) {
		newTokens, err := service.RefreshToken(tokenResp.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newTokens.AccessToken)
		assert.NotEmpty(t, newTokens.RefreshToken)
	})

	t.Run("unknown refresh token is rejected", func(t *testing.T) {
		_, err := service.RefreshToken("not-a-real-token")
		assert.Error(t, err)
	})
}

func TestService_ValidateToken(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "claims@test.com"
	user.Username = "claimsuser"
	require.NoError(t, db.Create(user).Error)

	_, tokenResp, err := service.Login(LoginRequest{
		Email:    "claims@test.com",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("valid access token validates", func(t *testing.T) {
		claims, err := service.ValidateToken(tokenResp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.CompanyID, claims.CompanyID)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-jwt")
		assert.Error(t, err)
	})
}
