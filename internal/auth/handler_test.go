package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dispatcher/cvrp-engine/internal/common/database"
	"github.com/dispatcher/cvrp-engine/internal/common/testutil"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.Default()
}

func TestHandler_Login(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")
	handler := NewHandler(service)

	router := setupTestRouter()
	router.POST("/auth/login", handler.Login)

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "login@test.com"
	user.Username = "loginuser"
	require.NoError(t, db.Create(user).Error)

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		checkBody  func(*testing.T, map[string]interface{})
	}{
		{
			name: "successful login",
			payload: map[string]interface{}{
				"email":    "login@test.com",
				"password": "password123",
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				tokens, ok := body["tokens"].(map[string]interface{})
				require.True(t, ok)
				assert.NotEmpty(t, tokens["access_token"])
				assert.NotEmpty(t, tokens["refresh_token"])
				assert.Equal(t, "Bearer", tokens["token_type"])
			},
		},
		{
			name: "invalid password",
			payload: map[string]interface{}{
				"email":    "login@test.com",
				"password": "wrong-password",
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "non-existent user",
			payload: map[string]interface{}{
				"email":    "nonexistent@test.com",
				"password": "password123",
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing credentials",
			payload: map[string]interface{}{
				"email": "login@test.com",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonData, _ := json.Marshal(tt.payload)
			req, _ := http.NewRequest("POST", "/auth/login", bytes.NewBuffer(jsonData))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.checkBody != nil && w.Code == http.StatusOK {
				var response map[string]interface{}
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)
				tt.checkBody(t, response)
			}
		})
	}
}

func TestHandler_RefreshToken(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")
	handler := NewHandler(service)

	router := setupTestRouter()
	router.POST("/auth/refresh", handler.RefreshToken)

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "refresh@test.com"
	user.Username = "refreshuser"
	require.NoError(t, db.Create(user).Error)

	_, tokenResp, err := service.Login(LoginRequest{Email: "refresh@test.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		payload := map[string]interface{}{"refresh_token": tokenResp.RefreshToken}
		jsonData, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", "/auth/refresh", bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		payload := map[string]interface{}{"refresh_token": "not-a-real-token"}
		jsonData, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", "/auth/refresh", bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_GetProfile(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	redisClient, _ := database.ConnectRedis("redis://localhost:6379")
	service := NewService(db, redisClient, "test-jwt-secret")
	handler := NewHandler(service)

	router := setupTestRouter()
	// The real guard (internal/common/middleware.AuthRequired) sets user_id
	// from the parsed JWT before this handler runs; fake that here.
	router.GET("/auth/profile", func(c *gin.Context) {
		c.Set("user_id", c.Query("as"))
		handler.GetProfile(c)
	})

	company := testutil.NewTestCompany()
	require.NoError(t, db.Create(company).Error)

	user := testutil.NewTestUser(company.ID)
	user.Email = "profile@test.com"
	user.Username = "profileuser"
	require.NoError(t, db.Create(user).Error)

	t.Run("get profile for known user", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/auth/profile?as="+user.ID, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		profile, ok := response["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, user.Email, profile["email"])
		assert.Equal(t, user.Username, profile["username"])
	})

	t.Run("get profile for unknown user", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/auth/profile?as=00000000-0000-0000-0000-000000000000", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
