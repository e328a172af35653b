package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/localmeet/localmeet-server/internal/api"
	"github.com/localmeet/localmeet-server/internal/logging"
	"github.com/localmeet/localmeet-server/internal/models"
	"github.com/localmeet/localmeet-server/internal/repository"
	"github.com/localmeet/localmeet-server/internal/service"
)

const testJWTSecret = "test-secret-key"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	JWTSecret   []byte
	DataDir     string
	TestUserID  int64
	TestUserJWT string
}

// SetupTestContext builds a router over a fresh temporary data directory
// and seeds one organizer account ("testuser" / "Testpass1!").
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	dataDir := t.TempDir()
	logger := logging.NewDefault("error")
	repo := repository.NewFileRepository(dataDir, logger)
	svc := service.NewDefaultService(repo, testJWTSecret)
	handler := api.NewHandler(svc, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(testJWTSecret))
		c.Next()
	})
	handler.SetupRoutes(router)

	userID, token := createTestUser(t, repo)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		JWTSecret:   []byte(testJWTSecret),
		DataDir:     dataDir,
		TestUserID:  userID,
		TestUserJWT: token,
	}
}

// createTestUser registers an organizer through the repository and mints
// a token for it the same way the service does.
func createTestUser(t *testing.T, repo repository.Repository) (int64, string) {
	t.Helper()
	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "testuser", "Testpass1!")
	require.NoError(t, err, "Failed to create test user")

	profile := &models.User{
		UserID:     userID,
		Username:   "testuser",
		Name:       "Test User",
		Email:      "testuser@example.com",
		DateJoined: time.Now().UTC(),
		UserType:   models.UserTypeOrganizer,

		SearchGroupTags:          []string{},
		SearchCategoryTags:       []string{},
		DaysTimesOfInterest:      []string{},
		EventsReviewed:           []string{},
		EventsRegisteredInterest: []string{},
		EventsSignedUpFor:        []string{},
		EventsAttended:           []string{},
		EventFilesCreated:        []string{},
		EventFilesEdited:         []string{},
	}
	require.NoError(t, repo.SaveProfile(ctx, profile), "Failed to save test profile")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenString, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err, "Failed to generate JWT token")

	return userID, tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
