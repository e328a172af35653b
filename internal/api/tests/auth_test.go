package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localmeet/localmeet-server/internal/api/testutils"
	"github.com/localmeet/localmeet-server/internal/models"
)

func TestSignup(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful signup
	signupReq := models.SignUpRequest{
		Username: "NewUser1",
		Password: "Password1!",
		Name:     "New User",
		Email:    "newuser@example.com",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signupReq,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	// Test case 2: Duplicate username differing only in case
	dupReq := signupReq
	dupReq.Username = "newuser1"
	dupReq.Password = "Other2@#x"

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		dupReq,
		nil,
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Username with forbidden characters
	badName := signupReq
	badName.Username = "has spaces"

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		badName,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Weak password
	weak := signupReq
	weak.Username = "AnotherUser"
	weak.Password = "alllowercase1"

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		weak,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// Test case 1: Successful login
	loginReq := models.LoginRequest{
		Username: "testuser",
		Password: "Testpass1!",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		loginReq,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 2: Invalid credentials
	invalidLoginReq := models.LoginRequest{
		Username: "testuser",
		Password: "wrongpassword",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		invalidLoginReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: User not found
	nonExistentUserReq := models.LoginRequest{
		Username: "nonexistent",
		Password: "Testpass1!",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		nonExistentUserReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsernameExists(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/username-exists?username=TESTUSER",
		nil,
		nil,
	)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/username-exists?username=nobody",
		nil,
		nil,
	)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())

	// Missing username parameter
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/username-exists",
		nil,
		nil,
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
