package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-registry/internal/repository/memory"
	"user-registry/internal/repository/sqlite"
	"user-registry/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	accountRepo := sqlite.NewAccountRepository(db)
	require.NoError(t, accountRepo.Init(context.Background()))

	handler := NewHandler(
		service.NewUserService(memory.NewUserRepository()),
		service.NewMathService(logger),
		service.NewAuthService(accountRepo, "letmein"),
		"test-secret",
		time.Hour,
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func authToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	rec := doJSON(router, http.MethodPost, "/auth/register",
		`{"username":"operator","password":"correct horse","registration_password":"letmein"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(router, http.MethodPost, "/auth/login",
		`{"username":"operator","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSumEndpoint(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"small positives", "a=5&b=7", http.StatusOK, "12"},
		{"negative operand", "a=-10&b=5", http.StatusOK, "-5"},
		{"zeros", "a=0&b=0", http.StatusOK, "0"},
		{"max int", "a=2147483647&b=0", http.StatusOK, "2147483647"},
		{"overflow wraps", "a=2147483647&b=1", http.StatusOK, "-2147483648"},
		{"underflow wraps", "a=-2147483648&b=-1", http.StatusOK, "2147483647"},
		{"missing parameter", "a=5", http.StatusBadRequest, ""},
		{"non-integer", "a=invalid&b=5", http.StatusBadRequest, ""},
		{"decimal", "a=5.5&b=10", http.StatusBadRequest, ""},
		{"empty value", "a=&b=5", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(router, http.MethodGet, "/math/sum?"+tt.query, "", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestSumBindingErrorShape(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/math/sum?a=oops&b=5", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a", body["parameter"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestUsersRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/1"},
		{http.MethodPost, "/users"},
	} {
		rec := doJSON(router, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec := doJSON(router, http.MethodGet, "/users", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewHandler(
		service.NewUserService(memory.NewUserRepository()),
		service.NewMathService(logger),
		nil,
		"test-secret",
		-time.Minute,
		logger,
	)
	router := gin.New()
	handler.RegisterRoutes(router)

	token, _, err := handler.issueToken(1)
	require.NoError(t, err)

	rec := doJSON(router, http.MethodGet, "/users", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUser(t *testing.T) {
	router := newTestRouter(t)
	token := authToken(t, router)

	rec := doJSON(router, http.MethodPost, "/users",
		`{"username":"johndoe","email":"john.doe@example.com","firstName":"John","lastName":"Doe"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "johndoe", user.Username)
	assert.Equal(t, "john.doe@example.com", user.Email)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "John", *user.FirstName)
	require.NotNil(t, user.LastName)
	assert.Equal(t, "Doe", *user.LastName)

	_, err := time.Parse(time.RFC3339, user.CreatedAt)
	assert.NoError(t, err)
}

func TestCreateUserOptionalNamesStayNull(t *testing.T) {
	router := newTestRouter(t)
	token := authToken(t, router)

	rec := doJSON(router, http.MethodPost, "/users",
		`{"username":"testuser","email":"test@example.com"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["firstName"]))
	assert.Equal(t, "null", string(raw["lastName"]))
}

func TestCreateUserRejectsBadRequests(t *testing.T) {
	router := newTestRouter(t)
	token := authToken(t, router)

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("username=johndoe"))
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/users", `{"username":`, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetUser(t *testing.T) {
	router := newTestRouter(t)
	token := authToken(t, router)

	rec := doJSON(router, http.MethodPost, "/users",
		`{"username":"johndoe","email":"john.doe@example.com"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(router, http.MethodGet, fmt.Sprintf("/users/%d", created.ID), "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var got UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)

	for _, id := range []string{"999", "0", "-1"} {
		rec := doJSON(router, http.MethodGet, "/users/"+id, "", token)
		assert.Equal(t, http.StatusNotFound, rec.Code, "id %s", id)
	}

	rec = doJSON(router, http.MethodGet, "/users/abc", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUsers(t *testing.T) {
	router := newTestRouter(t)
	token := authToken(t, router)

	rec := doJSON(router, http.MethodGet, "/users", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Empty(t, users)

	for _, name := range []string{"alice", "bob", "carol"} {
		rec := doJSON(router, http.MethodPost, "/users",
			fmt.Sprintf(`{"username":%q,"email":"%s@example.com"}`, name, name), token)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(router, http.MethodGet, "/users", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 3)
	for i, name := range []string{"alice", "bob", "carol"} {
		assert.Equal(t, int64(i+1), users[i].ID)
		assert.Equal(t, name, users[i].Username)
	}
}

func TestRegisterAndLoginFailures(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/register",
		`{"username":"alice","password":"correct horse","registration_password":"wrong"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/auth/register",
		`{"username":"alice","password":"correct horse","registration_password":"letmein"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(router, http.MethodPost, "/auth/register",
		`{"username":"alice","password":"other password","registration_password":"letmein"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodPost, "/auth/login",
		`{"username":"alice","password":"battery staple"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
