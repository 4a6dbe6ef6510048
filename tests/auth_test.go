package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jdirocco/forno/internal/config"
	"github.com/jdirocco/forno/internal/dto"
	"github.com/jdirocco/forno/internal/handler"
	"github.com/jdirocco/forno/internal/middleware"
	"github.com/jdirocco/forno/internal/model"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, username, password string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	require.NoError(t, err)
	u := &model.User{
		ID: uuid.New(), Username: username, FullName: "Test User",
		PasswordHash: string(hash), Role: role, Active: true,
	}
	repo.users[u.ID] = u
	return u
}

func signToken(t *testing.T, userID string, role model.UserRole, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "role": string(role),
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doLoginRequest(t *testing.T, userRepo *stubUserRepo, req dto.LoginRequest) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(userRepo, newTestCfg())
	userSvc := service.NewUserService(userRepo, newStubShopRepo(), nil)
	authH := handler.NewAuthHandler(authSvc, userSvc)

	r := gin.New()
	r.POST("/api/auth/login", authH.Login)

	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "anna", "segreta1", model.RoleAccountant)

	w := doLoginRequest(t, repo, dto.LoginRequest{Username: "anna", Password: "segreta1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "anna", resp.Username)
	assert.Equal(t, "ACCOUNTANT", resp.Role)

	// Token must carry the role claim and verify against the same secret.
	parsed, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "ACCOUNTANT", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "anna", "segreta1", model.RoleAdmin)

	w := doLoginRequest(t, repo, dto.LoginRequest{Username: "anna", Password: "sbagliata"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "anna", "segreta1", model.RoleAdmin)
	u.Active = false

	w := doLoginRequest(t, repo, dto.LoginRequest{Username: "anna", Password: "segreta1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginShopUserCarriesShopID(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "negozio1", "segreta1", model.RoleShop)
	shopID := uuid.New()
	u.ShopID = &shopID

	w := doLoginRequest(t, repo, dto.LoginRequest{Username: "negozio1", Password: "segreta1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.ShopID)
	assert.Equal(t, shopID.String(), *resp.ShopID)
}

// ── Middleware ────────────────────────────────────────────────────────────────

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{middleware.JWTAuth(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ping", handlers...)
	return r
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	r := protectedRouter()
	tok := signToken(t, uuid.NewString(), model.RoleAdmin, -time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(middleware.RequireRole("ADMIN", "ACCOUNTANT"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.NewString(), model.RoleDriver, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.NewString(), model.RoleAccountant, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
