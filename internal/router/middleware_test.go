package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupMiddlewareTest(t *testing.T) (repository.DistributorRepository, *service.DistributorAuthService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_middleware_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "middleware-test-secret"
	cfg.UserJWT.ExpireHours = 1
	distributorRepo := repository.NewDistributorRepository(db)
	authSvc := service.NewDistributorAuthService(cfg, distributorRepo, nil)
	return distributorRepo, authSvc, db
}

func createMiddlewareDistributor(t *testing.T, db *gorm.DB, id uint, status string) *models.Distributor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	distributor := &models.Distributor{
		Email:        fmt.Sprintf("member%d@example.com", id),
		PasswordHash: string(hash),
		Status:       status,
	}
	distributor.ID = id
	if err := db.Create(distributor).Error; err != nil {
		t.Fatalf("create distributor failed: %v", err)
	}
	return distributor
}

func runProtectedRequest(t *testing.T, mw gin.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.GET("/guarded", mw, func(c *gin.Context) {
		id, _ := c.Get("distributor_id")
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDistributorJWTMiddlewareAcceptsValidToken(t *testing.T) {
	repo, authSvc, db := setupMiddlewareTest(t)
	distributor := createMiddlewareDistributor(t, db, 7, constants.DistributorStatusActive)
	token, _, err := authSvc.GenerateDistributorJWT(distributor, 0)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	mw := DistributorJWTAuthMiddleware("middleware-test-secret", repo)
	w := runProtectedRequest(t, mw, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestDistributorJWTMiddlewareRejectsBadHeader(t *testing.T) {
	repo, _, _ := setupMiddlewareTest(t)
	mw := DistributorJWTAuthMiddleware("middleware-test-secret", repo)

	for _, header := range []string{"", "Bearer", "Token abc", "Bearer "} {
		w := runProtectedRequest(t, mw, header)
		var body struct {
			StatusCode int `json:"status_code"`
		}
		decodeJSONBody(t, w, &body)
		if body.StatusCode != 401 {
			t.Fatalf("header %q: status_code = %d, want 401", header, body.StatusCode)
		}
	}
}

func TestDistributorJWTMiddlewareRejectsDisabledAccount(t *testing.T) {
	repo, authSvc, db := setupMiddlewareTest(t)
	distributor := createMiddlewareDistributor(t, db, 8, constants.DistributorStatusDisabled)
	token, _, err := authSvc.GenerateDistributorJWT(distributor, 0)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	mw := DistributorJWTAuthMiddleware("middleware-test-secret", repo)
	w := runProtectedRequest(t, mw, "Bearer "+token)
	var body struct {
		StatusCode int `json:"status_code"`
	}
	decodeJSONBody(t, w, &body)
	if body.StatusCode != 401 {
		t.Fatalf("status_code = %d, want 401", body.StatusCode)
	}
}

func TestDistributorJWTMiddlewareRejectsStaleTokenVersion(t *testing.T) {
	repo, authSvc, db := setupMiddlewareTest(t)
	distributor := createMiddlewareDistributor(t, db, 9, constants.DistributorStatusActive)
	token, _, err := authSvc.GenerateDistributorJWT(distributor, 0)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if err := db.Model(&models.Distributor{}).Where("id = ?", distributor.ID).
		Update("token_version", distributor.TokenVersion+1).Error; err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}

	mw := DistributorJWTAuthMiddleware("middleware-test-secret", repo)
	w := runProtectedRequest(t, mw, "Bearer "+token)
	var body struct {
		StatusCode int `json:"status_code"`
	}
	decodeJSONBody(t, w, &body)
	if body.StatusCode != 401 {
		t.Fatalf("status_code = %d, want 401", body.StatusCode)
	}
}

func TestRequestIDMiddlewareEchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("response header = %q, want req-42", got)
	}
	if w.Body.String() != "req-42" {
		t.Fatalf("context request id = %q, want req-42", w.Body.String())
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins: []string{"https://portal.example.com"},
	}))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}

	// origin not on the list gets no CORS grant
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin = %q, want empty", got)
	}
}
