package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/utils"
	"barterhub/pkg/cache"
	"barterhub/pkg/logger"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	router := gin.New()
	router.Use(AuthRequired(testSecret))
	router.GET("/me", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.Hex(), "role": c.GetString(utils.ContextUserRole)})
	})
	router.DELETE("/admin", AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func request(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	router := newAuthRouter()
	userID := primitive.NewObjectID()

	token, err := GenerateToken(testSecret, userID, models.UserRoleUser, time.Hour)
	require.NoError(t, err)

	rec := request(router, http.MethodGet, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.Hex())

	assert.Equal(t, http.StatusUnauthorized, request(router, http.MethodGet, "/me", "").Code)

	forged, err := GenerateToken("other-secret", userID, models.UserRoleUser, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(router, http.MethodGet, "/me", forged).Code)

	expired, err := GenerateToken(testSecret, userID, models.UserRoleUser, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(router, http.MethodGet, "/me", expired).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequired(t *testing.T) {
	router := newAuthRouter()

	userToken, err := GenerateToken(testSecret, primitive.NewObjectID(), models.UserRoleUser, time.Hour)
	require.NoError(t, err)
	adminToken, err := GenerateToken(testSecret, primitive.NewObjectID(), models.UserRoleAdmin, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, request(router, http.MethodDelete, "/admin", userToken).Code)
	assert.Equal(t, http.StatusNoContent, request(router, http.MethodDelete, "/admin", adminToken).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(utils.ContextRequestID))
	})

	rec := request(router, http.MethodGet, "/", "")
	generated := rec.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.example.com"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	counter := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	router := gin.New()
	router.Use(RateLimitMiddleware(counter, 2, logger.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "/", "").Code)
	rec := request(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, request(router, http.MethodGet, "/", "").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "/", "").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	counter := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Close()

	router := gin.New()
	router.Use(RateLimitMiddleware(counter, 1, logger.NewNop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, request(router, http.MethodGet, "/", "").Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(logger.NewNop()))
	router.GET("/", func(c *gin.Context) { panic("kaboom") })

	rec := request(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "kaboom")
}

func TestOptionalAuth(t *testing.T) {
	router := gin.New()
	router.Use(OptionalAuth(testSecret))
	router.GET("/", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "user_id": userID.Hex()})
	})

	userID := primitive.NewObjectID()
	token, err := GenerateToken(testSecret, userID, models.UserRoleUser, time.Hour)
	require.NoError(t, err)

	rec := request(router, http.MethodGet, "/", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.Hex())

	rec = request(router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	rec = request(router, http.MethodGet, "/", "garbage")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}

func TestInternalErrorsUseRequestLogger(t *testing.T) {
	log, err := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: "json", AppName: "barterhub"})
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	log.SetOutput(buf)

	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggingMiddleware(log))
	router.GET("/fail", func(c *gin.Context) {
		utils.HandleServiceError(c, errors.New("connection reset by peer"))
	})

	rec := request(router, http.MethodGet, "/fail", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	requestID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)

	var failure map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry["message"] == "Request failed" {
			failure = entry
		}
	}
	require.NotNil(t, failure, "internal error was not logged")
	assert.Equal(t, requestID, failure["request_id"])
	assert.Equal(t, "barterhub", failure["app"])
	assert.Equal(t, "/fail", failure["path"])
	assert.Equal(t, "connection reset by peer", failure["error"])
}
