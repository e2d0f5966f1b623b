package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/utils"
	"barterhub/pkg/logger"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired middleware validates JWT token and sets user context
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			return
		}

		userID, role, err := parseBearer(secret, authHeader)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		setUser(c, userID, role)
		c.Next()
	}
}

// OptionalAuth sets the user context when a valid token is present and lets
// anonymous requests through. An invalid token is treated as no token.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if userID, role, err := parseBearer(secret, authHeader); err == nil {
				setUser(c, userID, role)
			}
		}
		c.Next()
	}
}

func parseBearer(secret, authHeader string) (primitive.ObjectID, string, error) {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return primitive.NilObjectID, "", errors.New("Bearer token required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, "", errors.New("Invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return primitive.NilObjectID, "", errors.New("Invalid token claims")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, "", errors.New("Invalid user ID in token")
	}

	role := claims.Role
	if role == "" {
		role = string(models.UserRoleUser)
	}

	return userID, role, nil
}

func setUser(c *gin.Context, userID primitive.ObjectID, role string) {
	c.Set(utils.ContextUserID, userID)
	c.Set(utils.ContextUserRole, role)
	c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), userID))
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(utils.ContextUserRole); !exists {
			utils.UnauthorizedResponse(c)
			return
		}

		if !IsAdmin(c) {
			utils.ForbiddenResponse(c)
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user set by AuthRequired.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(utils.ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(utils.ContextUserRole) == string(models.UserRoleAdmin)
}

// GenerateToken signs an access token for userID. The auth service that
// issues tokens in production uses the same claims.
func GenerateToken(secret string, userID primitive.ObjectID, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID.Hex(),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
