package middleware

import (
	"strings"
	"time"

	"pos-api/apperr"
	"pos-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRole   = "role"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks HS256 session tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a signed JWT for a given user
func (a *Auth) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken validates tokenStr and returns its claims.
func (a *Auth) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !claims.Role.Valid() {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// AuthRequired validates the JWT and injects claims into context
func (a *Auth) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperr.KindUnauthenticated, "Authorization header required (Bearer <token>)")
			return
		}
		claims, err := a.ParseToken(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			abort(c, apperr.KindUnauthenticated, "Invalid or expired token")
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, ok := GetRole(c)
		if !ok {
			abort(c, apperr.KindForbidden, "Role not found in context")
			return
		}
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		abort(c, apperr.KindForbidden, "Access denied. Required role(s): "+rolesString(roles))
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func abort(c *gin.Context, kind apperr.Kind, msg string) {
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": kind.Code(), "message": msg})
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	id, _ := c.Get(ctxUserID)
	v, _ := id.(uint)
	return v
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) (models.UserRole, bool) {
	val, ok := c.Get(ctxRole)
	if !ok {
		return "", false
	}
	role, ok := val.(models.UserRole)
	return role, ok
}
