package webserver

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	ownerSecret string
	jwtSecret   []byte
}

func NewAuth(ownerSecret string, jwtSecret []byte) AuthHandler {
	return AuthHandler{ownerSecret: ownerSecret, jwtSecret: jwtSecret}
}

type reqToken struct {
	Secret string `json:"secret" binding:"required"`
}

// Token exchanges the pre-shared owner secret for a 1-hour JWT. There is a
// single owner identity; no user table.
func (h AuthHandler) Token(c *gin.Context) {
	var req reqToken
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if h.ownerSecret == "" {
		c.JSON(http.StatusForbidden, gin.H{"err": "OWNER_SECRET not configured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.ownerSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid secret"})
		return
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "owner",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	})
	signed, err := tok.SignedString(h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed})
}

// JWTMiddleware validates the bearer token and stores the requester identity.
func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")
		if !strings.HasPrefix(bearer, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(bearer[7:], func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		c.Set("requester", claims["sub"])
		c.Next()
	}
}

func requester(c *gin.Context) string {
	if v, ok := c.Get("requester"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "owner"
}
