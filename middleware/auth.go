package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/models"
	"github.com/lprs-app/peer-review-server/utils"
)

const CtxUser = "user"

// AuthJWT checks Authorization: Bearer <token>, validates the JWT, loads the
// user and injects it into the request context.
func AuthJWT(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromHeader(c, db)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		c.Set(CtxUser, user)
		c.Next()
	}
}

// OptionalAuth injects the user when a valid token is present but lets the
// request through either way. Public-cohort reads use this.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := userFromHeader(c, db); ok {
			c.Set(CtxUser, user)
		}
		c.Next()
	}
}

func userFromHeader(c *gin.Context, db *gorm.DB) (models.User, bool) {
	var user models.User

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return user, false
	}
	rawToken := strings.TrimSpace(authHeader[7:])

	claims, err := utils.VerifyToken(rawToken)
	if err != nil {
		return user, false
	}

	// UserID claim is a string, parse it to look up the primary key
	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return user, false
	}

	if err := db.First(&user, uid).Error; err != nil {
		return user, false
	}
	return user, true
}

// CurrentUser reads the authenticated user set by AuthJWT/OptionalAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
