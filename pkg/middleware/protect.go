package middleware

import (
	"strings"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/apperr"
	"atb/news-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewProtectMiddleware gates a route behind a valid session token. The
// token is read from the Authorization header (Bearer) or, failing that,
// the jwt cookie. On success the resolved principal is stored in the
// context as user / userID for downstream handlers.
func NewProtectMiddleware(d *internal.Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			tokenStr, _ = c.Cookie("jwt")
		}

		if tokenStr == "" {
			apperr.Abort(c, apperr.Unauthorized("You are not logged in! Please login to get access"))
			return
		}

		userID, issuedAt, err := d.Tokens.Verify(tokenStr)
		if err != nil {
			apperr.Abort(c, apperr.Unauthorized("Invalid token or session expired. Please log in again"))
			return
		}

		var user model.User

		err = d.DB.Scopes(model.ActiveOnly).Where("id = ?", userID).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				apperr.Abort(c, apperr.Unauthorized("The user belonging to this token no longer exists"))
				return
			}

			zap.L().Error("Failed to look up token subject", zap.Error(err), zap.String("requestID", requestID))
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		if security.WasChangedAfter(user.PasswordChangedAt, issuedAt) {
			apperr.Abort(c, apperr.Unauthorized("User recently changed password! Please login again"))
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", &user)
		c.Next()
	}
}

// NewRestrictToMiddleware limits a route to the given roles. Must run
// after the protect middleware since it reads the resolved principal.
func NewRestrictToMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*model.User)
		if !ok {
			apperr.Abort(c, apperr.Internal("Something went very wrong!"))
			return
		}

		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}

		apperr.Abort(c, apperr.Forbidden("You do not have permission to perform this action"))
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(h, "Bearer ")
}
