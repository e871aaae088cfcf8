package middleware

import (
	"errors"
	"net/http"
	"strings"

	"dundie-rewards/internal/auth"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	actorKey = "currentActor"

	HeaderEmployeeEmail    = "X-Employee-Email"
	HeaderEmployeePassword = "X-Employee-Password"
	TokenCookie            = "dundie_token"
)

// AuthMiddleware resolves the acting employee and stores it in the context.
// Accepted, in order: Authorization Bearer token, Authorization Basic
// credentials, X-Employee-Email/X-Employee-Password headers, ?token= and the
// dundie_token cookie.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			actor *auth.Actor
			err   error
		)
		if creds, ok := credentials(c); ok {
			actor, err = auth.Authenticate(ctx, db, creds)
		} else {
			actor, err = auth.ResolveToken(ctx, db, jwtSecret, token(c))
		}

		if errors.Is(err, auth.ErrAuthentication) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			c.Abort()
			return
		}
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load employee")
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireSuperuser rejects actors without superuser privilege.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !actor.Superuser() {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "superuser privilege required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentActor returns the employee resolved by AuthMiddleware.
func CurrentActor(c *gin.Context) (*auth.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*auth.Actor)
	return actor, ok && actor != nil
}

func credentials(c *gin.Context) (auth.Credentials, bool) {
	if email, password, ok := c.Request.BasicAuth(); ok {
		return auth.Credentials{Email: email, Password: password}, true
	}
	if email := c.GetHeader(HeaderEmployeeEmail); email != "" {
		return auth.Credentials{Email: email, Password: c.GetHeader(HeaderEmployeePassword)}, true
	}
	return auth.Credentials{}, false
}

func token(c *gin.Context) string {
	if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	// for downloads where headers cannot be set
	if t := c.Query("token"); t != "" {
		return t
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
