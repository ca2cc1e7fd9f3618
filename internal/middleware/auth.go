package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/services"
	"github.com/HadisehPourali/delyar/internal/utils"
)

// AuthMiddleware resolves the session cookie to a user and stores it in the
// request context. All identification is the opaque server-side session; no
// bearer tokens.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := config.LoadConfig()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "configuration unavailable")
			return
		}

		token, err := c.Cookie(cfg.SessionCookieName)
		if err != nil || token == "" {
			utils.RespondError(c, http.StatusUnauthorized, "authentication required")
			return
		}

		phone, ok, err := services.GetAuthSessionPhone(token)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "session lookup failed")
			return
		}
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "session expired or invalid")
			return
		}

		user, err := services.FindUserByPhone(phone)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "user not found")
			return
		}

		c.Set("user", user)
		c.Set("sessionToken", token)
		c.Next()
	}
}
