package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// Logout overwrites the session cookie with a short-lived placeholder.
// The token itself stays cryptographically valid until its natural
// expiry; there is no server-side revocation list.
func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("jwt", "loggedout", 10, "/", "", viper.GetBool("host.ssl.enabled"), true)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
