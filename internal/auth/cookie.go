package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieManager writes, reads and clears the session cookie. Every cookie it
// writes carries the same attribute set so browsers honor the deletion.
type CookieManager struct {
	maxAge time.Duration
	secure bool
}

// NewCookieManager returns a CookieManager. secure enables the Secure flag
// and is on in production.
func NewCookieManager(maxAge time.Duration, secure bool) *CookieManager {
	if maxAge <= 0 {
		maxAge = 15 * time.Minute
	}
	return &CookieManager{maxAge: maxAge, secure: secure}
}

// Set attaches name=value to the response.
func (m *CookieManager) Set(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, m.cookie(name, value, int(m.maxAge.Seconds())))
}

// Get returns the named request cookie; ok is false when it is absent or empty.
func (m *CookieManager) Get(c *gin.Context, name string) (string, bool) {
	value, err := c.Cookie(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// Clear expires the named cookie.
func (m *CookieManager) Clear(c *gin.Context, name string) {
	http.SetCookie(c.Writer, m.cookie(name, "", -1))
}

func (m *CookieManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
