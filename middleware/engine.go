package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// NewEngine returns a gin engine with panic recovery that only honors
// X-Forwarded-For from trustedProxies. With none, ClientIP is the peer
// address.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	r.Use(gin.CustomRecovery(RecoveryHandler))
	return r, nil
}
