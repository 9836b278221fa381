package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// ResolveClientIP picks the caller's IP in proxy-header order: first hop of
// X-Forwarded-For, then X-Real-IP, then the socket address, else "unknown".
// The service sits behind a trusted proxy, so the leftmost hop is the
// client.
func ResolveClientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
			return host
		}
		return remoteAddr
	}
	return "unknown"
}

// ClientIPResolver stores the resolved client IP on the request context so
// handlers and the request logger agree on one value.
func ClientIPResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ResolveClientIP(
			c.GetHeader("X-Forwarded-For"),
			c.GetHeader("X-Real-IP"),
			c.Request.RemoteAddr,
		)
		c.Set(clientIPKey, ip)
		c.Next()
	}
}

// ClientIP returns the IP set by ClientIPResolver, or "unknown" when the
// middleware did not run.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return "unknown"
}
