package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client address of r without the port.
// Only r.RemoteAddr is consulted; proxy headers are trusted only when the
// router rewrites RemoteAddr from them (TRUST_PROXY).
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	// RealIP leaves a bare address; IPv6 may still carry brackets
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}
