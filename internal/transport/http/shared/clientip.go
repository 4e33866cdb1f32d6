package shared

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating address, trusting the first entry of
// X-Forwarded-For when the request came through a proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
