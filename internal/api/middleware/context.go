package middleware

import (
	"net"
	"net/http"
)

// ClientID identifies the caller for rate limiting. It is the remote IP as set
// by chi's RealIP middleware, without the port.
func ClientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
