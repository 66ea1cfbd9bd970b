// Package identity derives the best-effort identity of an anonymous caller.
package identity

import (
	"net"
	"net/http"
	"strings"
)

// FallbackAddress is used when no network address can be determined.
const FallbackAddress = "127.0.0.1"

const (
	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
	headerHardwareTag  = "X-Mac-Address"
	headerUserAgent    = "User-Agent"
)

// Identity is the tuple used to key guest quota. Empty strings mean absent.
type Identity struct {
	NetworkAddress string
	HardwareTag    string
	UserAgent      string
}

// Resolve extracts an Identity from request metadata. It never fails.
func Resolve(r *http.Request) Identity {
	if r == nil {
		return Identity{NetworkAddress: FallbackAddress}
	}
	return Identity{
		NetworkAddress: networkAddress(r),
		HardwareTag:    strings.TrimSpace(r.Header.Get(headerHardwareTag)),
		UserAgent:      strings.TrimSpace(r.Header.Get(headerUserAgent)),
	}
}

func networkAddress(r *http.Request) string {
	if fwd := r.Header.Get(headerForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get(headerRealIP)); realIP != "" {
		return realIP
	}
	if peer := peerHost(r.RemoteAddr); peer != "" {
		return peer
	}
	return FallbackAddress
}

func peerHost(remote string) string {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
