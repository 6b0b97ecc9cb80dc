// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/taibuivan/quill/internal/platform/constants"
	"github.com/taibuivan/quill/internal/platform/ctxkey"
)

// # Client Address Resolution

// ProxyTrust lists the reverse proxies whose forwarding headers are believed.
//
// The zero value trusts nobody: the client is always the socket peer.
type ProxyTrust struct {
	networks []*net.IPNet
}

/*
NewProxyTrust parses trusted proxy addresses. Each entry is a CIDR block or a
single IP address.

Returns:
  - *ProxyTrust: the parsed trust list
  - error: the first entry that is neither a CIDR nor an IP
*/
func NewProxyTrust(entries []string) (*ProxyTrust, error) {
	trust := &ProxyTrust{}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("trusted_proxy_invalid: %q", entry)
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			trust.networks = append(trust.networks, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxy_invalid: %w", err)
		}
		trust.networks = append(trust.networks, network)
	}

	return trust, nil
}

func (trust *ProxyTrust) trusts(address string) bool {
	if trust == nil {
		return false
	}
	ip := net.ParseIP(address)
	if ip == nil {
		return false
	}
	for _, network := range trust.networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

/*
Resolve returns the client address of request.

Forwarding headers are read only when the socket peer is a trusted proxy.
X-Forwarded-For is walked from the right and the first hop that is not a
trusted proxy wins, so a client cannot prepend its own entries.
*/
func (trust *ProxyTrust) Resolve(request *http.Request) string {
	peer := remoteHost(request)
	if !trust.trusts(peer) {
		return peer
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !trust.trusts(hop) {
				return hop
			}
		}
	}

	if ip := strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP)); net.ParseIP(ip) != nil {
		return ip
	}

	return peer
}

// ClientIP resolves the client address once per request and stores it for [RealIP].
func ClientIP(trust *ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := context.WithValue(request.Context(), ctxkey.KeyClientIP, trust.Resolve(request))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RealIP returns the address resolved by [ClientIP], or the socket peer when
// the request did not pass through it.
func RealIP(request *http.Request) string {
	if ip, ok := request.Context().Value(ctxkey.KeyClientIP).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(request)
}

func remoteHost(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
