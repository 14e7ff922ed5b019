// Package validate holds the pure checks gating link mutations. No I/O: DNS
// resolution of the destination is deliberately out of scope, only the
// textual form is checked.
package validate

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// reservedAliases are path segments the router owns.
var reservedAliases = map[string]bool{
	"api":     true,
	"r":       true,
	"healthz": true,
	"metrics": true,
}

// IsValidAlias reports whether a caller-chosen short code is acceptable.
func IsValidAlias(alias string) bool {
	if reservedAliases[strings.ToLower(alias)] {
		return false
	}
	return aliasPattern.MatchString(alias)
}

// CheckDestination validates a destination URL. Only http/https is accepted,
// and targets that would let a stored link probe the platform's own network
// (loopback, private, link-local) are rejected.
func CheckDestination(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return errors.New("invalid URL")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("only http and https destinations are allowed")
	}

	host := parsed.Hostname()
	if host == "" {
		return errors.New("destination has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return errors.New("private, loopback, and link-local destinations are not allowed")
		}
		if ip.IsMulticast() || ip.IsUnspecified() {
			return errors.New("multicast and unspecified destinations are not allowed")
		}
		return nil
	}

	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return errors.New("localhost destinations are not allowed")
	}
	return nil
}
