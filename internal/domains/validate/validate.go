// Package validate holds pure hostname syntax checks. These gate every
// domain-mutating request before any store or cache access.
package validate

import "strings"

const (
	maxHostnameLen = 253
	maxLabelLen    = 63
	minSubdomain   = 3
)

// IsValidDomain reports whether hostname is a syntactically valid DNS name:
// at least two non-empty labels of letters, digits, and hyphens, no leading
// or trailing hyphen, no wildcard.
func IsValidDomain(hostname string) bool {
	if hostname == "" || len(hostname) > maxHostnameLen {
		return false
	}
	labels := strings.Split(hostname, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isValidLabel(label) {
			return false
		}
	}
	return true
}

// IsValidSubdomainLabel reports whether label may be issued as a platform
// subdomain: 3-63 lowercase letters, digits, or hyphens, no leading or
// trailing hyphen.
func IsValidSubdomainLabel(label string) bool {
	if len(label) < minSubdomain || len(label) > maxLabelLen {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

func isValidLabel(label string) bool {
	if label == "" || len(label) > maxLabelLen {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}
