package cache

import "strings"

const (
	linkKeyPrefix   = "link:"
	domainKeyPrefix = "domain:"
)

func linkKey(code string) string {
	return linkKeyPrefix + code
}

func domainKey(hostname string) string {
	return domainKeyPrefix + strings.ToLower(hostname)
}
