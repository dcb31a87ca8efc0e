// utils/handle.go
package utils

import (
	"strings"
)

// NormalizeHandle strips the leading @, lowercases and trims a social handle.
// Returns "" for handles that normalize to nothing; callers discard those.
func NormalizeHandle(handle string) string {
	h := strings.TrimSpace(handle)
	h = strings.TrimPrefix(h, "@")
	h = strings.ToLower(strings.TrimSpace(h))
	return h
}

// HandleVariants returns the lookup forms a registry might have stored a
// handle under: as given, lowercased, and both prefixed with @. Order matters
// (most likely form first); duplicates are dropped.
func HandleVariants(handle string) []string {
	h := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
	if h == "" {
		return nil
	}
	candidates := []string{h, strings.ToLower(h), "@" + h, "@" + strings.ToLower(h)}
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, v := range candidates {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// IsHTTPURL reports whether s looks like a usable http(s) URL. Avatar
// snapshots sometimes carry data: URIs or bare paths; those are rejected.
func IsHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
