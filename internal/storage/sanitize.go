package storage

import "strings"

// SanitizeName converts a human-entered project or character name into a
// filesystem-safe directory token: lowercased, spaces replaced with
// underscores, apostrophes removed. Distinct names can sanitize to the
// same token ("O'Hara" and "OHara"); collisions are not detected.
func SanitizeName(name string) string {
	token := strings.ToLower(name)
	token = strings.ReplaceAll(token, " ", "_")
	token = strings.ReplaceAll(token, "'", "")
	return token
}
