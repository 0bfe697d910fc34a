package store

import "strings"

// isSQLiteConflict reports SQLITE_BUSY and "database is locked" errors,
// both of which clear once the other writer finishes.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
