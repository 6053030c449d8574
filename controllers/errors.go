package controllers

import "strings"

// isDuplicateKeyError detects unique-constraint violations by message so the
// check works with both PostgreSQL and the SQLite test driver.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
