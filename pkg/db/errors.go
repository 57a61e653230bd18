package db

import (
	"errors"
	"strings"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper
// looks for the constraint text anywhere in the unwrap chain, so wrapped
// repository errors still match.
func IsUniqueViolation(err error, constraintName string) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if constraintName != "" {
			if strings.Contains(msg, constraintName) {
				return true
			}
			continue
		}
		if strings.Contains(msg, "duplicate key value") {
			return true
		}
	}
	return false
}
