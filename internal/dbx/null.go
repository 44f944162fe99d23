package dbx

import (
	"database/sql"
	"time"
)

// NullTimePtr converts a nullable column value into an optional time.
func NullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
