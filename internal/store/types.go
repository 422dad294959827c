// Package store keeps users and meal feedback in SQLite or PostgreSQL and
// serves them as a feedback.Source.
package store

import "time"

// Dialect names a supported SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a configured driver name to a Dialect.
func ParseDialect(name string) (Dialect, bool) {
	switch Dialect(name) {
	case SQLite:
		return SQLite, true
	case Postgres, "postgresql":
		return Postgres, true
	}
	return "", false
}

// User is a registered mess member.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email,omitempty" yaml:"email"`
	IsAdmin   bool      `json:"isAdmin" yaml:"isAdmin"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// dateLayout is how feedback dates are stored: one TEXT calendar day.
const dateLayout = "2006-01-02"
