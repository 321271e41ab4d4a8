// Package db selects the concrete store driver for a profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/vocalagent/vocalagent/internal/profile"
	"github.com/vocalagent/vocalagent/store"
	"github.com/vocalagent/vocalagent/store/db/postgres"
	"github.com/vocalagent/vocalagent/store/db/sqlite"
)

// NewDBDriver creates a new DB driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unsupported driver: %s", profile.Driver)
	}
}
