package datastore

import (
	"github.com/tphakala/birddex/internal/conf"
)

// validTestSettings returns settings with the SQLite backend enabled,
// suitable as a baseline for backend-selection tests.
func validTestSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "test.db"
	return s
}
