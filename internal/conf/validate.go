package conf

import (
	"fmt"
	"strconv"
)

// ValidateSettings checks the loaded settings for configurations that
// cannot work at runtime.
func ValidateSettings(settings *Settings) error {
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return fmt.Errorf("only one database backend may be enabled, got both sqlite and mysql")
	}

	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must be set when sqlite is enabled")
	}

	if settings.Output.MySQL.Enabled {
		if settings.Output.MySQL.Database == "" || settings.Output.MySQL.Host == "" {
			return fmt.Errorf("output.mysql requires database and host")
		}
		if _, err := strconv.Atoi(settings.Output.MySQL.Port); err != nil {
			return fmt.Errorf("output.mysql.port %q is not a valid port number", settings.Output.MySQL.Port)
		}
	}

	if settings.WebServer.Enabled {
		port, err := strconv.Atoi(settings.WebServer.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("webserver.port %q is not a valid port number", settings.WebServer.Port)
		}
	}

	if r := settings.Taxonomy.FuzzyMinRatio; r < 0 || r >= 1 {
		return fmt.Errorf("taxonomy.fuzzyminratio %v must be in [0, 1)", r)
	}

	if settings.Taxonomy.CacheTTLHours < 0 {
		return fmt.Errorf("taxonomy.cachettlhours must not be negative")
	}

	return nil
}
