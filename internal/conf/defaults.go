// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BirdDex")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "birddex.log")

	viper.SetDefault("taxonomy.path", "")
	viper.SetDefault("taxonomy.remoteurl", "")
	viper.SetDefault("taxonomy.cachettlhours", 24)
	viper.SetDefault("taxonomy.fuzzyminratio", 0.5)
	viper.SetDefault("taxonomy.searchlimit", 8)

	viper.SetDefault("user", "default")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "birddex.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "birddex")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "birddex")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.log.enabled", false)
	viper.SetDefault("webserver.log.path", "webui.log")
}
