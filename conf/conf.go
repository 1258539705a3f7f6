// Package conf loads the application configuration from file and
// environment, with sane defaults for a local sqlite setup.
package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/DavidSemke/TechstackApi/internal/log"
	"github.com/DavidSemke/TechstackApi/internal/server"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
)

type Config struct {
	APIServer server.Config  `conf:"server" yaml:"server" json:"server"`
	DB        db.Config      `conf:"db"     yaml:"db"     json:"db"`
	Log       log.Config     `conf:"log"    yaml:"log"    json:"log"`
	Auth      biz.AuthConfig `conf:"auth"   yaml:"auth"   json:"auth"`
}

// Load reads configuration from techstack.yml (working directory, conf/,
// or /etc/techstack) and from TECHSTACK_* environment variables.
// Environment variables win; a missing config file is fine.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("techstack")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/techstack")

	v.SetEnvPrefix("TECHSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	err := v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "techstack")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.debug", false)

	v.SetDefault("db.dialect", "sqlite")
	v.SetDefault("db.dsn", "file:techstack.db")

	v.SetDefault("log.name", "techstack")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	v.SetDefault("auth.token_ttl", "168h")

	v.SetDefault("server.image_check_enabled", true)
}
