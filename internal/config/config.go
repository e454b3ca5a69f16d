// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables overriding single config keys,
	// e.g. ZHONGYUE_ADMIN_WEBSERVER_PORT.
	EnvPrefix = "ZHONGYUE_ADMIN"

	// EnvConfigJSON holds a JSON document merged over the file config.
	EnvConfigJSON = EnvPrefix + "_CONFIG_JSON"

	defaultShutDownTime = 5
	defaultAccessTTL    = 2 * time.Hour
	defaultRefreshTTL   = 7 * 24 * time.Hour
	defaultAdminCode    = "admin"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	// optional .env next to main.toml
	if _, statErr := os.Stat(path + ".env"); statErr == nil {
		if err = godotenv.Load(path + ".env"); err != nil {
			return Config{}, errors.Wrap(err, "failed to read .env file")
		}
	}

	v := viper.New()
	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// LocationMap returns the configured role to location bindings as a map.
func (c *Config) LocationMap() map[string]string {
	out := make(map[string]string, len(c.LocationScopes))
	for _, ls := range c.LocationScopes {
		out[ls.Role] = ls.Location
	}

	return out
}

// validate minimal config settings and fill in defaults.
func validate(c *Config) error {
	// validate webserver listening port
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	// validate access-control-allow-origin
	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.Token.Secret == "" {
		return errors.Wrap(ErrTokenSecretEmpty, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = GormEngineMySQL
	case GormEngineMySQL, GormEnginePostgres, GormEngineSQLite:
	default:
		return errors.Wrapf(ErrUnsupportedGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	seen := make(map[string]bool, len(c.LocationScopes))
	for _, ls := range c.LocationScopes {
		if seen[ls.Role] {
			return errors.Wrapf(ErrDuplicateLocationScope, "%s: %q", invalidErrMessage, ls.Role)
		}

		seen[ls.Role] = true
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Token.AccessTTL == 0 {
		c.Webserver.Token.AccessTTL = defaultAccessTTL
	}

	if c.Webserver.Token.RefreshTTL == 0 {
		c.Webserver.Token.RefreshTTL = defaultRefreshTTL
	}

	if len(c.Auth.AdminRoleCodes) == 0 {
		c.Auth.AdminRoleCodes = []string{defaultAdminCode}
	}

	return nil
}
