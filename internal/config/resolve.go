package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ben-ranford/d7audit/internal/workspace"
)

const EnvPrefix = "D7AUDIT"

// Keys shared by flags and D7AUDIT_* environment variables.
const (
	KeyDocroot        = "docroot"
	KeyDriver         = "db-driver"
	KeyHost           = "db-host"
	KeyPort           = "db-port"
	KeyName           = "db-name"
	KeyUser           = "db-user"
	KeyPassword       = "db-password"
	KeyDSN            = "db-dsn"
	KeyWorkers        = "workers"
	KeyQueryStats     = "query-stats"
	KeySkipDatabase   = "skip-database"
	KeyDetectSettings = "detect-settings"
)

// NewViper returns a viper instance reading D7AUDIT_* variables, with dashes
// in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper collects the keys that were explicitly set through a changed
// flag or an environment variable. Flag defaults do not count.
func FromViper(v *viper.Viper) (Overrides, error) {
	var overrides Overrides
	var err error
	overrides.Docroot = stringKey(v, KeyDocroot)
	overrides.Driver = stringKey(v, KeyDriver)
	overrides.Host = stringKey(v, KeyHost)
	overrides.Name = stringKey(v, KeyName)
	overrides.User = stringKey(v, KeyUser)
	overrides.Password = stringKey(v, KeyPassword)
	overrides.DSN = stringKey(v, KeyDSN)
	overrides.QueryStats = stringKey(v, KeyQueryStats)
	if overrides.Port, err = intKey(v, KeyPort); err != nil {
		return Overrides{}, err
	}
	if overrides.Workers, err = intKey(v, KeyWorkers); err != nil {
		return Overrides{}, err
	}
	if overrides.SkipDatabase, err = boolKey(v, KeySkipDatabase); err != nil {
		return Overrides{}, err
	}
	if overrides.DetectSettings, err = boolKey(v, KeyDetectSettings); err != nil {
		return Overrides{}, err
	}
	if err := overrides.Validate(); err != nil {
		return Overrides{}, err
	}
	return overrides, nil
}

func stringKey(v *viper.Viper, key string) *string {
	if !v.IsSet(key) {
		return nil
	}
	value := v.GetString(key)
	return &value
}

func intKey(v *viper.Viper, key string) (*int, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &value, nil
}

func boolKey(v *viper.Viper, key string) (*bool, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &value, nil
}

// SettingsSource reads connection details for a docroot. ok is false when
// the site declares none.
type SettingsSource func(docroot string) (Overrides, bool)

// Resolve layers defaults, settings.php, the config file, and the
// environment and flags, in increasing priority. The docroot inspected for
// settings.php is the one the file and flag layers resolve to.
func Resolve(file, cli Overrides, settings SettingsSource) (Values, error) {
	upper := Merge(file, cli)
	base := Defaults()
	preview := upper.Apply(base)
	if preview.DetectSettings && settings != nil {
		if discovered, ok := settings(preview.Docroot); ok {
			base = discovered.Apply(base)
		}
	}
	resolved := upper.Apply(base)
	if err := resolved.Validate(); err != nil {
		return Values{}, err
	}
	return resolved, nil
}

// SettingsOverrides reads sites/default/settings.php under docroot. Empty
// fields are left to lower layers, as is an unrecognised driver.
func SettingsOverrides(docroot string) (Overrides, bool) {
	settings, ok := workspace.ReadSettings(workspace.NewLayout(docroot))
	if !ok {
		return Overrides{}, false
	}
	overrides := Overrides{Name: &settings.Name}
	if settings.Host != "" {
		overrides.Host = &settings.Host
	}
	if settings.User != "" {
		overrides.User = &settings.User
	}
	if settings.Password != "" {
		overrides.Password = &settings.Password
	}
	if validatePort(settings.Port) == nil {
		overrides.Port = &settings.Port
	}
	if settings.Driver != "" && validateDriver(settings.Driver) == nil {
		overrides.Driver = &settings.Driver
	}
	return overrides, true
}
