// Package config resolves audit settings from defaults, the site's
// settings.php, a config file, the environment, and flags.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ben-ranford/d7audit/internal/database"
	"github.com/ben-ranford/d7audit/internal/profile"
)

const (
	DefaultDocroot    = "/var/www/html"
	DefaultDriver     = database.DriverMySQL
	DefaultHost       = "db"
	DefaultPort       = 3306
	DefaultName       = "db"
	DefaultUser       = "db"
	DefaultPassword   = "db"
	DefaultQueryStats = profile.QueryStatsLast
)

var queryStatsModes = []string{profile.QueryStatsLast, profile.QueryStatsSum}

type Database struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	DSN      string
}

func (d Database) ConnectionConfig() database.Config {
	return database.Config{
		Driver:   d.Driver,
		Host:     d.Host,
		Port:     d.Port,
		Name:     d.Name,
		User:     d.User,
		Password: d.Password,
		DSN:      d.DSN,
	}
}

type Values struct {
	Docroot        string
	Database       Database
	Workers        int
	QueryStats     string
	SkipDatabase   bool
	DetectSettings bool
}

type Overrides struct {
	Docroot        *string
	Driver         *string
	Host           *string
	Port           *int
	Name           *string
	User           *string
	Password       *string
	DSN            *string
	Workers        *int
	QueryStats     *string
	SkipDatabase   *bool
	DetectSettings *bool
}

func Defaults() Values {
	return Values{
		Docroot: DefaultDocroot,
		Database: Database{
			Driver:   DefaultDriver,
			Host:     DefaultHost,
			Port:     DefaultPort,
			Name:     DefaultName,
			User:     DefaultUser,
			Password: DefaultPassword,
		},
		Workers:        runtime.NumCPU(),
		QueryStats:     DefaultQueryStats,
		DetectSettings: true,
	}
}

func (v *Values) Validate() error {
	if strings.TrimSpace(v.Docroot) == "" {
		return fmt.Errorf("docroot must not be empty")
	}
	if err := validateDriver(v.Database.Driver); err != nil {
		return err
	}
	if err := validatePort(v.Database.Port); err != nil {
		return err
	}
	if err := validateWorkers(v.Workers); err != nil {
		return err
	}
	return validateQueryStats(v.QueryStats)
}

func (o *Overrides) Apply(base Values) Values {
	resolved := base
	applyString(&resolved.Docroot, o.Docroot)
	applyString(&resolved.Database.Driver, o.Driver)
	applyString(&resolved.Database.Host, o.Host)
	applyString(&resolved.Database.Name, o.Name)
	applyString(&resolved.Database.User, o.User)
	applyString(&resolved.Database.Password, o.Password)
	applyString(&resolved.Database.DSN, o.DSN)
	applyString(&resolved.QueryStats, o.QueryStats)
	if o.Port != nil {
		resolved.Database.Port = *o.Port
	}
	if o.Workers != nil {
		resolved.Workers = *o.Workers
	}
	if o.SkipDatabase != nil {
		resolved.SkipDatabase = *o.SkipDatabase
	}
	if o.DetectSettings != nil {
		resolved.DetectSettings = *o.DetectSettings
	}
	return resolved
}

func (o *Overrides) Validate() error {
	if err := validateOptionalString(o.Driver, validateDriver); err != nil {
		return err
	}
	if err := validateOptionalInt(o.Port, validatePort); err != nil {
		return err
	}
	if err := validateOptionalInt(o.Workers, validateWorkers); err != nil {
		return err
	}
	return validateOptionalString(o.QueryStats, validateQueryStats)
}

// Merge layers higher over base field by field.
func Merge(base, higher Overrides) Overrides {
	merged := base
	mergeField(&merged.Docroot, higher.Docroot)
	mergeField(&merged.Driver, higher.Driver)
	mergeField(&merged.Host, higher.Host)
	mergeField(&merged.Port, higher.Port)
	mergeField(&merged.Name, higher.Name)
	mergeField(&merged.User, higher.User)
	mergeField(&merged.Password, higher.Password)
	mergeField(&merged.DSN, higher.DSN)
	mergeField(&merged.Workers, higher.Workers)
	mergeField(&merged.QueryStats, higher.QueryStats)
	mergeField(&merged.SkipDatabase, higher.SkipDatabase)
	mergeField(&merged.DetectSettings, higher.DetectSettings)
	return merged
}

func mergeField[T any](target **T, higher *T) {
	if higher != nil {
		*target = higher
	}
}

func applyString(target *string, value *string) {
	if value != nil {
		*target = *value
	}
}

func validateOptionalString(value *string, validate func(string) error) error {
	if value == nil {
		return nil
	}
	return validate(*value)
}

func validateOptionalInt(value *int, validate func(int) error) error {
	if value == nil {
		return nil
	}
	return validate(*value)
}

func validateDriver(driver string) error {
	if _, ok := database.DialectFor(strings.ToLower(strings.TrimSpace(driver))); !ok {
		return fmt.Errorf("invalid database driver: %q (want %s or %s)", driver, database.DriverMySQL, database.DriverSQLite)
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid database port: %d (must be between 1 and 65535)", port)
	}
	return nil
}

func validateWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("invalid workers: %d (must be >= 1)", workers)
	}
	return nil
}

func validateQueryStats(mode string) error {
	for _, allowed := range queryStatsModes {
		if mode == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid query_stats: %q (want one of %s)", mode, strings.Join(queryStatsModes, ", "))
}
