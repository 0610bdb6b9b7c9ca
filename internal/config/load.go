package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ben-ranford/d7audit/internal/safeio"
)

const (
	readConfigFileErrFmt = "read config file %s: %w"
	parseConfigErrFmt    = "parse config file %s: %w"
)

var configFileNames = []string{".d7audit.yml", ".d7audit.yaml", ".d7audit.toml", "d7audit.json"}

// Load finds and decodes the config file. An explicit path must exist; the
// implicit search in workDir may find nothing, which is not an error.
// The returned path is empty when no file was used.
func Load(workDir, explicitPath string) (Overrides, string, error) {
	workAbs, err := filepath.Abs(workDir)
	if err != nil {
		return Overrides{}, "", fmt.Errorf("resolve working directory: %w", err)
	}
	explicitPath = strings.TrimSpace(explicitPath)

	configPath, found, err := resolveConfigPath(workAbs, explicitPath)
	if err != nil || !found {
		return Overrides{}, "", err
	}

	data, err := readConfigFile(workAbs, configPath)
	if err != nil {
		return Overrides{}, "", fmt.Errorf(readConfigFileErrFmt, configPath, err)
	}
	cfg, err := parseConfig(configPath, data)
	if err != nil {
		return Overrides{}, "", fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	overrides := cfg.toOverrides()
	if err := overrides.Validate(); err != nil {
		return Overrides{}, "", fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	return overrides, configPath, nil
}

func resolveConfigPath(workDir, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(workDir, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", candidate)
			}
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range configFileNames {
		candidate := filepath.Join(workDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
	}
	return "", false, nil
}

func readConfigFile(workDir, path string) ([]byte, error) {
	if isPathUnderRoot(workDir, path) {
		return safeio.ReadFileUnder(workDir, path)
	}
	return safeio.ReadFile(path)
}

func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func parseConfig(path string, data []byte) (rawConfig, error) {
	var cfg rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid JSON config: %w", err)
		}
		if decoder.More() {
			return rawConfig{}, fmt.Errorf("invalid JSON config: multiple JSON values")
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid TOML config: %w", err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return rawConfig{}, fmt.Errorf("invalid YAML config: %w", err)
		}
	}
	return cfg, nil
}

type rawConfig struct {
	Docroot        *string     `yaml:"docroot" json:"docroot" toml:"docroot"`
	Database       rawDatabase `yaml:"database" json:"database" toml:"database"`
	Workers        *int        `yaml:"workers" json:"workers" toml:"workers"`
	QueryStats     *string     `yaml:"query_stats" json:"query_stats" toml:"query_stats"`
	SkipDatabase   *bool       `yaml:"skip_database" json:"skip_database" toml:"skip_database"`
	DetectSettings *bool       `yaml:"detect_settings" json:"detect_settings" toml:"detect_settings"`
}

type rawDatabase struct {
	Driver   *string `yaml:"driver" json:"driver" toml:"driver"`
	Host     *string `yaml:"host" json:"host" toml:"host"`
	Port     *int    `yaml:"port" json:"port" toml:"port"`
	Name     *string `yaml:"name" json:"name" toml:"name"`
	User     *string `yaml:"user" json:"user" toml:"user"`
	Password *string `yaml:"password" json:"password" toml:"password"`
	DSN      *string `yaml:"dsn" json:"dsn" toml:"dsn"`
}

func (c *rawConfig) toOverrides() Overrides {
	return Overrides{
		Docroot:        c.Docroot,
		Driver:         c.Database.Driver,
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		Name:           c.Database.Name,
		User:           c.Database.User,
		Password:       c.Database.Password,
		DSN:            c.Database.DSN,
		Workers:        c.Workers,
		QueryStats:     c.QueryStats,
		SkipDatabase:   c.SkipDatabase,
		DetectSettings: c.DetectSettings,
	}
}
