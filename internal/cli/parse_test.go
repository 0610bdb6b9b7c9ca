package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/d7audit/internal/app"
	"github.com/ben-ranford/d7audit/internal/config"
	"github.com/ben-ranford/d7audit/internal/report"
	"github.com/ben-ranford/d7audit/internal/testutil"
)

const parseArgsErrFmt = "parse args: %v"

// isolated runs the parser from an empty working directory so no config
// file on the developer's machine leaks in.
func isolated(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestParseArgsHelp(t *testing.T) {
	isolated(t)
	for _, args := range [][]string{nil, {"--help"}, {"-h"}, {"help"}, {"audit", "--help"}, {"help", "audit"}} {
		if _, err := ParseArgs(args); !errors.Is(err, ErrHelpRequested) {
			t.Fatalf("expected help for %v, got %v", args, err)
		}
	}
}

func TestParseArgsUnknownCommand(t *testing.T) {
	isolated(t)
	_, err := ParseArgs([]string{"nope"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseArgsAuditDefaults(t *testing.T) {
	docroot := isolated(t)
	req, err := ParseArgs([]string{"audit", "--docroot", docroot})
	if err != nil {
		t.Fatalf(parseArgsErrFmt, err)
	}
	if req.Mode != app.ModeAudit || req.Audit.Format != report.FormatTable {
		t.Fatalf("unexpected request: %+v", req)
	}
	want := config.Defaults()
	want.Docroot = docroot
	if req.Audit.Config != want {
		t.Fatalf("expected defaults %+v, got %+v", want, req.Audit.Config)
	}
	if req.Audit.ConfigPath != "" || req.Audit.OutputPath != "" || req.Audit.Download || req.Audit.Verbose {
		t.Fatalf("expected no output options, got %+v", req.Audit)
	}
}

func TestParseArgsAuditFlags(t *testing.T) {
	docroot := isolated(t)
	req, err := ParseArgs([]string{
		"audit",
		"--docroot", docroot,
		"--format", "json",
		"--db-driver", "sqlite",
		"--db-dsn", "/tmp/site.sqlite",
		"--db-host", "mariadb",
		"--db-port", "3310",
		"--workers", "2",
		"--query-stats", "sum",
		"--skip-database",
		"--output", "audit.json",
		"-v",
	})
	if err != nil {
		t.Fatalf(parseArgsErrFmt, err)
	}
	values := req.Audit.Config
	if values.Database.Driver != "sqlite" || values.Database.DSN != "/tmp/site.sqlite" || values.Database.Host != "mariadb" || values.Database.Port != 3310 {
		t.Fatalf("unexpected database values: %+v", values.Database)
	}
	if values.Workers != 2 || values.QueryStats != "sum" || !values.SkipDatabase {
		t.Fatalf("unexpected run values: %+v", values)
	}
	if req.Audit.Format != report.FormatJSON || req.Audit.OutputPath != "audit.json" || !req.Audit.Verbose {
		t.Fatalf("unexpected audit request: %+v", req.Audit)
	}
}

func TestParseArgsEnvironmentBelowFlags(t *testing.T) {
	docroot := isolated(t)
	t.Setenv("D7AUDIT_DB_HOST", "envhost")
	t.Setenv("D7AUDIT_DB_USER", "envuser")

	req, err := ParseArgs([]string{"audit", "--docroot", docroot, "--db-host", "flaghost"})
	if err != nil {
		t.Fatalf(parseArgsErrFmt, err)
	}
	if req.Audit.Config.Database.Host != "flaghost" {
		t.Fatalf("expected flag to beat environment, got %q", req.Audit.Config.Database.Host)
	}
	if req.Audit.Config.Database.User != "envuser" {
		t.Fatalf("expected environment user, got %q", req.Audit.Config.Database.User)
	}
}

func TestParseArgsConfigFileBelowEnvironment(t *testing.T) {
	dir := isolated(t)
	testutil.MustWriteFile(t, filepath.Join(dir, ".d7audit.yml"), testutil.Lines(
		"docroot: "+dir,
		"database:",
		"  name: filedb",
		"  user: fileuser",
	))
	t.Setenv("D7AUDIT_DB_USER", "envuser")

	req, err := ParseArgs([]string{"audit"})
	if err != nil {
		t.Fatalf(parseArgsErrFmt, err)
	}
	if !strings.HasSuffix(req.Audit.ConfigPath, ".d7audit.yml") {
		t.Fatalf("expected config path, got %q", req.Audit.ConfigPath)
	}
	if req.Audit.Config.Docroot != dir || req.Audit.Config.Database.Name != "filedb" {
		t.Fatalf("expected config file values, got %+v", req.Audit.Config)
	}
	if req.Audit.Config.Database.User != "envuser" {
		t.Fatalf("expected environment to beat config file, got %q", req.Audit.Config.Database.User)
	}
}

func TestParseArgsSettingsDiscovery(t *testing.T) {
	docroot := isolated(t)
	testutil.MustWriteFile(t, filepath.Join(docroot, "sites", "default", "settings.php"), testutil.Lines(
		"<?php",
		"$databases['default']['default'] = array(",
		"  'database' => 'sitedb',",
		"  'username' => 'siteuser',",
		"  'host' => 'sitehost',",
		");",
	))

	req, err := ParseArgs([]string{"audit", "--docroot", docroot, "--db-user", "flaguser"})
	if err != nil {
		t.Fatalf(parseArgsErrFmt, err)
	}
	database := req.Audit.Config.Database
	if database.Name != "sitedb" || database.Host != "sitehost" || database.User != "flaguser" {
		t.Fatalf("unexpected discovered values: %+v", database)
	}

	req, err = ParseArgs([]string{"audit", "--docroot", docroot, "--detect-settings=false"})
	if err != nil {
		t.Fatalf(parseArgsErrFmt, err)
	}
	if req.Audit.Config.Database.Name != config.DefaultName {
		t.Fatalf("expected settings.php to be ignored, got %+v", req.Audit.Config.Database)
	}
}

func TestParseArgsAuditErrors(t *testing.T) {
	docroot := isolated(t)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"output and download", []string{"--output", "a.txt", "--download"}, ErrConflictingOutputs.Error()},
		{"format", []string{"--format", "xml"}, "unknown format"},
		{"workers", []string{"--workers", "0"}, "invalid workers"},
		{"port value", []string{"--db-port", "abc"}, "invalid argument"},
		{"driver", []string{"--db-driver", "oracle"}, "invalid database driver"},
		{"query stats", []string{"--query-stats", "max"}, "invalid query_stats"},
		{"missing config", []string{"--config", "missing.yml"}, "config file not found"},
		{"positional", []string{"extra"}, "unknown command"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"audit", "--docroot", docroot}, tc.args...)
			_, err := ParseArgs(args)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseArgsModes(t *testing.T) {
	isolated(t)
	req, err := ParseArgs([]string{"version"})
	if err != nil || req.Mode != app.ModeVersion {
		t.Fatalf("expected version mode, got %+v, %v", req, err)
	}
	req, err = ParseArgs([]string{"schema"})
	if err != nil || req.Mode != app.ModeSchema {
		t.Fatalf("expected schema mode, got %+v, %v", req, err)
	}
	if _, err := ParseArgs([]string{"version", "extra"}); err == nil {
		t.Fatalf("expected positional argument to be rejected")
	}
}
