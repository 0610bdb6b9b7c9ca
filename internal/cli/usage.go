package cli

const usage = `Usage:
  d7audit audit [--docroot PATH] [--config PATH] [--format table|json] [--output PATH | --download] [database options] [--workers N] [--query-stats last|sum] [--skip-database] [--verbose]
  d7audit version
  d7audit schema

Options:
  --docroot PATH             Drupal docroot (default: /var/www/html)
  --config PATH              Config file (default: .d7audit.yml, .d7audit.yaml, .d7audit.toml or d7audit.json in the working directory)
  --format table|json        Output format (default: table)
  -o, --output PATH          Write the report to PATH
  --download                 Save the report as d7audit-DD-MM-YYYY.txt (.json) in the working directory
  --workers N                Concurrent module and theme profilers (default: number of CPUs)
  --query-stats last|sum     Keep the last file's query stats per module, or sum them (default: last)
  --skip-database            Report codebase facts only
  --detect-settings=false    Do not read credentials from sites/default/settings.php
  -v, --verbose              Debug logging on stderr
  -h, --help                 Show this help text

Database options:
  --db-driver mysql|sqlite   Database driver (default: mysql)
  --db-host HOST             Database host (default: db)
  --db-port PORT             Database port (default: 3306)
  --db-name NAME             Database name (default: db)
  --db-user USER             Database user (default: db)
  --db-password PASSWORD     Database password (default: db)
  --db-dsn DSN               Driver DSN; for sqlite the database file path

Every option can also be set through D7AUDIT_<NAME>, e.g. D7AUDIT_DB_HOST.
Flags override the environment, which overrides the config file, which
overrides settings.php, which overrides the defaults.
`

func Usage() string {
	return usage
}
