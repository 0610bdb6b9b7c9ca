// Package database runs the read-only inventory queries against a Drupal
// database.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var (
	ErrUnknownDriver    = errors.New("unknown database driver")
	ErrConnectionFailed = errors.New("database connection failed")
)

type Config struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	// DSN, when set, is passed to the driver as is. For sqlite it is the
	// database file path.
	DSN string
}

// Querier is the only capability the inventory needs.
type Querier interface {
	Query(ctx context.Context, query string) (Result, error)
}

// Result holds rows as strings in column order. NULL reads as "".
type Result struct {
	Columns []string
	Rows    [][]string
}

func (r Result) Empty() bool {
	return len(r.Rows) == 0
}

// Value returns the named column of a row, or "" if either is missing.
func (r Result) Value(row int, column string) string {
	if row < 0 || row >= len(r.Rows) {
		return ""
	}
	for i, name := range r.Columns {
		if name == column && i < len(r.Rows[row]) {
			return r.Rows[row][i]
		}
	}
	return ""
}

type DB struct {
	conn    *sql.DB
	dialect Dialect
	name    string
}

func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverMySQL
	}
	dialect, ok := DialectFor(driver)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}

	conn, err := sql.Open(driver, dataSourceName(driver, cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return &DB{conn: conn, dialect: dialect, name: cfg.Name}, nil
}

func (db *DB) Name() string {
	return db.name
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Query(ctx context.Context, query string) (Result, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return Result{}, queryError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, queryError(err)
	}
	result := Result{Columns: columns, Rows: make([][]string, 0)}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return Result{}, queryError(err)
		}
		row := make([]string, len(columns))
		for i, value := range values {
			row[i] = value.String
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, queryError(err)
	}
	return result, nil
}

func queryError(err error) error {
	return fmt.Errorf("failed to execute query: %w", err)
}

func dataSourceName(driver string, cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if driver == DriverSQLite {
		return cfg.Name
	}
	mysqlConfig := mysql.NewConfig()
	mysqlConfig.User = cfg.User
	mysqlConfig.Passwd = cfg.Password
	mysqlConfig.Net = "tcp"
	mysqlConfig.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mysqlConfig.DBName = cfg.Name
	return mysqlConfig.FormatDSN()
}
