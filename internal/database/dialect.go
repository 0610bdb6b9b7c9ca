package database

import "strings"

// Dialect supplies the few query texts that differ between MySQL and
// SQLite. Everything else the inventory runs is portable SQL.
type Dialect struct {
	driver string
}

// DialectFor returns the dialect of a supported driver name.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case DriverMySQL, DriverSQLite:
		return Dialect{driver: driver}, true
	default:
		return Dialect{}, false
	}
}

func (d Dialect) Driver() string {
	return d.driver
}

// TableExists returns a query that yields at least one row iff the table
// exists.
func (d Dialect) TableExists(table string) string {
	quoted := quoteLiteral(table)
	if d.driver == DriverSQLite {
		return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = " + quoted
	}
	return "SHOW TABLES LIKE " + quoted
}

// NodeTypes counts nodes per content type, along with those created in the
// last year.
func (d Dialect) NodeTypes() string {
	lastYear := "UNIX_TIMESTAMP(DATE_SUB(NOW(), INTERVAL 1 YEAR))"
	if d.driver == DriverSQLite {
		lastYear = "CAST(strftime('%s', 'now', '-1 year') AS INTEGER)"
	}
	return "SELECT type, COUNT(*) AS count, SUM(CASE WHEN created >= " + lastYear +
		" THEN 1 ELSE 0 END) AS last_year_count FROM node GROUP BY type ORDER BY type"
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
