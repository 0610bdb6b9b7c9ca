// Package inventory builds the database-backed sections of an audit. Every
// section stands alone: a failed query turns that section into an error
// marker and leaves the others untouched.
package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ben-ranford/d7audit/internal/database"
	"github.com/ben-ranford/d7audit/internal/report"
)

const (
	siteNameQuery = "SELECT value FROM variable WHERE name = 'site_name'"
	versionQuery  = "SELECT schema_version FROM system WHERE name = 'system'"

	vocabularyQuery = "SELECT v.name AS vocabulary_name, COUNT(t.tid) AS terms_count FROM taxonomy_vocabulary v " +
		"LEFT JOIN taxonomy_term_data t ON v.vid = t.vid GROUP BY v.vid ORDER BY v.vid"
	rolesQuery = "SELECT r.name AS role_name, COUNT(u.uid) AS user_count FROM users_roles ur " +
		"LEFT JOIN role r ON ur.rid = r.rid LEFT JOIN users u ON ur.uid = u.uid GROUP BY r.rid ORDER BY r.rid"
	fieldsQuery = "SELECT fc.field_name, fc.type, fci.bundle FROM field_config fc " +
		"LEFT JOIN field_config_instance fci ON fc.field_name = fci.field_name " +
		"WHERE fci.entity_type = 'node' ORDER BY fci.bundle, fc.field_name"
	fileTypesQuery = "SELECT filemime, COUNT(*) AS file_count FROM file_managed GROUP BY filemime ORDER BY file_count DESC, filemime"

	installedContribQuery = "SELECT COUNT(*) AS count FROM system WHERE type = 'module' AND status = 1 " +
		"AND filename LIKE 'sites/all/modules/%'"
	installedCustomQuery = "SELECT COUNT(*) AS count FROM system WHERE type = 'module' AND status = 1 " +
		"AND filename LIKE 'sites/all/modules/custom/%'"
	contribModulesQuery = "SELECT name, filename, info FROM system WHERE type = 'module' AND status = 1 " +
		"AND filename LIKE 'sites/all/modules/%' AND filename NOT LIKE 'sites/all/modules/custom/%' ORDER BY filename"
)

// Sections is everything the database contributes to a report.
type Sections struct {
	GeneralInfo      report.GeneralInfo
	NodeTypes        report.Table
	Taxonomies       report.Table
	UserRoles        report.Table
	NodeFields       report.Table
	InstalledContrib report.Count
	InstalledCustom  report.Count
	Contrib          report.ContribModules
	FileTypes        report.Table
}

// Unavailable marks every section with the same message, for runs that
// never reach a database.
func Unavailable(message string, docroot string) Sections {
	return Sections{
		GeneralInfo:      report.GeneralInfo{Docroot: docroot, Error: message},
		NodeTypes:        report.ErrorTable(message),
		Taxonomies:       report.ErrorTable(message),
		UserRoles:        report.ErrorTable(message),
		NodeFields:       report.ErrorTable(message),
		InstalledContrib: report.Count{Error: message},
		InstalledCustom:  report.Count{Error: message},
		Contrib:          report.ContribModules{Modules: []report.ContribModule{}, Error: message},
		FileTypes:        report.ErrorTable(message),
	}
}

type Collector struct {
	db      database.Querier
	dialect database.Dialect
}

func NewCollector(db database.Querier, dialect database.Dialect) Collector {
	return Collector{db: db, dialect: dialect}
}

func (c Collector) Collect(ctx context.Context, docroot, dbName string) Sections {
	return Sections{
		GeneralInfo:      c.GeneralInfo(ctx, docroot, dbName),
		NodeTypes:        c.NodeTypes(ctx),
		Taxonomies:       c.Taxonomies(ctx),
		UserRoles:        c.UserRoles(ctx),
		NodeFields:       c.NodeFields(ctx),
		InstalledContrib: c.InstalledContribCount(ctx),
		InstalledCustom:  c.InstalledCustomCount(ctx),
		Contrib:          c.ContribModules(ctx),
		FileTypes:        c.FileTypes(ctx),
	}
}

func (c Collector) GeneralInfo(ctx context.Context, docroot, dbName string) report.GeneralInfo {
	info := report.GeneralInfo{Docroot: docroot, Database: dbName}

	version, err := c.db.Query(ctx, versionQuery)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.DrupalVersion = version.Value(0, "schema_version")

	siteName, err := c.db.Query(ctx, siteNameQuery)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.SiteName = UnserializeString(siteName.Value(0, "value"))
	return info
}

func (c Collector) NodeTypes(ctx context.Context) report.Table {
	return c.table(ctx, c.dialect.NodeTypes())
}

func (c Collector) Taxonomies(ctx context.Context) report.Table {
	return c.tableIfExists(ctx, "taxonomy_vocabulary", vocabularyQuery)
}

func (c Collector) UserRoles(ctx context.Context) report.Table {
	return c.tableIfExists(ctx, "users_roles", rolesQuery)
}

func (c Collector) NodeFields(ctx context.Context) report.Table {
	return c.table(ctx, fieldsQuery)
}

func (c Collector) FileTypes(ctx context.Context) report.Table {
	return c.table(ctx, fileTypesQuery)
}

func (c Collector) InstalledContribCount(ctx context.Context) report.Count {
	return c.count(ctx, installedContribQuery)
}

func (c Collector) InstalledCustomCount(ctx context.Context) report.Count {
	return c.count(ctx, installedCustomQuery)
}

func (c Collector) ContribModules(ctx context.Context) report.ContribModules {
	result, err := c.db.Query(ctx, contribModulesQuery)
	if err != nil {
		return report.ContribModules{Modules: []report.ContribModule{}, Error: err.Error()}
	}
	modules := make([]report.ContribModule, 0, len(result.Rows))
	for row := range result.Rows {
		modules = append(modules, contribModule(result.Value(row, "name"), result.Value(row, "info")))
	}
	return report.ContribModules{Modules: modules}
}

func (c Collector) table(ctx context.Context, query string) report.Table {
	result, err := c.db.Query(ctx, query)
	if err != nil {
		return report.ErrorTable(err.Error())
	}
	return toTable(result)
}

func (c Collector) tableIfExists(ctx context.Context, table, query string) report.Table {
	exists, err := c.db.Query(ctx, c.dialect.TableExists(table))
	if err != nil {
		return report.ErrorTable(err.Error())
	}
	if exists.Empty() {
		return report.ErrorTable(MissingTableMessage(table))
	}
	return c.table(ctx, query)
}

func (c Collector) count(ctx context.Context, query string) report.Count {
	result, err := c.db.Query(ctx, query)
	if err != nil {
		return report.Count{Error: err.Error()}
	}
	value, err := strconv.Atoi(result.Value(0, "count"))
	if err != nil {
		return report.Count{Error: fmt.Sprintf("unexpected count %q", result.Value(0, "count"))}
	}
	return report.Count{Value: value}
}

func MissingTableMessage(table string) string {
	return fmt.Sprintf("The table '%s' does not exist in the database.", table)
}

func toTable(result database.Result) report.Table {
	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}
	rows := result.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return report.Table{Columns: columns, Rows: rows}
}
