package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-ranford/d7audit/internal/database"
	"github.com/ben-ranford/d7audit/internal/report"
)

const viewsInfo = `a:4:{s:4:"name";s:5:"Views";s:7:"version";s:8:"7.x-3.24";s:7:"project";s:5:"views";s:12:"dependencies";a:1:{i:0;s:6:"ctools";}}`

var drupalSchema = []string{
	"CREATE TABLE variable (name TEXT PRIMARY KEY, value BLOB)",
	"CREATE TABLE system (filename TEXT PRIMARY KEY, name TEXT, type TEXT, status INTEGER, schema_version INTEGER, info BLOB)",
	"CREATE TABLE node (nid INTEGER PRIMARY KEY, type TEXT, created INTEGER)",
	"CREATE TABLE taxonomy_vocabulary (vid INTEGER PRIMARY KEY, name TEXT)",
	"CREATE TABLE taxonomy_term_data (tid INTEGER PRIMARY KEY, vid INTEGER)",
	"CREATE TABLE role (rid INTEGER PRIMARY KEY, name TEXT)",
	"CREATE TABLE users (uid INTEGER PRIMARY KEY)",
	"CREATE TABLE users_roles (uid INTEGER, rid INTEGER)",
	"CREATE TABLE field_config (field_name TEXT PRIMARY KEY, type TEXT)",
	"CREATE TABLE field_config_instance (field_name TEXT, entity_type TEXT, bundle TEXT)",
	"CREATE TABLE file_managed (fid INTEGER PRIMARY KEY, filemime TEXT)",
}

var drupalRows = []string{
	`INSERT INTO variable VALUES ('site_name', 's:7:"Example";')`,
	"INSERT INTO system VALUES ('modules/system/system.module', 'system', 'module', 1, 7084, '')",
	"INSERT INTO system VALUES ('sites/all/modules/views/views.module', 'views', 'module', 1, 7301, '" + viewsInfo + "')",
	"INSERT INTO system VALUES ('sites/all/modules/token/token.module', 'token', 'module', 1, 7001, 'not serialized')",
	"INSERT INTO system VALUES ('sites/all/modules/devel/devel.module', 'devel', 'module', 0, 7001, '')",
	"INSERT INTO system VALUES ('sites/all/modules/custom/alpha/alpha.module', 'alpha', 'module', 1, 0, '')",
	"INSERT INTO node (type, created) VALUES ('article', 0), ('article', 0), ('page', 0)",
	"INSERT INTO taxonomy_vocabulary VALUES (1, 'Tags'), (2, 'Sections')",
	"INSERT INTO taxonomy_term_data VALUES (1, 1), (2, 1), (3, 1)",
	"INSERT INTO role VALUES (3, 'administrator'), (4, 'editor')",
	"INSERT INTO users VALUES (1), (2), (3)",
	"INSERT INTO users_roles VALUES (1, 3), (2, 4), (3, 4)",
	"INSERT INTO field_config VALUES ('body', 'text_with_summary'), ('field_tags', 'taxonomy_term_reference'), ('field_user_bio', 'text')",
	"INSERT INTO field_config_instance VALUES ('body', 'node', 'page'), ('body', 'node', 'article'), ('field_tags', 'node', 'article'), ('field_user_bio', 'user', 'user')",
	"INSERT INTO file_managed (filemime) VALUES ('image/png'), ('image/png'), ('application/pdf')",
}

func seedDrupal(t *testing.T, statements ...string) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drupal.sqlite")
	conn, err := sql.Open(database.DriverSQLite, path)
	require.NoError(t, err)
	for _, statement := range statements {
		_, err := conn.Exec(statement)
		require.NoError(t, err, statement)
	}
	require.NoError(t, conn.Close())

	db, err := database.Open(context.Background(), database.Config{Driver: database.DriverSQLite, Name: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fullDrupal(t *testing.T) Collector {
	t.Helper()
	db := seedDrupal(t, append(append([]string{}, drupalSchema...), drupalRows...)...)
	return NewCollector(db, db.Dialect())
}

func TestCollectAgainstSeededDatabase(t *testing.T) {
	sections := fullDrupal(t).Collect(context.Background(), "/var/www/html", "drupal")

	assert.Equal(t, report.GeneralInfo{DrupalVersion: "7084", SiteName: "Example", Docroot: "/var/www/html", Database: "drupal"}, sections.GeneralInfo)

	assert.Equal(t, []string{"type", "count", "last_year_count"}, sections.NodeTypes.Columns)
	assert.Equal(t, [][]string{{"article", "2", "0"}, {"page", "1", "0"}}, sections.NodeTypes.Rows)

	assert.Equal(t, []string{"vocabulary_name", "terms_count"}, sections.Taxonomies.Columns)
	assert.Equal(t, [][]string{{"Tags", "3"}, {"Sections", "0"}}, sections.Taxonomies.Rows)

	assert.Equal(t, [][]string{{"administrator", "1"}, {"editor", "2"}}, sections.UserRoles.Rows)

	assert.Equal(t, [][]string{
		{"body", "text_with_summary", "article"},
		{"field_tags", "taxonomy_term_reference", "article"},
		{"body", "text_with_summary", "page"},
	}, sections.NodeFields.Rows)

	assert.Equal(t, report.Count{Value: 3}, sections.InstalledContrib)
	assert.Equal(t, report.Count{Value: 1}, sections.InstalledCustom)

	require.Empty(t, sections.Contrib.Error)
	assert.Equal(t, []report.ContribModule{
		{Machine: "token", Name: "token", Version: "Unknown", Project: "Unknown"},
		{Machine: "views", Name: "Views", Version: "7.x-3.24", Project: "views"},
	}, sections.Contrib.Modules)

	assert.Equal(t, [][]string{{"image/png", "2"}, {"application/pdf", "1"}}, sections.FileTypes.Rows)
}

func TestMissingOptionalTablesBecomeMarkers(t *testing.T) {
	db := seedDrupal(t, drupalSchema[:3]...)
	collector := NewCollector(db, db.Dialect())
	ctx := context.Background()

	taxonomies := collector.Taxonomies(ctx)
	assert.Equal(t, "The table 'taxonomy_vocabulary' does not exist in the database.", taxonomies.Error)
	assert.NotNil(t, taxonomies.Rows)

	roles := collector.UserRoles(ctx)
	assert.Equal(t, "The table 'users_roles' does not exist in the database.", roles.Error)

	fields := collector.NodeFields(ctx)
	assert.True(t, strings.HasPrefix(fields.Error, "failed to execute query: "), fields.Error)

	info := collector.GeneralInfo(ctx, "/srv", "drupal")
	assert.Empty(t, info.Error)
	assert.Equal(t, "", info.SiteName)
}

type scriptedQuerier struct {
	failures map[string]error
	results  map[string]database.Result
}

func (q scriptedQuerier) Query(_ context.Context, query string) (database.Result, error) {
	for fragment, err := range q.failures {
		if strings.Contains(query, fragment) {
			return database.Result{}, err
		}
	}
	for fragment, result := range q.results {
		if strings.Contains(query, fragment) {
			return result, nil
		}
	}
	return database.Result{}, nil
}

func TestSectionFailuresAreIsolated(t *testing.T) {
	dialect, _ := database.DialectFor(database.DriverMySQL)
	querier := scriptedQuerier{
		failures: map[string]error{
			"FROM node":         fmt.Errorf("failed to execute query: %w", errors.New("node is locked")),
			"AS count FROM sys": errors.New("failed to execute query: count gone"),
		},
		results: map[string]database.Result{
			"schema_version": {Columns: []string{"schema_version"}, Rows: [][]string{{"7069"}}},
			"site_name":      {Columns: []string{"value"}, Rows: [][]string{{`s:4:"Demo";`}}},
			"file_managed":   {Columns: []string{"filemime", "file_count"}, Rows: [][]string{{"text/plain", "1"}}},
		},
	}
	sections := NewCollector(querier, dialect).Collect(context.Background(), "/srv", "drupal")

	assert.Equal(t, "failed to execute query: node is locked", sections.NodeTypes.Error)
	assert.Equal(t, "failed to execute query: count gone", sections.InstalledContrib.Error)
	assert.Equal(t, "failed to execute query: count gone", sections.InstalledCustom.Error)
	assert.Equal(t, "Demo", sections.GeneralInfo.SiteName)
	assert.Equal(t, "7069", sections.GeneralInfo.DrupalVersion)
	assert.Equal(t, [][]string{{"text/plain", "1"}}, sections.FileTypes.Rows)
	assert.Equal(t, MissingTableMessage("taxonomy_vocabulary"), sections.Taxonomies.Error)
	assert.NotNil(t, sections.NodeFields.Columns)
	assert.NotNil(t, sections.Contrib.Modules)
}

func TestGeneralInfoQueryFailure(t *testing.T) {
	querier := scriptedQuerier{failures: map[string]error{"schema_version": errors.New("failed to execute query: no system")}}
	info := NewCollector(querier, database.Dialect{}).GeneralInfo(context.Background(), "/srv", "drupal")
	assert.Equal(t, "failed to execute query: no system", info.Error)
	assert.Equal(t, "/srv", info.Docroot)
}

func TestCountRejectsNonNumericValue(t *testing.T) {
	querier := scriptedQuerier{results: map[string]database.Result{
		"AS count": {Columns: []string{"count"}, Rows: [][]string{{"many"}}},
	}}
	count := NewCollector(querier, database.Dialect{}).InstalledCustomCount(context.Background())
	assert.Equal(t, `unexpected count "many"`, count.Error)
}

func TestUnavailableMarksEverySection(t *testing.T) {
	sections := Unavailable("database inspection disabled", "/srv")
	for _, message := range []string{
		sections.GeneralInfo.Error,
		sections.NodeTypes.Error,
		sections.Taxonomies.Error,
		sections.UserRoles.Error,
		sections.NodeFields.Error,
		sections.InstalledContrib.Error,
		sections.InstalledCustom.Error,
		sections.Contrib.Error,
		sections.FileTypes.Error,
	} {
		assert.Equal(t, "database inspection disabled", message)
	}
	assert.Equal(t, "/srv", sections.GeneralInfo.Docroot)
}

func TestUnserializeString(t *testing.T) {
	assert.Equal(t, "Example site", UnserializeString(`s:12:"Example site";`))
	assert.Equal(t, "plain", UnserializeString("plain"))
	assert.Equal(t, "", UnserializeString(""))
}

func TestUnserializeInfo(t *testing.T) {
	info, err := UnserializeInfo(viewsInfo)
	require.NoError(t, err)
	assert.Equal(t, "Views", info["name"])
	assert.Contains(t, info, "dependencies")

	_, err = UnserializeInfo("b:1;")
	assert.Error(t, err)
}
