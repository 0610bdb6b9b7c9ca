package report

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

const SchemaVersion = "0.1.0"

// NoneBaseTheme is reported for themes whose descriptor names no base theme.
const NoneBaseTheme = "None"

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, value)
	}
}

// Results is the whole audit. Section order is fixed and matches the order
// sections appear in the table output.
type Results struct {
	SchemaVersion string         `json:"schemaVersion"`
	GeneralInfo   GeneralInfo    `json:"general_info"`
	NodeTypes     Table          `json:"node_types"`
	Taxonomies    Table          `json:"taxonomies"`
	UserRoles     Table          `json:"user_roles"`
	NodeFields    Table          `json:"node_fields"`
	Modules       ModulesSection `json:"modules"`
	FileTypes     Table          `json:"file_types"`
	Themes        ThemesSection  `json:"themes"`
	Warnings      []string       `json:"warnings,omitempty"`
}

type GeneralInfo struct {
	DrupalVersion string `json:"drupalVersion"`
	SiteName      string `json:"siteName"`
	Docroot       string `json:"docroot"`
	Database      string `json:"database"`
	Error         string `json:"error,omitempty"`
}

// Table is a query result section. A non-empty Error replaces the rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Error   string     `json:"error,omitempty"`
}

func ErrorTable(message string) Table {
	return Table{Columns: []string{}, Rows: [][]string{}, Error: message}
}

type Count struct {
	Value int    `json:"value"`
	Error string `json:"error,omitempty"`
}

func (c Count) String() string {
	if c.Error != "" {
		return c.Error
	}
	return fmt.Sprintf("%d", c.Value)
}

type ModulesSection struct {
	ContribInCodebase int             `json:"contribInCodebase"`
	InstalledContrib  Count           `json:"installedContrib"`
	CustomInCodebase  int             `json:"customInCodebase"`
	InstalledCustom   Count           `json:"installedCustom"`
	Contrib           ContribModules  `json:"contrib"`
	Custom            []ModuleRecord  `json:"custom"`
	CustomTotals      CustomTotals    `json:"customTotals"`
	FunctionReuse     []FunctionReuse `json:"functionReuse"`
}

type ContribModules struct {
	Modules []ContribModule `json:"modules"`
	Error   string          `json:"error,omitempty"`
}

type ContribModule struct {
	Machine string `json:"machine"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Project string `json:"project"`
}

// ModuleRecord describes one custom module. Entities is set only when the
// module's main file defines an entity info hook; Queries only when at least
// one of its files mentions a SQL verb.
type ModuleRecord struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	PHPFiles   int            `json:"phpFiles"`
	PHPLines   int            `json:"phpLines"`
	Extensions []string       `json:"extensions"`
	Entities   *int           `json:"entities,omitempty"`
	Queries    *QueryStats    `json:"queries,omitempty"`
	Functions  []FunctionSize `json:"functions,omitempty"`
}

type QueryStats struct {
	Count int `json:"count"`
	Lines int `json:"lines"`
}

type FunctionSize struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
}

type CustomTotals struct {
	PHPFiles     int `json:"phpFiles"`
	PHPLines     int `json:"phpLines"`
	DBQueries    int `json:"dbQueries"`
	DBQueryLines int `json:"dbQueryLines"`
	Entities     int `json:"entities"`
}

type FunctionReuse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type ThemesSection struct {
	InCodebase        int           `json:"inCodebase"`
	ContribInCodebase int           `json:"contribInCodebase"`
	Themes            []ThemeRecord `json:"themes"`
	Error             string        `json:"error,omitempty"`
}

// ThemeRecord describes one theme. TemplateLines and PHPPercentage are set
// only when the theme ships templates.
type ThemeRecord struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	BaseTheme     string   `json:"baseTheme"`
	JSFiles       int      `json:"jsFiles"`
	JSLines       int      `json:"jsLines"`
	CSSFiles      int      `json:"cssFiles"`
	CSSLines      int      `json:"cssLines"`
	Templates     int      `json:"templates"`
	TemplateLines *int     `json:"templateLines,omitempty"`
	PHPDensity    *float64 `json:"phpDensity,omitempty"`
	PHPPercentage string   `json:"phpPercentage,omitempty"`
}
