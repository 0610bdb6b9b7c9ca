package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	keyLine       = "%-30s: %s\n"
	detailLine    = "  %-28s: %s\n"
	sectionRule   = 40
	contribRule   = 80
	functionsRule = 38
)

type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

func (f Formatter) Format(results Results, format Format) (string, error) {
	switch format {
	case FormatTable:
		return formatTable(results), nil
	case FormatJSON:
		payload, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	default:
		return "", ErrUnknownFormat
	}
}

func formatTable(results Results) string {
	var buffer bytes.Buffer

	appendSectionTitle(&buffer, "general_info")
	appendGeneralInfo(&buffer, results.GeneralInfo)

	appendTableSection(&buffer, "node_types", results.NodeTypes)
	appendTableSection(&buffer, "taxonomies", results.Taxonomies)
	appendTableSection(&buffer, "user_roles", results.UserRoles)
	appendTableSection(&buffer, "node_fields", results.NodeFields)

	appendSectionTitle(&buffer, "modules")
	appendModules(&buffer, results.Modules)

	appendTableSection(&buffer, "file_types", results.FileTypes)

	appendSectionTitle(&buffer, "themes")
	appendThemes(&buffer, results.Themes)

	appendWarnings(&buffer, results.Warnings)
	return buffer.String()
}

func appendSectionTitle(buffer *bytes.Buffer, section string) {
	buffer.WriteString("\n")
	buffer.WriteString(strings.ToUpper(strings.ReplaceAll(section, "_", " ")))
	buffer.WriteString(":\n")
	appendRule(buffer, sectionRule)
}

func appendRule(buffer *bytes.Buffer, width int) {
	buffer.WriteString(strings.Repeat("-", width))
	buffer.WriteString("\n")
}

func appendGeneralInfo(buffer *bytes.Buffer, info GeneralInfo) {
	if info.Error != "" {
		buffer.WriteString(info.Error + "\n")
		return
	}
	_, _ = fmt.Fprintf(buffer, keyLine, "Drupal version", info.DrupalVersion)
	_, _ = fmt.Fprintf(buffer, keyLine, "Site name", info.SiteName)
	_, _ = fmt.Fprintf(buffer, keyLine, "DOCROOT", info.Docroot)
	_, _ = fmt.Fprintf(buffer, keyLine, "DB", info.Database)
}

func appendTableSection(buffer *bytes.Buffer, section string, table Table) {
	appendSectionTitle(buffer, section)
	if table.Error != "" {
		buffer.WriteString(table.Error + "\n")
		return
	}
	if len(table.Rows) == 0 {
		return
	}

	widths := make([]int, len(table.Columns))
	for i, column := range table.Columns {
		widths[i] = len(column)
		for _, row := range table.Rows {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	total := 0
	for i, column := range table.Columns {
		_, _ = fmt.Fprintf(buffer, "%-*s ", widths[i], column)
		total += widths[i] + 1
	}
	buffer.WriteString("\n")
	appendRule(buffer, total)

	for _, row := range table.Rows {
		for i := range table.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			_, _ = fmt.Fprintf(buffer, "%-*s ", widths[i], cell)
		}
		buffer.WriteString("\n")
	}
}

func appendModules(buffer *bytes.Buffer, modules ModulesSection) {
	_, _ = fmt.Fprintf(buffer, keyLine, "Contrib Modules in Codebase", fmt.Sprintf("%d", modules.ContribInCodebase))
	_, _ = fmt.Fprintf(buffer, keyLine, "Installed Contrib Modules", modules.InstalledContrib.String())
	_, _ = fmt.Fprintf(buffer, keyLine, "Custom Modules in Codebase", fmt.Sprintf("%d", modules.CustomInCodebase))
	_, _ = fmt.Fprintf(buffer, keyLine, "Installed Custom Modules", modules.InstalledCustom.String())

	appendContribSummary(buffer, modules.Contrib)
	appendCustomSummary(buffer, modules.CustomTotals, modules.FunctionReuse)
	appendCustomDetails(buffer, modules.Custom)
}

func appendContribSummary(buffer *bytes.Buffer, contrib ContribModules) {
	buffer.WriteString("\nInstalled Contrib Modules Summary:\n")
	appendRule(buffer, sectionRule)
	if contrib.Error != "" {
		buffer.WriteString(contrib.Error + "\n\n")
		return
	}
	_, _ = fmt.Fprintf(buffer, "%-30s %-15s %s\n", "Module Name", "Version", "Project")
	appendRule(buffer, contribRule)
	for _, module := range contrib.Modules {
		_, _ = fmt.Fprintf(buffer, "%-30s %-15s %s\n", module.Name, module.Version, module.Project)
	}
	buffer.WriteString("\n")
}

func appendCustomSummary(buffer *bytes.Buffer, totals CustomTotals, reuse []FunctionReuse) {
	buffer.WriteString("\nCustom Modules Summary:\n")
	appendRule(buffer, sectionRule)
	_, _ = fmt.Fprintf(buffer, "%-30s: %d\n", "Total PHP, inc files", totals.PHPFiles)
	_, _ = fmt.Fprintf(buffer, "%-30s: %d\n", "Total PHP, inc lines", totals.PHPLines)
	_, _ = fmt.Fprintf(buffer, "%-30s: %d\n", "Total DB queries", totals.DBQueries)
	_, _ = fmt.Fprintf(buffer, "%-30s: %d\n", "Total lines with DB queries", totals.DBQueryLines)
	_, _ = fmt.Fprintf(buffer, "%-30s: %d\n", "Total custom Entities", totals.Entities)

	buffer.WriteString("\nMost Used Functions in .module (across all custom modules):\n")
	appendRule(buffer, sectionRule)
	_, _ = fmt.Fprintf(buffer, "%-30s %s\n", "Function Name", "Count")
	appendRule(buffer, sectionRule)
	for _, item := range reuse {
		_, _ = fmt.Fprintf(buffer, "%-30s %d\n", item.Name, item.Count)
	}
}

func appendCustomDetails(buffer *bytes.Buffer, modules []ModuleRecord) {
	buffer.WriteString("\nCustom Module Details:\n")
	appendRule(buffer, sectionRule)
	for _, module := range modules {
		buffer.WriteString("Module: " + module.Name + "\n")
		_, _ = fmt.Fprintf(buffer, detailLine, "Number of PHP, inc files", fmt.Sprintf("%d", module.PHPFiles))
		_, _ = fmt.Fprintf(buffer, detailLine, "Total PHP lines", fmt.Sprintf("%d", module.PHPLines))
		_, _ = fmt.Fprintf(buffer, detailLine, "File extensions", strings.Join(module.Extensions, ", "))
		if module.Entities != nil {
			_, _ = fmt.Fprintf(buffer, detailLine, "Number of custom Entities", fmt.Sprintf("%d", *module.Entities))
		}
		if module.Queries != nil {
			_, _ = fmt.Fprintf(buffer, detailLine, "DB Queries", fmt.Sprintf("%d", module.Queries.Count))
			_, _ = fmt.Fprintf(buffer, detailLine, "Total Lines with DB Queries", fmt.Sprintf("%d", module.Queries.Lines))
		}
		if len(module.Functions) > 0 {
			appendFunctionsTable(buffer, module.Functions)
		}
		buffer.WriteString("\n")
	}
}

func appendFunctionsTable(buffer *bytes.Buffer, functions []FunctionSize) {
	rule := "  " + strings.Repeat("-", functionsRule) + "\n"
	buffer.WriteString("  Hook/ Functions in .module:\n")
	buffer.WriteString(rule)
	_, _ = fmt.Fprintf(buffer, "  %-30s %s\n", "Function Name", "Line Count")
	buffer.WriteString(rule)
	for _, function := range functions {
		_, _ = fmt.Fprintf(buffer, "  %-30s %d\n", function.Name, function.Lines)
	}
	buffer.WriteString(rule)
}

func appendThemes(buffer *bytes.Buffer, themes ThemesSection) {
	if themes.Error != "" {
		buffer.WriteString(themes.Error + "\n")
		return
	}
	_, _ = fmt.Fprintf(buffer, keyLine, "Themes in Codebase", fmt.Sprintf("%d", themes.InCodebase))
	_, _ = fmt.Fprintf(buffer, keyLine, "Contrib themes in Codebase", fmt.Sprintf("%d", themes.ContribInCodebase))
	buffer.WriteString("\nIndividual Theme Details:\n")
	appendRule(buffer, sectionRule)

	for _, theme := range themes.Themes {
		buffer.WriteString("Theme: " + theme.Name + "\n")
		_, _ = fmt.Fprintf(buffer, detailLine, "Base Theme", theme.BaseTheme)
		_, _ = fmt.Fprintf(buffer, detailLine, "Number of JS files", fmt.Sprintf("%d", theme.JSFiles))
		_, _ = fmt.Fprintf(buffer, detailLine, "Total JS lines", fmt.Sprintf("%d", theme.JSLines))
		_, _ = fmt.Fprintf(buffer, detailLine, "Number of CSS files", fmt.Sprintf("%d", theme.CSSFiles))
		_, _ = fmt.Fprintf(buffer, detailLine, "Total CSS lines", fmt.Sprintf("%d", theme.CSSLines))
		_, _ = fmt.Fprintf(buffer, detailLine, "Number of Templates", fmt.Sprintf("%d", theme.Templates))
		if theme.TemplateLines != nil {
			_, _ = fmt.Fprintf(buffer, detailLine, "Total TPL lines", fmt.Sprintf("%d", *theme.TemplateLines))
			_, _ = fmt.Fprintf(buffer, detailLine, "PHP Percentage in Templates", theme.PHPPercentage)
		}
		buffer.WriteString("\n")
	}
}

func appendWarnings(buffer *bytes.Buffer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	appendSectionTitle(buffer, "warnings")
	for _, warning := range warnings {
		buffer.WriteString("- ")
		buffer.WriteString(warning)
		buffer.WriteString("\n")
	}
}
