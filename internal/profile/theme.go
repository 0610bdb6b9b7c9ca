package profile

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ben-ranford/d7audit/internal/report"
	"github.com/ben-ranford/d7audit/internal/safeio"
	"github.com/ben-ranford/d7audit/internal/walker"
)

var (
	baseThemePattern   = regexp.MustCompile(`base theme\s*=\s*(.+)`)
	inlinePHPPattern   = regexp.MustCompile(`(?s)<\?php.*?\?>`)
	templatesDirectory = "templates"
)

type ThemeTarget struct {
	Name     string
	Root     string
	InfoFile string
}

func ProfileTheme(target ThemeTarget) report.ThemeRecord {
	jsFiles := walker.ListFiles(walker.Target{Root: target.Root, Extension: "js"})
	cssFiles := walker.ListFiles(walker.Target{Root: target.Root, Extension: "css"})
	templates := templateFiles(target.Root)

	record := report.ThemeRecord{
		Name:      target.Name,
		Path:      target.Root,
		BaseTheme: BaseTheme(target.InfoFile),
		JSFiles:   len(jsFiles),
		JSLines:   walker.TotalLines(jsFiles),
		CSSFiles:  len(cssFiles),
		CSSLines:  walker.TotalLines(cssFiles),
		Templates: len(templates),
	}
	if len(templates) == 0 {
		return record
	}

	lines := walker.TotalLines(templates)
	density := InlinePHPDensity(InlinePHPBlocks(templates), lines)
	record.TemplateLines = &lines
	record.PHPDensity = &density
	record.PHPPercentage = report.FormatPercent(density)
	return record
}

// BaseTheme reads the "base theme" key from a theme descriptor. Missing
// descriptors and descriptors without the key report report.NoneBaseTheme.
func BaseTheme(infoFile string) string {
	content, err := safeio.ReadFile(infoFile)
	if err != nil {
		return report.NoneBaseTheme
	}
	match := baseThemePattern.FindSubmatch(content)
	if match == nil {
		return report.NoneBaseTheme
	}
	return strings.TrimSpace(string(match[1]))
}

// InlinePHPBlocks counts non-overlapping <?php ... ?> blocks across files.
// A block may span lines.
func InlinePHPBlocks(paths []string) int {
	blocks := 0
	for _, path := range paths {
		content, err := safeio.ReadFile(path)
		if err != nil {
			continue
		}
		blocks += len(inlinePHPPattern.FindAllIndex(content, -1))
	}
	return blocks
}

// InlinePHPDensity is blocks per hundred template lines, rounded to two
// decimals. It is zero when there are no lines.
func InlinePHPDensity(blocks, lines int) float64 {
	if lines <= 0 {
		return 0
	}
	return report.RoundPercent(float64(blocks) / float64(lines) * 100)
}

func templateFiles(root string) []string {
	dir := filepath.Join(root, templatesDirectory)
	if _, err := os.Stat(dir); err != nil {
		return []string{}
	}
	return walker.ListFiles(walker.Target{Root: dir, Extension: "php"})
}
