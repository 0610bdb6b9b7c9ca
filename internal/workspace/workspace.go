// Package workspace knows where things live in a Drupal 7 docroot.
package workspace

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ben-ranford/d7audit/internal/safeio"
)

var coreCompatibilityPattern = regexp.MustCompile(`(?m)^\s*core\s*=\s*"?7\.x"?\s*$`)

func NormalizeDocroot(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}

// Layout resolves the standard Drupal 7 directories under a docroot.
type Layout struct {
	Docroot string
}

func NewLayout(docroot string) Layout {
	return Layout{Docroot: docroot}
}

func (l Layout) ContribModules() string {
	return filepath.Join(l.Docroot, "sites", "all", "modules")
}

func (l Layout) CustomModules() string {
	return filepath.Join(l.ContribModules(), "custom")
}

func (l Layout) CustomThemes() string {
	return filepath.Join(l.Docroot, "sites", "all", "themes")
}

func (l Layout) CoreThemes() string {
	return filepath.Join(l.Docroot, "themes")
}

func (l Layout) Settings() string {
	return filepath.Join(l.Docroot, "sites", "default", "settings.php")
}

func (l Layout) bootstrap() string {
	return filepath.Join(l.Docroot, "includes", "bootstrap.inc")
}

func (l Layout) systemInfo() string {
	return filepath.Join(l.Docroot, "modules", "system", "system.info")
}

// ContribModuleDescriptors lists the .info files exactly one directory below
// sites/all/modules. Nested submodules and custom/ itself do not match.
func (l Layout) ContribModuleDescriptors() []string {
	matches, err := filepath.Glob(filepath.Join(l.ContribModules(), "*", "*.info"))
	if err != nil || matches == nil {
		return []string{}
	}
	sort.Strings(matches)
	return matches
}

// LooksLikeDrupal7 reports whether the docroot carries a Drupal 7 core:
// the bootstrap include and a system module declaring core 7.x.
func (l Layout) LooksLikeDrupal7() bool {
	if info, err := os.Stat(l.bootstrap()); err != nil || info.IsDir() {
		return false
	}
	content, err := safeio.ReadFileUnder(l.Docroot, l.systemInfo())
	if err != nil {
		return false
	}
	return coreCompatibilityPattern.Match(content)
}
