// Package analysis runs a whole audit: database inventory first, then the
// custom modules and themes found on disk.
package analysis

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ben-ranford/d7audit/internal/aggregate"
	"github.com/ben-ranford/d7audit/internal/database"
	"github.com/ben-ranford/d7audit/internal/inventory"
	"github.com/ben-ranford/d7audit/internal/profile"
	"github.com/ben-ranford/d7audit/internal/report"
	"github.com/ben-ranford/d7audit/internal/walker"
	"github.com/ben-ranford/d7audit/internal/workspace"
)

const (
	skipDatabaseMessage = "database inspection disabled"
	noThemesMessage     = "No themes found"
	descriptorExtension = "info"
	moduleExtension     = ".module"
)

type Analyzer interface {
	Analyse(ctx context.Context, req Request) (report.Results, error)
}

// Connection is an open database the inventory can query.
type Connection interface {
	database.Querier
	Dialect() database.Dialect
	Name() string
	Close() error
}

type Opener func(ctx context.Context, cfg database.Config) (Connection, error)

type Service struct {
	Open   Opener
	Logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{Open: OpenDatabase, Logger: logger}
}

// OpenDatabase is the default Opener.
func OpenDatabase(ctx context.Context, cfg database.Config) (Connection, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (s *Service) Analyse(ctx context.Context, req Request) (report.Results, error) {
	logger := s.logger()
	docroot, err := workspace.NormalizeDocroot(req.Docroot)
	if err != nil {
		return report.Results{}, err
	}
	layout := workspace.NewLayout(docroot)

	results := report.Results{SchemaVersion: report.SchemaVersion}
	if !layout.LooksLikeDrupal7() {
		warning := "docroot " + docroot + " does not look like a Drupal 7 installation"
		logger.Warn(warning)
		results.Warnings = append(results.Warnings, warning)
	}

	sections, err := s.inventory(ctx, req, docroot)
	if err != nil {
		return report.Results{}, err
	}
	applySections(&results, sections)

	opts := profile.Options{Workers: req.Workers, QueryStats: req.QueryStats}
	if err := s.profileModules(ctx, layout, opts, &results.Modules); err != nil {
		return report.Results{}, err
	}
	themes, err := s.profileThemes(ctx, layout, opts)
	if err != nil {
		return report.Results{}, err
	}
	results.Themes = themes
	return results, nil
}

func (s *Service) inventory(ctx context.Context, req Request, docroot string) (inventory.Sections, error) {
	logger := s.logger()
	if req.SkipDatabase {
		logger.Info("skipping database inspection")
		return inventory.Unavailable(skipDatabaseMessage, docroot), nil
	}

	open := s.Open
	if open == nil {
		open = OpenDatabase
	}
	logger.Info("connecting to database", "driver", driverName(req.Database.Driver), "name", req.Database.Name)
	conn, err := open(ctx, req.Database)
	if err != nil {
		return inventory.Sections{}, err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("close database", "error", closeErr)
		}
	}()

	logger.Debug("connected", "driver", conn.Dialect().Driver(), "name", conn.Name())
	sections := inventory.NewCollector(conn, conn.Dialect()).Collect(ctx, docroot, conn.Name())
	logger.Debug("collected inventory", "nodeTypes", len(sections.NodeTypes.Rows), "contribModules", len(sections.Contrib.Modules))
	return sections, nil
}

func applySections(results *report.Results, sections inventory.Sections) {
	results.GeneralInfo = sections.GeneralInfo
	results.NodeTypes = sections.NodeTypes
	results.Taxonomies = sections.Taxonomies
	results.UserRoles = sections.UserRoles
	results.NodeFields = sections.NodeFields
	results.FileTypes = sections.FileTypes
	results.Modules.InstalledContrib = sections.InstalledContrib
	results.Modules.InstalledCustom = sections.InstalledCustom
	results.Modules.Contrib = sections.Contrib
}

func (s *Service) profileModules(ctx context.Context, layout workspace.Layout, opts profile.Options, modules *report.ModulesSection) error {
	descriptors := walker.ListFiles(walker.Target{Root: layout.CustomModules(), Extension: descriptorExtension})
	targets := make([]profile.ModuleTarget, 0, len(descriptors))
	for _, descriptor := range descriptors {
		root := filepath.Dir(descriptor)
		name := descriptorName(descriptor)
		targets = append(targets, profile.ModuleTarget{
			Name:     name,
			Root:     root,
			MainFile: filepath.Join(root, name+moduleExtension),
		})
	}

	targets = collapseByName(targets, func(target profile.ModuleTarget) string { return target.Name })

	modules.ContribInCodebase = len(layout.ContribModuleDescriptors())
	modules.CustomInCodebase = len(descriptors)
	s.logger().Info("profiling custom modules", "count", len(targets))

	records, err := profile.ProfileModules(ctx, targets, opts)
	if err != nil {
		return err
	}
	modules.Custom = records
	modules.CustomTotals = aggregate.CustomTotals(records)
	modules.FunctionReuse = aggregate.FunctionReuse(records)
	return nil
}

func (s *Service) profileThemes(ctx context.Context, layout workspace.Layout, opts profile.Options) (report.ThemesSection, error) {
	custom := walker.ListFiles(walker.Target{Root: layout.CustomThemes(), Extension: descriptorExtension})
	core := walker.ListFiles(walker.Target{Root: layout.CoreThemes(), Extension: descriptorExtension})

	targets := make([]profile.ThemeTarget, 0, len(custom))
	for _, descriptor := range custom {
		targets = append(targets, profile.ThemeTarget{
			Name:     descriptorName(descriptor),
			Root:     filepath.Dir(descriptor),
			InfoFile: descriptor,
		})
	}
	targets = collapseByName(targets, func(target profile.ThemeTarget) string { return target.Name })
	s.logger().Info("profiling themes", "custom", len(custom), "core", len(core))

	records, err := profile.ProfileThemes(ctx, targets, opts)
	if err != nil {
		return report.ThemesSection{}, err
	}
	section := report.ThemesSection{
		InCodebase:        len(custom),
		ContribInCodebase: len(core),
		Themes:            records,
	}
	if len(custom) == 0 && len(core) == 0 {
		section.Error = noThemesMessage
	}
	return section, nil
}

// collapseByName keeps one item per name. A repeated name replaces the
// earlier item but stays at the earlier position.
func collapseByName[T any](items []T, name func(T) string) []T {
	positions := make(map[string]int, len(items))
	collapsed := make([]T, 0, len(items))
	for _, item := range items {
		if position, ok := positions[name(item)]; ok {
			collapsed[position] = item
			continue
		}
		positions[name(item)] = len(collapsed)
		collapsed = append(collapsed, item)
	}
	return collapsed
}

func descriptorName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func driverName(driver string) string {
	if strings.TrimSpace(driver) == "" {
		return database.DriverMySQL
	}
	return driver
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
