// Package profile builds the per-module and per-theme records of an audit
// from the files on disk.
package profile

import (
	"github.com/ben-ranford/d7audit/internal/linescan"
	"github.com/ben-ranford/d7audit/internal/report"
	"github.com/ben-ranford/d7audit/internal/walker"
)

const (
	QueryStatsLast = "last"
	QueryStatsSum  = "sum"
)

type ModuleTarget struct {
	Name     string
	Root     string
	MainFile string
}

type Options struct {
	Workers int
	// QueryStats selects how per-file query counts combine into the module
	// total. "last" keeps only the last file with queries, "sum" adds them.
	QueryStats string
}

func ProfileModule(target ModuleTarget, opts Options) report.ModuleRecord {
	exclude := target.Root + "/modules"
	phpFiles := append(
		walker.ListFiles(walker.Target{Root: target.Root, Extension: "php", Exclude: exclude}),
		walker.ListFiles(walker.Target{Root: target.Root, Extension: "inc", Exclude: exclude})...,
	)

	records := walker.Records(phpFiles)
	record := report.ModuleRecord{
		Name:       target.Name,
		Path:       target.Root,
		PHPFiles:   len(records),
		PHPLines:   walker.SumLines(records),
		Extensions: walker.Extensions(target.Root, exclude),
	}

	if hook := linescan.EntityHookInFile(target.MainFile); hook.Found {
		entities := hook.Entities
		record.Entities = &entities
	}

	record.Queries = moduleQueries(phpFiles, opts.QueryStats)

	functions := linescan.FunctionsInFile(target.MainFile)
	if functions.Len() > 0 {
		record.Functions = toFunctionSizes(functions.Entries())
	}
	return record
}

// moduleQueries returns nil when no file mentions a query.
func moduleQueries(files []string, mode string) *report.QueryStats {
	var stats *report.QueryStats
	for _, path := range files {
		found := linescan.QueriesInFile(path)
		if found.Count == 0 {
			continue
		}
		if stats == nil || mode != QueryStatsSum {
			stats = &report.QueryStats{Count: found.Count, Lines: found.Lines}
			continue
		}
		stats.Count += found.Count
		stats.Lines += found.Lines
	}
	return stats
}

func toFunctionSizes(entries []linescan.FunctionSize) []report.FunctionSize {
	sizes := make([]report.FunctionSize, 0, len(entries))
	for _, entry := range entries {
		sizes = append(sizes, report.FunctionSize{Name: entry.Name, Lines: entry.Lines})
	}
	return sizes
}
