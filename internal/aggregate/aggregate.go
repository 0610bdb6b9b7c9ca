// Package aggregate derives cross-module summaries from profiled modules.
package aggregate

import (
	"sort"
	"strings"

	"github.com/ben-ranford/d7audit/internal/report"
)

// FunctionReuse counts function names across modules after stripping each
// module's own "<name>_" prefix, keeping names that occur more than once.
// Higher counts come first; equal counts keep first-seen order.
func FunctionReuse(modules []report.ModuleRecord) []report.FunctionReuse {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, module := range modules {
		prefix := module.Name + "_"
		for _, function := range module.Functions {
			name := strings.TrimPrefix(function.Name, prefix)
			if _, ok := counts[name]; !ok {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	reuse := make([]report.FunctionReuse, 0)
	for _, name := range order {
		if counts[name] > 1 {
			reuse = append(reuse, report.FunctionReuse{Name: name, Count: counts[name]})
		}
	}
	sort.SliceStable(reuse, func(i, j int) bool {
		return reuse[i].Count > reuse[j].Count
	})
	return reuse
}

func CustomTotals(modules []report.ModuleRecord) report.CustomTotals {
	var totals report.CustomTotals
	for _, module := range modules {
		totals.PHPFiles += module.PHPFiles
		totals.PHPLines += module.PHPLines
		if module.Queries != nil {
			totals.DBQueries += module.Queries.Count
			totals.DBQueryLines += module.Queries.Lines
		}
		if module.Entities != nil {
			totals.Entities += *module.Entities
		}
	}
	return totals
}
