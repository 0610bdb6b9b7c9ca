package linescan

import (
	"io"
	"regexp"
	"strings"
)

var (
	functionPattern   = regexp.MustCompile(`function\s+(\w+)\s*\(`)
	queryVerbPattern  = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|MERGE|DROP|CREATE|ALTER|TRUNCATE)\b`)
	entityHookPattern = regexp.MustCompile(`function\s+(\w+_)?entity_info\s*\(`)
	entityClassText   = regexp.MustCompile(`\bentity class\b`)
)

type FunctionSize struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
}

// FunctionTable maps function names to line counts, keeping the position of
// a name's first insertion. Setting an existing name overwrites its count.
type FunctionTable struct {
	entries []FunctionSize
	index   map[string]int
}

func (t *FunctionTable) Set(name string, lines int) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if position, ok := t.index[name]; ok {
		t.entries[position].Lines = lines
		return
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, FunctionSize{Name: name, Lines: lines})
}

func (t *FunctionTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy in insertion order.
func (t *FunctionTable) Entries() []FunctionSize {
	return append([]FunctionSize{}, t.entries...)
}

type QueryStats struct {
	Count int `json:"count"`
	Lines int `json:"lines"`
}

type EntityHookStats struct {
	Found    bool
	Entities int
}

// FunctionsPolicy closes a function on the first line after its signature
// that contains "}" anywhere. Nested braces are not balanced.
func FunctionsPolicy(table *FunctionTable) Policy {
	return Policy{
		Start: func(line string) (string, bool) {
			match := functionPattern.FindStringSubmatch(line)
			if match == nil {
				return "", false
			}
			return match[1], true
		},
		Close: closesOn("}"),
		Emit: func(span Span) {
			table.Set(span.ID, span.Lines)
		},
	}
}

// QueriesPolicy opens a block on each line naming a SQL verb. The verb line
// itself is never tested for the terminator.
func QueriesPolicy(stats *QueryStats) Policy {
	return Policy{
		Start: func(line string) (string, bool) {
			if !queryVerbPattern.MatchString(line) {
				return "", false
			}
			stats.Count++
			return "query", true
		},
		Close: closesOn(";"),
		Emit: func(span Span) {
			stats.Lines += span.Lines
		},
	}
}

// EntityHookPolicy counts "entity class" lines inside any *_entity_info
// function body, including its signature line.
func EntityHookPolicy(stats *EntityHookStats) Policy {
	return Policy{
		Start: func(line string) (string, bool) {
			if !entityHookPattern.MatchString(line) {
				return "", false
			}
			stats.Found = true
			return "entity_info", true
		},
		Inside: func(line string, _ *Span) {
			if entityClassText.MatchString(line) {
				stats.Entities++
			}
		},
		Close:               closesOn("}"),
		EvaluateOpeningLine: true,
	}
}

func Functions(reader io.Reader) (FunctionTable, error) {
	var table FunctionTable
	err := Scan(reader, FunctionsPolicy(&table))
	return table, err
}

func Queries(reader io.Reader) (QueryStats, error) {
	var stats QueryStats
	err := Scan(reader, QueriesPolicy(&stats))
	return stats, err
}

func EntityHook(reader io.Reader) (EntityHookStats, error) {
	var stats EntityHookStats
	err := Scan(reader, EntityHookPolicy(&stats))
	return stats, err
}

func FunctionsInFile(path string) FunctionTable {
	var table FunctionTable
	ScanFile(path, FunctionsPolicy(&table))
	return table
}

func QueriesInFile(path string) QueryStats {
	var stats QueryStats
	ScanFile(path, QueriesPolicy(&stats))
	return stats
}

func EntityHookInFile(path string) EntityHookStats {
	var stats EntityHookStats
	ScanFile(path, EntityHookPolicy(&stats))
	return stats
}

func closesOn(marker string) func(string) bool {
	return func(line string) bool {
		return strings.Contains(line, marker)
	}
}
