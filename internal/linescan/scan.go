// Package linescan classifies source lines into spans with a single
// open-span state machine. Patterns are heuristics over raw lines; nothing
// here understands PHP syntax, comments or strings.
package linescan

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

type Span struct {
	ID        string
	StartLine int
	Lines     int
}

// Policy parameterizes Scan.
//
// A Start match always wins: it flushes any open span through Emit and opens
// a new one counting the matching line. When EvaluateOpeningLine is set the
// opening line is also passed to Inside and Close. Every other line seen
// while a span is open is counted, passed to Inside, then tested with Close.
// A span still open at end of input is emitted with its accumulated count.
type Policy struct {
	Start               func(line string) (id string, ok bool)
	Inside              func(line string, span *Span)
	Close               func(line string) bool
	Emit                func(span Span)
	EvaluateOpeningLine bool
}

type machine struct {
	policy Policy
	open   bool
	span   Span
}

// Scan streams lines from reader through policy.
func Scan(reader io.Reader, policy Policy) error {
	m := &machine{policy: policy}
	buffered := bufio.NewReader(reader)
	lineNumber := 0
	for {
		line, err := buffered.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) {
			m.flush()
			return err
		}
		lineNumber++
		m.step(normalizeLine(line), lineNumber)
		if errors.Is(err, io.EOF) {
			break
		}
	}
	m.flush()
	return nil
}

// ScanFile runs Scan over the file at path. A missing or unreadable file is
// treated as empty input.
func ScanFile(path string, policy Policy) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()
	_ = Scan(file, policy)
}

func (m *machine) step(line string, lineNumber int) {
	if id, ok := m.policy.Start(line); ok {
		m.flush()
		m.open = true
		m.span = Span{ID: id, StartLine: lineNumber, Lines: 1}
		if m.policy.EvaluateOpeningLine {
			m.evaluate(line)
		}
		return
	}
	if !m.open {
		return
	}
	m.span.Lines++
	m.evaluate(line)
}

func (m *machine) evaluate(line string) {
	if m.policy.Inside != nil {
		m.policy.Inside(line, &m.span)
	}
	if m.policy.Close != nil && m.policy.Close(line) {
		m.flush()
	}
}

func (m *machine) flush() {
	if !m.open {
		return
	}
	m.open = false
	if m.policy.Emit != nil {
		m.policy.Emit(m.span)
	}
	m.span = Span{}
}

func normalizeLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line
}
