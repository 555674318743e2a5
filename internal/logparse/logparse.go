// Package logparse extracts undocumented-symbol findings from .NET build logs.
//
// A CS1591 warning line looks like:
//
//	/src/Foo.cs(12,3): warning CS1591: Missing XML comment for publicly visible type or member 'Foo.Bar()' [proj]
//
// The path is everything before the (line,col) marker and the symbol sits
// between the literal "member '" token and the closing "' [".
package logparse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Marker is the compiler diagnostic code for a missing XML doc comment on a
// publicly visible member. Only lines carrying it are inspected.
const Marker = "CS1591"

const memberToken = "member '"

// MalformedLineError reports a line that carries the diagnostic marker but not
// the expected structure. Scans skip such lines and continue.
type MalformedLineError struct {
	Line   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed diagnostic line (%s): %s", e.Reason, e.Line)
}

// Findings maps file paths to the symbols flagged as undocumented. Paths and
// the symbols within a path keep first-seen order; duplicates collapse.
type Findings struct {
	paths   []string
	symbols map[string][]string
	seen    map[string]map[string]struct{}
	skipped int
}

func NewFindings() *Findings {
	return &Findings{
		symbols: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

// Add records one path/symbol pair. Repeated pairs are ignored.
func (f *Findings) Add(path, symbol string) {
	set, ok := f.seen[path]
	if !ok {
		set = make(map[string]struct{})
		f.seen[path] = set
		f.paths = append(f.paths, path)
	}
	if _, dup := set[symbol]; dup {
		return
	}
	set[symbol] = struct{}{}
	f.symbols[path] = append(f.symbols[path], symbol)
}

// Paths returns the flagged file paths in first-seen order.
func (f *Findings) Paths() []string {
	out := make([]string, len(f.paths))
	copy(out, f.paths)
	return out
}

// Symbols returns the symbols recorded for path in first-seen order, or nil
// when the path was never flagged.
func (f *Findings) Symbols(path string) []string {
	syms, ok := f.symbols[path]
	if !ok {
		return nil
	}
	out := make([]string, len(syms))
	copy(out, syms)
	return out
}

// Len is the number of distinct flagged paths.
func (f *Findings) Len() int { return len(f.paths) }

// Skipped is the number of marker lines dropped as malformed.
func (f *Findings) Skipped() int { return f.skipped }

func (f *Findings) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.symbols)
}

// Parse scans build-log text line by line and accumulates findings. Lines
// without the marker are ignored; marker lines that fail extraction are
// counted as skipped and never abort the scan.
func Parse(text string) *Findings {
	f := NewFindings()
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, Marker) {
			continue
		}
		path, symbol, err := ParseLine(line)
		if err != nil {
			f.skipped++
			continue
		}
		f.Add(path, symbol)
	}
	return f
}

// ParseLine extracts the (path, symbol) pair from a single marker line.
func ParseLine(line string) (path, symbol string, err error) {
	paren := strings.Index(line, "(")
	if paren < 0 {
		return "", "", &MalformedLineError{Line: line, Reason: "no location marker"}
	}
	path = strings.TrimSpace(line[:paren])
	if path == "" {
		return "", "", &MalformedLineError{Line: line, Reason: "empty path"}
	}
	i := strings.Index(line, memberToken)
	if i < 0 {
		return "", "", &MalformedLineError{Line: line, Reason: "no member token"}
	}
	rest := line[i+len(memberToken):]
	j := strings.Index(rest, "' [")
	if j < 0 {
		return "", "", &MalformedLineError{Line: line, Reason: "unterminated member token"}
	}
	symbol = strings.TrimSpace(rest[:j])
	if symbol == "" {
		return "", "", &MalformedLineError{Line: line, Reason: "empty symbol"}
	}
	return path, symbol, nil
}
