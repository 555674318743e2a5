package catalog

import (
	"path/filepath"
	"strings"
)

// Language names a supported source language and the documentation style the
// rewrite prompt asks for.
type Language struct {
	Name     string
	DocStyle string
}

// Table maps a lower-case file extension (leading dot included) to its
// language. A Table is fixed at construction and never mutated afterwards.
type Table map[string]Language

// DefaultTable lists the languages the rewrite prompt knows how to instruct.
func DefaultTable() Table {
	return Table{
		".py":   {Name: "Python", DocStyle: "google style"},
		".cs":   {Name: "C#", DocStyle: ".NET XML"},
		".java": {Name: "Java", DocStyle: "javadoc"},
		".go":   {Name: "Go", DocStyle: "godoc"},
	}
}

// Lookup resolves the language for a path by its extension.
func (t Table) Lookup(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := t[ext]
	return lang, ok
}

// Supported reports whether the path's extension is in the table.
func (t Table) Supported(path string) bool {
	_, ok := t.Lookup(path)
	return ok
}

// Extensions returns the table's extensions in unspecified order.
func (t Table) Extensions() []string {
	out := make([]string, 0, len(t))
	for ext := range t {
		out = append(out, ext)
	}
	return out
}
