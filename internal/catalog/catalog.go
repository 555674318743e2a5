// Package catalog assembles the deduplicated set of files the pipeline works
// on. Descriptors arrive from several sources (directory walks, path-list
// files, build-log findings) that may each mention the same file; identity is
// the path and merging is order-independent.
package catalog

import (
	"autodocs/internal/logparse"
)

// File is one unit of rewrite work.
//
// Path is the identity: two descriptors with the same path are the same file
// no matter what else they carry. Content stays empty until the pipeline's
// read step and is replaced in place by a successful rewrite. Symbols narrows
// the rewrite to specific members; empty means the whole file.
type File struct {
	Path     string
	Language string
	DocStyle string
	Content  string
	Symbols  []string
}

// Catalog merges descriptor collections against a fixed language table.
type Catalog struct {
	table Table
}

func New(table Table) *Catalog {
	if table == nil {
		table = DefaultTable()
	}
	return &Catalog{table: table}
}

// Table exposes the language table for callers that filter paths themselves.
func (c *Catalog) Table() Table { return c.table }

// FromPaths builds plain descriptors, one per path, language derived from the
// extension. Unsupported extensions are kept here and dropped by Merge, so a
// caller can observe what discovery produced before filtering.
func (c *Catalog) FromPaths(paths []string) []*File {
	out := make([]*File, 0, len(paths))
	for _, p := range paths {
		f := &File{Path: p}
		if lang, ok := c.table.Lookup(p); ok {
			f.Language = lang.Name
			f.DocStyle = lang.DocStyle
		}
		out = append(out, f)
	}
	return out
}

// FromFindings builds descriptors for every path the build log flagged,
// carrying the flagged symbols in first-seen order.
func (c *Catalog) FromFindings(findings *logparse.Findings) []*File {
	if findings == nil {
		return nil
	}
	paths := findings.Paths()
	out := make([]*File, 0, len(paths))
	for _, p := range paths {
		f := &File{Path: p, Symbols: findings.Symbols(p)}
		if lang, ok := c.table.Lookup(p); ok {
			f.Language = lang.Name
			f.DocStyle = lang.DocStyle
		}
		out = append(out, f)
	}
	return out
}

// Merge concatenates the groups, deduplicates by path, and drops descriptors
// whose extension is not in the table. The survivor for each path sits at its
// first-seen position and carries the union of all colliding descriptors'
// symbols, so log-derived symbol lists survive no matter which source was
// listed first. Returned descriptors are fresh copies; inputs are not touched.
func (c *Catalog) Merge(groups ...[]*File) []*File {
	var out []*File
	index := make(map[string]*File)
	seen := make(map[string]map[string]struct{})

	for _, group := range groups {
		for _, in := range group {
			if in == nil || !c.table.Supported(in.Path) {
				continue
			}
			merged, ok := index[in.Path]
			if !ok {
				lang, _ := c.table.Lookup(in.Path)
				merged = &File{
					Path:     in.Path,
					Language: lang.Name,
					DocStyle: lang.DocStyle,
					Content:  in.Content,
				}
				index[in.Path] = merged
				seen[in.Path] = make(map[string]struct{})
				out = append(out, merged)
			}
			set := seen[in.Path]
			for _, sym := range in.Symbols {
				if _, dup := set[sym]; dup {
					continue
				}
				set[sym] = struct{}{}
				merged.Symbols = append(merged.Symbols, sym)
			}
		}
	}
	return out
}
