// Package schema holds the ordered column-id list with per-column metadata
// that every query compiles a Schema into (§3). Schemas are persistent:
// every mutator returns a new Schema and leaves its receiver untouched, so
// subtrees of a QueryRep DAG may share a Schema value safely.
package schema

import "relq/coltype"

// ColumnMetadata describes one column: its type and display name.
type ColumnMetadata struct {
	Type        coltype.ColumnType
	DisplayName string
}

// Schema is an ordered sequence of column ids plus a mapping from id to
// metadata. Every id in Columns has an entry in Metadata; ids are unique.
type Schema struct {
	Columns  []string
	Metadata map[string]ColumnMetadata
}

// New builds a Schema from parallel id/metadata lists. Panics if ids
// contains a duplicate or Metadata is missing an entry — callers assemble
// schemas only from already-validated sources (table catalogs, or this
// package's own Extend/Project helpers).
func New(ids []string, meta map[string]ColumnMetadata) Schema {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			panic("schema: duplicate column id " + id)
		}
		if _, ok := meta[id]; !ok {
			panic("schema: no metadata for column " + id)
		}
		seen[id] = true
	}
	cols := make([]string, len(ids))
	copy(cols, ids)
	md := make(map[string]ColumnMetadata, len(meta))
	for k, v := range meta {
		md[k] = v
	}
	return Schema{Columns: cols, Metadata: md}
}

// Has reports whether id is a column of s.
func (s Schema) Has(id string) bool {
	_, ok := s.Metadata[id]
	return ok
}

// Get returns the metadata for id and whether it was present.
func (s Schema) Get(id string) (ColumnMetadata, bool) {
	m, ok := s.Metadata[id]
	return m, ok
}

// IndexOf returns the position of id in Columns, or -1 if absent.
func (s Schema) IndexOf(id string) int {
	for i, c := range s.Columns {
		if c == id {
			return i
		}
	}
	return -1
}

// Extend returns a new Schema with id appended and meta recorded for it.
// ok is false (and the Schema unchanged) if id is already present.
func (s Schema) Extend(id string, meta ColumnMetadata) (Schema, bool) {
	if s.Has(id) {
		return s, false
	}
	cols := make([]string, len(s.Columns)+1)
	copy(cols, s.Columns)
	cols[len(s.Columns)] = id

	md := make(map[string]ColumnMetadata, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		md[k] = v
	}
	md[id] = meta
	return Schema{Columns: cols, Metadata: md}, true
}

// Project returns a new Schema restricted to ids, in the given order, along
// with the first id (if any) missing from s.
func (s Schema) Project(ids []string) (Schema, string, bool) {
	cols := make([]string, 0, len(ids))
	md := make(map[string]ColumnMetadata, len(ids))
	for _, id := range ids {
		m, ok := s.Get(id)
		if !ok {
			return Schema{}, id, false
		}
		cols = append(cols, id)
		md[id] = m
	}
	return Schema{Columns: cols, Metadata: md}, "", true
}

// EqualByIDAndType reports whether s and other have the same column ids, in
// the same order, with the same ColumnType.Kind per column. Display names
// and other metadata may differ. Used by concat's required schema-agreement
// check (§4.2's groupBy/concat rule, elevated from "implied" to required
// per SPEC_FULL/DESIGN's Open Question resolution).
func (s Schema) EqualByIDAndType(other Schema) bool {
	if len(s.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range s.Columns {
		if other.Columns[i] != c {
			return false
		}
		a, ok1 := s.Metadata[c]
		b, ok2 := other.Metadata[c]
		if !ok1 || !ok2 || a.Type.Kind != b.Type.Kind {
			return false
		}
	}
	return true
}

// Clone deep-copies s so callers may mutate the result without aliasing s.
func (s Schema) Clone() Schema {
	cols := make([]string, len(s.Columns))
	copy(cols, s.Columns)
	md := make(map[string]ColumnMetadata, len(s.Metadata))
	for k, v := range s.Metadata {
		md[k] = v
	}
	return Schema{Columns: cols, Metadata: md}
}
