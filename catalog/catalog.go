// Package catalog defines the read-only TableInfoMap the core consumes on
// every schema-inference or SQL-lowering call (§6). The catalog is supplied
// by the driver layer (SQLite/DuckDB adapters, out of scope here) and is
// never mutated by the core during a single compilation.
package catalog

import "relq/schema"

// TableInfo describes one base table known to the catalog.
type TableInfo struct {
	Schema schema.Schema
}

// Map is an immutable-during-compilation table-name to TableInfo lookup.
type Map map[string]TableInfo

// Lookup returns the TableInfo for name and whether it exists.
func (m Map) Lookup(name string) (TableInfo, bool) {
	t, ok := m[name]
	return t, ok
}
