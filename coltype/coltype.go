// Package coltype defines the core column type registry (§2.1 of the
// algebra's data model) and the Dialect value object that injects a
// concrete type mapping, identifier quoting, and literal escaping into a
// compilation. Dialects are immutable; there is no ambient "current
// dialect" global — every compilation call takes one explicitly.
package coltype

import "fmt"

// Kind names one of the core column type domains, plus whatever extras a
// dialect chooses to register under CoreColumnTypes' map key space.
type Kind string

// The core kinds every Dialect must provide a ColumnType for.
const (
	KindString    Kind = "string"
	KindInteger   Kind = "integer"
	KindReal      Kind = "real"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindTimestamp Kind = "timestamp"
)

// AggFn is one of the normative aggregate function names (§6).
type AggFn string

// The normative aggregate function vocabulary accepted by the SQL lowerer.
const (
	AggSum     AggFn = "sum"
	AggAvg     AggFn = "avg"
	AggMin     AggFn = "min"
	AggMax     AggFn = "max"
	AggCount   AggFn = "count"
	AggUniq    AggFn = "uniq"
	AggNull    AggFn = "null"
	AggNullStr AggFn = "nullstr"
	AggAny     AggFn = "any"
	AggMode    AggFn = "mode"
)

// ColumnType describes one column value domain: its SQL spelling, its
// classification flags, and the aggregate function chosen for it when a
// groupBy spec names a bare column (§4.3).
type ColumnType struct {
	SQLTypeName  string
	Kind         Kind
	IsNumeric    bool
	IsString     bool
	DefaultAggFn AggFn
	// StringRender formats a Go literal of this type as it should appear
	// inside a ConstVal embedded in the AST (pre-dialect-escaping). Nil
	// means fmt.Sprint is used verbatim.
	StringRender func(v any) string
}

func (c ColumnType) render(v any) string {
	if c.StringRender != nil {
		return c.StringRender(v)
	}
	return fmt.Sprint(v)
}

// Render formats v as this column type would display it, e.g. for
// diagnostic messages formed before a dialect-specific literal escaper
// applies quoting.
func (c ColumnType) Render(v any) string { return c.render(v) }

// Dialect is an immutable value object: its core type map, quoting, and
// escaping rules are fixed at construction and never mutated afterward.
type Dialect struct {
	Name            string
	CoreColumnTypes map[Kind]ColumnType
	quoteCol        func(id string) string
	escapeString    func(s string) string
}

// QuoteCol quotes a column/table identifier per this dialect's rules.
func (d Dialect) QuoteCol(id string) string { return d.quoteCol(id) }

// EscapeString escapes a string literal's body per this dialect's rules
// (the caller is responsible for adding the surrounding quote characters
// unless noted otherwise by the specific dialect constructor).
func (d Dialect) EscapeString(s string) string { return d.escapeString(s) }

// Type looks up the ColumnType for kind, returning the zero value and false
// if this dialect does not register it.
func (d Dialect) Type(k Kind) (ColumnType, bool) {
	t, ok := d.CoreColumnTypes[k]
	return t, ok
}

// MustType is Type but panics on an unregistered kind; used for the six
// core kinds every Dialect constructor in this package is required to set.
func (d Dialect) MustType(k Kind) ColumnType {
	t, ok := d.CoreColumnTypes[k]
	if !ok {
		panic(fmt.Sprintf("coltype: dialect %q missing core kind %q", d.Name, k))
	}
	return t
}

// StringType is shorthand for MustType(KindString), used by extend's
// AsString form (§4.2) and the reference printer's CAST rendering.
func (d Dialect) StringType() ColumnType { return d.MustType(KindString) }

// IntegerType is shorthand for MustType(KindInteger), used by the
// queryToCountSql wrapper (§4.3) whose rowCount column is always integer.
func (d Dialect) IntegerType() ColumnType { return d.MustType(KindInteger) }

func coreTypes() map[Kind]ColumnType {
	return map[Kind]ColumnType{
		KindString:    {SQLTypeName: "TEXT", Kind: KindString, IsString: true, DefaultAggFn: AggUniq},
		KindInteger:   {SQLTypeName: "BIGINT", Kind: KindInteger, IsNumeric: true, DefaultAggFn: AggSum},
		KindReal:      {SQLTypeName: "DOUBLE", Kind: KindReal, IsNumeric: true, DefaultAggFn: AggSum},
		KindBoolean:   {SQLTypeName: "BOOLEAN", Kind: KindBoolean, DefaultAggFn: AggNull},
		KindDate:      {SQLTypeName: "DATE", Kind: KindDate, DefaultAggFn: AggNull},
		KindTimestamp: {SQLTypeName: "TIMESTAMP", Kind: KindTimestamp, DefaultAggFn: AggNull},
	}
}

func ansiLikeQuote(id string) string {
	out := make([]byte, 0, len(id)+2)
	out = append(out, '"')
	for i := 0; i < len(id); i++ {
		if id[i] == '"' {
			out = append(out, '"', '"')
			continue
		}
		out = append(out, id[i])
	}
	out = append(out, '"')
	return string(out)
}

func ansiLikeEscapeString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

// ANSI is the default dialect used for diagnostic messages formed before a
// real dialect is known (§9 DESIGN NOTES). Production callers should inject
// SQLite or DuckDB explicitly.
var ANSI = Dialect{
	Name:            "ansi",
	CoreColumnTypes: coreTypes(),
	quoteCol:        ansiLikeQuote,
	escapeString:    ansiLikeEscapeString,
}

// SQLite matches the BART scenario driver (§8): double-quoted identifiers,
// single-quote doubling for string literals.
var SQLite = Dialect{
	Name:            "sqlite",
	CoreColumnTypes: coreTypes(),
	quoteCol:        ansiLikeQuote,
	escapeString:    ansiLikeEscapeString,
}

// DuckDB registers the same core types as ANSI/SQLite plus a BLOB extra.
// Identifier quoting is unconditional double quotes with doubled internal
// quotes, which DuckDB accepts along with ANSI and SQLite.
var DuckDB = Dialect{
	Name: "duckdb",
	CoreColumnTypes: func() map[Kind]ColumnType {
		m := coreTypes()
		m["blob"] = ColumnType{SQLTypeName: "BLOB", Kind: "blob", DefaultAggFn: AggNull}
		return m
	}(),
	quoteCol:     ansiLikeQuote,
	escapeString: ansiLikeEscapeString,
}
