// Package query implements the QueryRep algebra (§3/§4.1), its schema
// inference (§4.2), and the fluent builder callers chain to construct a
// query. SQL-AST lowering lives in the sibling internal/sqlast package,
// which imports this package's Expr tree and catalog.
package query

import (
	"relq/coltype"
	"relq/expr"
)

// Expr is the QueryRep tagged union: every relational operator (and the
// table leaf) implements this marker interface; inference, lowering and
// the wire form all dispatch on the concrete type with a type switch.
// Operator() returns the same string tag the wire form writes as its
// "operator" discriminator.
type Expr interface {
	// Operator returns the wire/discriminator tag for this node: one of
	// "table", "project", "filter", "groupBy", "mapColumns",
	// "mapColumnsByIndex", "concat", "sort", "extend", "join".
	Operator() string
	queryNode()
}

// TableExpr is the QueryRep leaf: a reference to a base table by name.
type TableExpr struct {
	TableName string
}

func (*TableExpr) queryNode()       {}
func (*TableExpr) Operator() string { return "table" }

// ProjectExpr restricts From's schema to Cols, in the given order.
type ProjectExpr struct {
	Cols []string
	From Expr
}

func (*ProjectExpr) queryNode()       {}
func (*ProjectExpr) Operator() string { return "project" }

// FilterExpr applies a boolean predicate over From's rows without changing
// its schema. FExp is opaque to the core (§4.4): only its ColRef names are
// ever inspected, and only by callers, never by inference or lowering.
type FilterExpr struct {
	FExp *expr.FilterExp
	From Expr
}

func (*FilterExpr) queryNode()       {}
func (*FilterExpr) Operator() string { return "filter" }

// Agg names one aggregated output column of a GroupByExpr. Fn is empty to
// mean "use the column type's DefaultAggFn" (the bare-name form of §3's
// groupBy aggs); Fn is non-empty for the explicit (AggFn, colName) form.
type Agg struct {
	Fn  coltype.AggFn
	Col string
}

// Bare is the bare-column-name aggregate form: use the type's default.
func Bare(col string) Agg { return Agg{Col: col} }

// WithFn is the explicit (fn, colName) aggregate form.
func WithFn(fn coltype.AggFn, col string) Agg { return Agg{Fn: fn, Col: col} }

// GroupByExpr groups From's rows by Cols and aggregates Aggs. Distinct(col)
// is the macro GroupByExpr{Cols: []string{col}} (§4.1).
type GroupByExpr struct {
	Cols []string
	Aggs []Agg
	From Expr
}

func (*GroupByExpr) queryNode()       {}
func (*GroupByExpr) Operator() string { return "groupBy" }

// ColumnRemap is one entry of a mapColumns/mapColumnsByIndex cmap (§3). A
// nil ID leaves the column's id unchanged; a nil DisplayName leaves display
// name unchanged; a nil Type leaves the column type unchanged. At least one
// field should be set or the entry has no effect.
type ColumnRemap struct {
	ID          *string
	DisplayName *string
	Type        *coltype.ColumnType
}

// MapColumnsExpr renames/re-annotates columns of From by column id.
type MapColumnsExpr struct {
	CMap map[string]ColumnRemap
	From Expr
}

func (*MapColumnsExpr) queryNode()       {}
func (*MapColumnsExpr) Operator() string { return "mapColumns" }

// MapColumnsByIndexExpr renames/re-annotates columns of From by position.
type MapColumnsByIndexExpr struct {
	CMap map[int]ColumnRemap
	From Expr
}

func (*MapColumnsByIndexExpr) queryNode()       {}
func (*MapColumnsByIndexExpr) Operator() string { return "mapColumnsByIndex" }

// ConcatExpr unions From and Target, which must have equal schemas
// (§4.2/DESIGN.md's Open Question resolution elevates this to a required
// check).
type ConcatExpr struct {
	From   Expr
	Target Expr
}

func (*ConcatExpr) queryNode()       {}
func (*ConcatExpr) Operator() string { return "concat" }

// SortKey is one ORDER BY entry.
type SortKey struct {
	Col string
	Asc bool
}

// SortExpr orders From's rows by Keys without changing its schema.
type SortExpr struct {
	Keys []SortKey
	From Expr
}

func (*SortExpr) queryNode()       {}
func (*SortExpr) Operator() string { return "sort" }

// ExtendOpts optionally overrides extend's inferred type/display name.
type ExtendOpts struct {
	Type        *coltype.ColumnType
	DisplayName *string
}

// ExtendExpr appends a computed column ColID to From's schema.
type ExtendExpr struct {
	ColID  string
	ColExp expr.Node
	Opts   ExtendOpts
	From   Expr
}

func (*ExtendExpr) queryNode()       {}
func (*ExtendExpr) Operator() string { return "extend" }

// JoinType is the set of supported QueryRep join kinds. Only LeftOuter is
// implemented; any other value fails with relerr.UnsupportedJoinError.
type JoinType string

// LeftOuter is the only supported JoinExpr.JoinType value (§3 Non-goals).
const LeftOuter JoinType = "LeftOuter"

// JoinExpr left-outer-joins Lhs to Rhs on the columns in On.
type JoinExpr struct {
	Lhs, Rhs Expr
	On       []string
	JoinType JoinType
}

func (*JoinExpr) queryNode()       {}
func (*JoinExpr) Operator() string { return "join" }
