package query

import (
	"relq/coltype"
	"relq/expr"
)

// Builder is the fluent entry point (§4.1): Table seeds a leaf, and every
// other method wraps the builder's current Expr as the "from" of a new
// node. The builder performs no validation — every check happens in
// InferSchema (this package) or SQL lowering (internal/sqlast).
type Builder struct {
	expr Expr
}

// Table seeds a new Builder over a base table reference.
func Table(name string) Builder {
	return Builder{expr: &TableExpr{TableName: name}}
}

// From wraps an already-built Expr in a Builder, for composing subqueries
// built elsewhere (e.g. the rhs of a Join).
func From(e Expr) Builder { return Builder{expr: e} }

// Build returns the underlying Expr this Builder has accumulated.
func (b Builder) Build() Expr { return b.expr }

// Project restricts the schema to cols, in the given order.
func (b Builder) Project(cols ...string) Builder {
	return Builder{expr: &ProjectExpr{Cols: cols, From: b.expr}}
}

// Filter applies a boolean predicate.
func (b Builder) Filter(f *expr.FilterExp) Builder {
	return Builder{expr: &FilterExpr{FExp: f, From: b.expr}}
}

// GroupBy groups by cols and computes aggs.
func (b Builder) GroupBy(cols []string, aggs ...Agg) Builder {
	return Builder{expr: &GroupByExpr{Cols: cols, Aggs: aggs, From: b.expr}}
}

// Distinct is the groupBy([col], []) macro (§4.1).
func (b Builder) Distinct(col string) Builder {
	return b.GroupBy([]string{col})
}

// MapColumns renames/re-annotates columns by id.
func (b Builder) MapColumns(cmap map[string]ColumnRemap) Builder {
	return Builder{expr: &MapColumnsExpr{CMap: cmap, From: b.expr}}
}

// MapColumnsByIndex renames/re-annotates columns by position.
func (b Builder) MapColumnsByIndex(cmap map[int]ColumnRemap) Builder {
	return Builder{expr: &MapColumnsByIndexExpr{CMap: cmap, From: b.expr}}
}

// Concat unions b with target, which must have an equal schema.
func (b Builder) Concat(target Builder) Builder {
	return Builder{expr: &ConcatExpr{From: b.expr, Target: target.expr}}
}

// Sort orders rows by keys.
func (b Builder) Sort(keys ...SortKey) Builder {
	return Builder{expr: &SortExpr{Keys: keys, From: b.expr}}
}

// Extend appends a computed column colID.
func (b Builder) Extend(colID string, colExp expr.Node, opts ExtendOpts) Builder {
	return Builder{expr: &ExtendExpr{ColID: colID, ColExp: colExp, Opts: opts, From: b.expr}}
}

// Join left-outer-joins b to rhs on the given column id(s).
func (b Builder) Join(rhs Builder, joinType JoinType, on ...string) Builder {
	return Builder{expr: &JoinExpr{Lhs: b.expr, Rhs: rhs.expr, On: on, JoinType: joinType}}
}

// ColType is a small convenience so callers building ExtendOpts/ColumnRemap
// don't have to take the address of a coltype.ColumnType literal inline.
func ColType(t coltype.ColumnType) *coltype.ColumnType { return &t }

// Str is a small convenience for *string fields in ExtendOpts/ColumnRemap.
func Str(s string) *string { return &s }
