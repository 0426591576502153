// Package sqlast lowers a query.Expr tree into the SQL abstract syntax tree
// shape normative in §4.3: a list of SELECTs, each with selectCols, from,
// where, groupBy, and orderBy, fusing an operator into its subquery's
// outer SELECT whenever that subquery presents the minimal shape the
// operator needs. The AST this package emits is consumed by a downstream,
// non-normative pretty-printer (internal/prettyprint in this repo is a
// reference implementation only).
package sqlast

import (
	"relq/coltype"
	"relq/expr"
)

// ColExp is the expression slot of a SelectItem. It holds one of
// *expr.ColRef, *expr.ConstVal, *expr.AsString (carried through unchanged
// from a query.Expr leaf/extend), or *AggCall (introduced by groupBy
// lowering). It is intentionally not a closed interface satisfied only by
// package sqlast types — the AST layer is a plain data carrier for the
// downstream pretty-printer, which type-switches over it.
type ColExp any

// AggCall is an aggregate function application introduced by groupBy
// lowering: Agg(Fn, ColRef(Arg)) in §4.3's notation.
type AggCall struct {
	Fn  coltype.AggFn
	Arg string
}

// ColumnID returns the column id a ColExp would be referenced by in an
// outer SELECT's pass-through: for *expr.ColRef it's the column name, for
// anything else there is no bare id (the caller must supply an alias).
func ColumnID(ce ColExp) (string, bool) {
	if r, ok := ce.(*expr.ColRef); ok {
		return r.Name, true
	}
	return "", false
}

// SelectItem is one entry of a SELECT's column list (§4.3).
type SelectItem struct {
	ColExp  ColExp
	ColType coltype.ColumnType
	As      string // empty means no explicit alias
}

// ID returns the id this item is addressable by from an outer SELECT: As
// if set, else the bare column id of ColExp (ColumnID), else "" (not
// addressable without an alias — lowering never produces such an item as a
// leaf of a SELECT that will be projected or wrapped from).
func (si SelectItem) ID() string {
	if si.As != "" {
		return si.As
	}
	if id, ok := ColumnID(si.ColExp); ok {
		return id
	}
	return ""
}

// isBare reports whether si is a plain, unaliased column reference — the
// shape groupBy fusion requires of every selectCol before it may fuse into
// the subquery's outer SELECT instead of wrapping it.
func (si SelectItem) isBare() bool {
	if si.As != "" {
		return false
	}
	_, ok := ColumnID(si.ColExp)
	return ok
}

// FromKind discriminates SelectAST.From's three shapes (§4.3).
type FromKind int

// The three shapes a SELECT's FROM clause may take.
const (
	FromTable FromKind = iota
	FromSubquery
	FromJoin
)

// FromRef is a SELECT's FROM clause: a table name, a derived-table
// subquery, or a join of two further queries.
type FromRef struct {
	Kind FromKind

	TableName string // FromTable

	Query *QueryAST // FromSubquery

	JoinType string    // FromJoin; always "LeftOuter" (§3 Non-goals)
	Lhs, Rhs *QueryAST // FromJoin
}

// OrderByItem is one ORDER BY entry.
type OrderByItem struct {
	Col string
	Asc bool
}

// SelectAST is one SELECT statement (§4.3).
type SelectAST struct {
	SelectCols []SelectItem
	From       FromRef
	Where      *expr.FilterExp
	On         []string
	GroupBy    []string
	OrderBy    []OrderByItem
}

// hasWhereOrGroupBy reports whether s already has a WHERE or non-empty
// GROUP BY, the two boundaries fusion must never cross (§4.3 edge cases).
func (s *SelectAST) hasWhereOrGroupBy() bool {
	return s.Where != nil || len(s.GroupBy) > 0
}

// QueryAST is the top-level lowering result: a list of SELECTs, more than
// one only when concat is present (each concat operand contributes its own
// SELECTs, to be joined by UNION ALL downstream).
type QueryAST struct {
	SelectStmts []*SelectAST
}

// singleSelect returns the lone SelectAST of q if q has exactly one, and ok.
func (q *QueryAST) singleSelect() (*SelectAST, bool) {
	if len(q.SelectStmts) != 1 {
		return nil, false
	}
	return q.SelectStmts[0], true
}
