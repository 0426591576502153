package sqlast

import (
	"fmt"

	"relq/catalog"
	"relq/coltype"
	"relq/expr"
	"relq/internal/relerr"
	"relq/query"
	"relq/schema"
)

// Lower compiles q into a SQL AST against tables under dialect, applying
// the fusion rules of §4.3 wherever the subquery presents the minimal
// shape an operator needs.
func Lower(dialect coltype.Dialect, tables catalog.Map, q query.Expr) (*QueryAST, error) {
	switch n := q.(type) {
	case *query.TableExpr:
		return lowerTable(dialect, tables, n)
	case *query.ProjectExpr:
		return lowerProject(dialect, tables, n)
	case *query.FilterExpr:
		return lowerFilter(dialect, tables, n)
	case *query.GroupByExpr:
		return lowerGroupBy(dialect, tables, n)
	case *query.MapColumnsExpr:
		return lowerMapColumns(dialect, tables, n)
	case *query.MapColumnsByIndexExpr:
		return lowerMapColumnsByIndex(dialect, tables, n)
	case *query.ConcatExpr:
		return lowerConcat(dialect, tables, n)
	case *query.SortExpr:
		return lowerSort(dialect, tables, n)
	case *query.ExtendExpr:
		return lowerExtend(dialect, tables, n)
	case *query.JoinExpr:
		return lowerJoin(dialect, tables, n)
	default:
		return nil, relerr.NewInvalidOperator(fmt.Sprintf("%T", q))
	}
}

// LowerCount wraps query as SELECT count(*) AS rowCount FROM (<sql>) per
// §4.3's queryToCountSql.
func LowerCount(dialect coltype.Dialect, tables catalog.Map, q query.Expr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, q)
	if err != nil {
		return nil, err
	}
	item := SelectItem{
		ColExp:  &AggCall{Fn: coltype.AggCount, Arg: "*"},
		ColType: dialect.IntegerType(),
		As:      "rowCount",
	}
	stmt := &SelectAST{
		SelectCols: []SelectItem{item},
		From:       FromRef{Kind: FromSubquery, Query: sub},
		GroupBy:    []string{},
	}
	return &QueryAST{SelectStmts: []*SelectAST{stmt}}, nil
}

func lowerTable(dialect coltype.Dialect, tables catalog.Map, n *query.TableExpr) (*QueryAST, error) {
	info, ok := tables.Lookup(n.TableName)
	if !ok {
		return nil, relerr.NewUnknownTable(n.TableName)
	}
	cols := make([]SelectItem, 0, len(info.Schema.Columns))
	for _, cid := range info.Schema.Columns {
		m, _ := info.Schema.Get(cid)
		cols = append(cols, SelectItem{ColExp: expr.Col(cid), ColType: m.Type})
	}
	stmt := &SelectAST{
		SelectCols: cols,
		From:       FromRef{Kind: FromTable, TableName: n.TableName},
		GroupBy:    []string{},
	}
	return &QueryAST{SelectStmts: []*SelectAST{stmt}}, nil
}

func findItem(cols []SelectItem, id string) (SelectItem, bool) {
	for _, c := range cols {
		if c.ID() == id {
			return c, true
		}
	}
	return SelectItem{}, false
}

func lowerProject(dialect coltype.Dialect, tables catalog.Map, n *query.ProjectExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	stmts := make([]*SelectAST, len(sub.SelectStmts))
	for i, s := range sub.SelectStmts {
		newCols := make([]SelectItem, 0, len(n.Cols))
		for _, cid := range n.Cols {
			item, ok := findItem(s.SelectCols, cid)
			if !ok {
				return nil, relerr.NewUnknownColumn(cid, "project")
			}
			newCols = append(newCols, item)
		}
		cp := *s
		cp.SelectCols = newCols
		stmts[i] = &cp
	}
	return &QueryAST{SelectStmts: stmts}, nil
}

// passthroughSelect builds a derived-table outer SELECT whose selectCols
// reference base's aliases by id — never base's own expressions — per
// §4.3's edge case: "the outer SELECT's pass-through selectCols reference
// subquery aliases; never the subquery's expressions."
func passthroughSelect(base *SelectAST, sub *QueryAST) *SelectAST {
	cols := make([]SelectItem, len(base.SelectCols))
	for i, item := range base.SelectCols {
		cols[i] = SelectItem{ColExp: expr.Col(item.ID()), ColType: item.ColType}
	}
	return &SelectAST{
		SelectCols: cols,
		From:       FromRef{Kind: FromSubquery, Query: sub},
		GroupBy:    []string{},
	}
}

func lowerFilter(dialect coltype.Dialect, tables catalog.Map, n *query.FilterExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	if s, ok := sub.singleSelect(); ok && !s.hasWhereOrGroupBy() {
		cp := *s
		cp.Where = n.FExp
		return &QueryAST{SelectStmts: []*SelectAST{&cp}}, nil
	}
	base := sub.SelectStmts[0]
	outer := passthroughSelect(base, sub)
	outer.Where = n.FExp
	return &QueryAST{SelectStmts: []*SelectAST{outer}}, nil
}

func lowerSort(dialect coltype.Dialect, tables catalog.Map, n *query.SortExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	orderBy := make([]OrderByItem, 0, len(n.Keys))
	for _, k := range n.Keys {
		orderBy = append(orderBy, OrderByItem{Col: k.Col, Asc: k.Asc})
	}
	if s, ok := sub.singleSelect(); ok && len(s.OrderBy) == 0 {
		cp := *s
		cp.OrderBy = orderBy
		return &QueryAST{SelectStmts: []*SelectAST{&cp}}, nil
	}
	base := sub.SelectStmts[0]
	outer := passthroughSelect(base, sub)
	outer.OrderBy = orderBy
	return &QueryAST{SelectStmts: []*SelectAST{outer}}, nil
}

func lowerMapColumns(dialect coltype.Dialect, tables catalog.Map, n *query.MapColumnsExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	stmts := make([]*SelectAST, len(sub.SelectStmts))
	for i, s := range sub.SelectStmts {
		newCols := make([]SelectItem, len(s.SelectCols))
		for j, item := range s.SelectCols {
			newCols[j] = item
			if remap, ok := n.CMap[item.ID()]; ok && remap.ID != nil {
				newCols[j].As = *remap.ID
			}
		}
		cp := *s
		cp.SelectCols = newCols
		stmts[i] = &cp
	}
	return &QueryAST{SelectStmts: stmts}, nil
}

func lowerMapColumnsByIndex(dialect coltype.Dialect, tables catalog.Map, n *query.MapColumnsByIndexExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	stmts := make([]*SelectAST, len(sub.SelectStmts))
	for i, s := range sub.SelectStmts {
		newCols := make([]SelectItem, len(s.SelectCols))
		for j, item := range s.SelectCols {
			newCols[j] = item
			if remap, ok := n.CMap[j]; ok && remap.ID != nil {
				newCols[j].As = *remap.ID
			}
		}
		cp := *s
		cp.SelectCols = newCols
		stmts[i] = &cp
	}
	return &QueryAST{SelectStmts: stmts}, nil
}

func lowerConcat(dialect coltype.Dialect, tables catalog.Map, n *query.ConcatExpr) (*QueryAST, error) {
	left, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	right, err := Lower(dialect, tables, n.Target)
	if err != nil {
		return nil, err
	}
	stmts := make([]*SelectAST, 0, len(left.SelectStmts)+len(right.SelectStmts))
	stmts = append(stmts, left.SelectStmts...)
	stmts = append(stmts, right.SelectStmts...)
	return &QueryAST{SelectStmts: stmts}, nil
}

func aggFnFor(m schema.ColumnMetadata, explicit coltype.AggFn) coltype.AggFn {
	fn := explicit
	if fn == "" {
		fn = m.Type.DefaultAggFn
	}
	if fn == coltype.AggNull && m.Type.IsString {
		fn = coltype.AggNullStr
	}
	return fn
}

func lowerGroupBy(dialect coltype.Dialect, tables catalog.Map, n *query.GroupByExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	inSchema, err := query.InferSchema(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}

	selectGbCols := make([]SelectItem, 0, len(n.Cols))
	for _, c := range n.Cols {
		m, ok := inSchema.Get(c)
		if !ok {
			return nil, relerr.NewUnknownColumn(c, "groupBy")
		}
		selectGbCols = append(selectGbCols, SelectItem{ColExp: expr.Col(c), ColType: m.Type})
	}
	aggExprs := make([]SelectItem, 0, len(n.Aggs))
	for _, a := range n.Aggs {
		m, ok := inSchema.Get(a.Col)
		if !ok {
			return nil, relerr.NewUnknownColumn(a.Col, "groupBy")
		}
		fn := aggFnFor(m, a.Fn)
		aggExprs = append(aggExprs, SelectItem{
			ColExp:  &AggCall{Fn: fn, Arg: a.Col},
			ColType: m.Type,
			As:      a.Col,
		})
	}

	if s, ok := sub.singleSelect(); ok && !s.hasWhereOrGroupBy() && len(s.OrderBy) == 0 && allBare(s.SelectCols) {
		cp := *s
		cp.SelectCols = append(append([]SelectItem{}, selectGbCols...), aggExprs...)
		cp.GroupBy = append([]string{}, n.Cols...)
		return &QueryAST{SelectStmts: []*SelectAST{&cp}}, nil
	}

	base := sub.SelectStmts[0]
	outer := passthroughSelect(base, sub)
	outer.SelectCols = append(append([]SelectItem{}, selectGbCols...), aggExprs...)
	outer.GroupBy = append([]string{}, n.Cols...)
	return &QueryAST{SelectStmts: []*SelectAST{outer}}, nil
}

func allBare(cols []SelectItem) bool {
	for _, c := range cols {
		if !c.isBare() {
			return false
		}
	}
	return true
}

func lowerExtend(dialect coltype.Dialect, tables catalog.Map, n *query.ExtendExpr) (*QueryAST, error) {
	sub, err := Lower(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	inSchema, err := query.InferSchema(dialect, tables, n.From)
	if err != nil {
		return nil, err
	}
	colType, err := query.InferColumnExpType(dialect, inSchema, n.ColExp, n.Opts)
	if err != nil {
		return nil, err
	}

	if _, ok := n.ColExp.(*expr.ConstVal); ok {
		if s, ok := sub.singleSelect(); ok {
			cp := *s
			cp.SelectCols = append(append([]SelectItem{}, s.SelectCols...), SelectItem{
				ColExp:  n.ColExp,
				ColType: colType,
				As:      n.ColID,
			})
			return &QueryAST{SelectStmts: []*SelectAST{&cp}}, nil
		}
	}

	base := sub.SelectStmts[0]
	outer := passthroughSelect(base, sub)
	outer.SelectCols = append(outer.SelectCols, SelectItem{
		ColExp:  n.ColExp,
		ColType: colType,
		As:      n.ColID,
	})
	return &QueryAST{SelectStmts: []*SelectAST{outer}}, nil
}

func lowerJoin(dialect coltype.Dialect, tables catalog.Map, n *query.JoinExpr) (*QueryAST, error) {
	if n.JoinType != query.LeftOuter {
		return nil, relerr.NewUnsupportedJoin(string(n.JoinType))
	}
	lhs, err := Lower(dialect, tables, n.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := Lower(dialect, tables, n.Rhs)
	if err != nil {
		return nil, err
	}
	outSchema, err := query.InferSchema(dialect, tables, n)
	if err != nil {
		return nil, err
	}
	cols := make([]SelectItem, 0, len(outSchema.Columns))
	for _, cid := range outSchema.Columns {
		m, _ := outSchema.Get(cid)
		cols = append(cols, SelectItem{ColExp: expr.Col(cid), ColType: m.Type})
	}
	stmt := &SelectAST{
		SelectCols: cols,
		From: FromRef{
			Kind:     FromJoin,
			JoinType: string(n.JoinType),
			Lhs:      lhs,
			Rhs:      rhs,
		},
		On:      append([]string{}, n.On...),
		GroupBy: []string{},
	}
	return &QueryAST{SelectStmts: []*SelectAST{stmt}}, nil
}
