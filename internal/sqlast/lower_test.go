package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/catalog"
	"relq/coltype"
	"relq/expr"
	"relq/query"
	"relq/schema"
)

func tables() catalog.Map {
	meta := map[string]schema.ColumnMetadata{
		"id":   {Type: coltype.ANSI.MustType(coltype.KindInteger)},
		"name": {Type: coltype.ANSI.MustType(coltype.KindString)},
		"age":  {Type: coltype.ANSI.MustType(coltype.KindInteger)},
	}
	return catalog.Map{
		"people": catalog.TableInfo{Schema: schema.New([]string{"id", "name", "age"}, meta)},
	}
}

func TestLowerTable_OneSelectWithCatalogColumns(t *testing.T) {
	ast, err := Lower(coltype.ANSI, tables(), query.Table("people").Build())
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	assert.Equal(t, FromTable, ast.SelectStmts[0].From.Kind)
	assert.Len(t, ast.SelectStmts[0].SelectCols, 3)
}

func TestLowerFilter_FusesIntoBareSelect(t *testing.T) {
	q := query.Table("people").Filter(expr.And().Eq(expr.Col("id"), expr.Const(1))).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	assert.NotNil(t, ast.SelectStmts[0].Where)
	assert.Equal(t, FromTable, ast.SelectStmts[0].From.Kind, "fusion must not introduce a subquery")
}

func TestLowerFilter_WrapsWhenSubqueryAlreadyHasWhere(t *testing.T) {
	inner := query.Table("people").Filter(expr.And().Eq(expr.Col("id"), expr.Const(1))).Build()
	q := query.From(inner).Filter(expr.And().Eq(expr.Col("age"), expr.Const(30))).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	outer := ast.SelectStmts[0]
	assert.Equal(t, FromSubquery, outer.From.Kind)
	assert.NotNil(t, outer.Where)
	assert.NotNil(t, outer.From.Query.SelectStmts[0].Where, "inner WHERE must survive the wrap")
}

func TestLowerGroupBy_FusesWhenAllSelectColsAreBare(t *testing.T) {
	q := query.Table("people").GroupBy([]string{"name"}, query.WithFn(coltype.AggSum, "age")).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	assert.Equal(t, FromTable, ast.SelectStmts[0].From.Kind)
	assert.Equal(t, []string{"name"}, ast.SelectStmts[0].GroupBy)
}

func TestLowerGroupBy_WrapsWhenSubqueryHasExtendedCol(t *testing.T) {
	inner := query.Table("people").Extend("tag", expr.Const("x"), query.ExtendOpts{}).Build()
	q := query.From(inner).GroupBy([]string{"tag"}, query.WithFn(coltype.AggSum, "age")).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	outer := ast.SelectStmts[0]
	assert.Equal(t, FromSubquery, outer.From.Kind)
	assert.Equal(t, []string{"tag"}, outer.GroupBy)
	require.Len(t, outer.From.Query.SelectStmts, 1)
	assert.Equal(t, FromTable, outer.From.Query.SelectStmts[0].From.Kind,
		"wrap must nest exactly one level, not a select-over-select-over-table")
}

func TestLowerGroupBy_WrapsWhenSubqueryIsSorted(t *testing.T) {
	sorted := query.Table("people").Sort(query.SortKey{Col: "name", Asc: true}).Build()
	q := query.From(sorted).GroupBy([]string{"age"}, query.Bare("id")).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	outer := ast.SelectStmts[0]
	assert.Equal(t, FromSubquery, outer.From.Kind,
		"a sorted subquery must not be fused into, since its ORDER BY would become stale")
	assert.Equal(t, []string{"age"}, outer.GroupBy)
	require.Len(t, outer.From.Query.SelectStmts, 1)
	assert.NotEmpty(t, outer.From.Query.SelectStmts[0].OrderBy, "the original ORDER BY must survive the wrap")
}

func TestLowerExtend_ConstValFusesIntoSingleSelect(t *testing.T) {
	q := query.Table("people").Extend("isActive", expr.Const(true), query.ExtendOpts{}).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	assert.Equal(t, FromTable, ast.SelectStmts[0].From.Kind)
	last := ast.SelectStmts[0].SelectCols[len(ast.SelectStmts[0].SelectCols)-1]
	assert.Equal(t, "isActive", last.As)
}

func TestLowerExtend_ColRefExpWraps(t *testing.T) {
	q := query.Table("people").Extend("ageCopy", expr.Col("age"), query.ExtendOpts{}).Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	outer := ast.SelectStmts[0]
	assert.Equal(t, FromSubquery, outer.From.Kind)
}

func TestLowerConcat_ConcatenatesSelectStmts(t *testing.T) {
	a := query.Table("people").Project("name").Build()
	b := query.Table("people").Project("name").Build()
	ast, err := Lower(coltype.ANSI, tables(), query.From(a).Concat(query.From(b)).Build())
	require.NoError(t, err)
	assert.Len(t, ast.SelectStmts, 2)
}

func TestLowerJoin_UnsupportedTypeErrors(t *testing.T) {
	q := query.Table("people").Join(query.Table("people"), query.JoinType("Inner"), "id").Build()
	_, err := Lower(coltype.ANSI, tables(), q)
	assert.Error(t, err)
}

func TestLowerJoin_BuildsFromJoinRef(t *testing.T) {
	q := query.Table("people").Join(query.Table("people"), query.LeftOuter, "id").Build()
	ast, err := Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	assert.Equal(t, FromJoin, ast.SelectStmts[0].From.Kind)
	assert.Equal(t, []string{"id"}, ast.SelectStmts[0].On)
}

func TestLowerCount_WrapsAsSingleCountSelect(t *testing.T) {
	q := query.Table("people").Build()
	ast, err := LowerCount(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	require.Len(t, ast.SelectStmts, 1)
	require.Len(t, ast.SelectStmts[0].SelectCols, 1)
	agg, ok := ast.SelectStmts[0].SelectCols[0].ColExp.(*AggCall)
	require.True(t, ok)
	assert.Equal(t, coltype.AggCount, agg.Fn)
	assert.Equal(t, "rowCount", ast.SelectStmts[0].SelectCols[0].As)
	assert.Equal(t, FromSubquery, ast.SelectStmts[0].From.Kind)
}
