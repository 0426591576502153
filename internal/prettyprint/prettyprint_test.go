package prettyprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/catalog"
	"relq/coltype"
	"relq/expr"
	"relq/internal/sqlast"
	"relq/query"
	"relq/schema"
)

func tables() catalog.Map {
	meta := map[string]schema.ColumnMetadata{
		"id":   {Type: coltype.ANSI.MustType(coltype.KindInteger)},
		"name": {Type: coltype.ANSI.MustType(coltype.KindString)},
	}
	return catalog.Map{
		"people": catalog.TableInfo{Schema: schema.New([]string{"id", "name"}, meta)},
	}
}

func TestPrint_SimpleTableSelect(t *testing.T) {
	ast, err := sqlast.Lower(coltype.ANSI, tables(), query.Table("people").Build())
	require.NoError(t, err)
	sql := Print(coltype.ANSI, ast, -1, -1)
	assert.Equal(t, `SELECT "id", "name" FROM "people"`, sql)
}

func TestPrint_FilterWithEscapedLiteral(t *testing.T) {
	q := query.Table("people").Filter(expr.And().Eq(expr.Col("name"), expr.Const("O'Brien"))).Build()
	ast, err := sqlast.Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	sql := Print(coltype.ANSI, ast, -1, -1)
	assert.Contains(t, sql, `WHERE "name" = 'O''Brien'`)
}

func TestPrint_OffsetAndLimitSuffix(t *testing.T) {
	ast, err := sqlast.Lower(coltype.ANSI, tables(), query.Table("people").Build())
	require.NoError(t, err)
	sql := Print(coltype.ANSI, ast, 10, 5)
	assert.Contains(t, sql, "OFFSET 10")
	assert.Contains(t, sql, "LIMIT 5")
}

func TestPrint_ConcatJoinsWithUnionAll(t *testing.T) {
	a := query.Table("people").Project("name").Build()
	b := query.Table("people").Project("name").Build()
	ast, err := sqlast.Lower(coltype.ANSI, tables(), query.From(a).Concat(query.From(b)).Build())
	require.NoError(t, err)
	sql := Print(coltype.ANSI, ast, -1, -1)
	assert.Contains(t, sql, "UNION ALL")
}

func TestPrint_GroupByAggregates(t *testing.T) {
	q := query.Table("people").GroupBy([]string{"name"}, query.WithFn(coltype.AggCount, "id")).Build()
	ast, err := sqlast.Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	sql := Print(coltype.ANSI, ast, -1, -1)
	assert.Contains(t, sql, "COUNT(")
	assert.Contains(t, sql, `GROUP BY "name"`)
}

func TestPrint_JoinRendersLeftJoinWithOn(t *testing.T) {
	q := query.Table("people").Join(query.Table("people"), query.LeftOuter, "id").Build()
	ast, err := sqlast.Lower(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	sql := Print(coltype.ANSI, ast, -1, -1)
	assert.Contains(t, sql, "LEFT JOIN")
	assert.Contains(t, sql, `ON lhs."id" = rhs."id"`)
}
