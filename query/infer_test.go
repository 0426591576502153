package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/catalog"
	"relq/coltype"
	"relq/expr"
	"relq/internal/relerr"
	"relq/schema"
)

func tables() catalog.Map {
	meta := map[string]schema.ColumnMetadata{
		"id":   {Type: coltype.ANSI.MustType(coltype.KindInteger), DisplayName: "id"},
		"name": {Type: coltype.ANSI.MustType(coltype.KindString), DisplayName: "name"},
		"age":  {Type: coltype.ANSI.MustType(coltype.KindInteger), DisplayName: "age"},
	}
	return catalog.Map{
		"people": catalog.TableInfo{Schema: schema.New([]string{"id", "name", "age"}, meta)},
	}
}

func TestInferSchema_Table(t *testing.T) {
	sch, err := InferSchema(coltype.ANSI, tables(), Table("people").Build())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, sch.Columns)
}

func TestInferSchema_UnknownTable(t *testing.T) {
	_, err := InferSchema(coltype.ANSI, tables(), Table("ghost").Build())
	var want *relerr.UnknownTableError
	assert.ErrorAs(t, err, &want)
}

func TestInferSchema_ProjectIdempotence(t *testing.T) {
	cols := []string{"name", "age"}
	once := Table("people").Project(cols...).Build()
	twice := Table("people").Project(cols...).Project(cols...).Build()

	s1, err := InferSchema(coltype.ANSI, tables(), once)
	require.NoError(t, err)
	s2, err := InferSchema(coltype.ANSI, tables(), twice)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestInferSchema_Project_UnknownColumn(t *testing.T) {
	_, err := InferSchema(coltype.ANSI, tables(), Table("people").Project("nope").Build())
	var want *relerr.UnknownColumnError
	assert.ErrorAs(t, err, &want)
}

func TestInferSchema_Distinct_MatchesSingleColumnProjection(t *testing.T) {
	distinct := Table("people").Distinct("age").Build()
	proj := Table("people").Project("age").Build()

	sd, err := InferSchema(coltype.ANSI, tables(), distinct)
	require.NoError(t, err)
	sp, err := InferSchema(coltype.ANSI, tables(), proj)
	require.NoError(t, err)
	assert.Equal(t, sp.Columns, sd.Columns)
}

func TestInferSchema_Concat_RequiresEqualSchema(t *testing.T) {
	a := Table("people").Project("name", "age").Build()
	b := Table("people").Project("age", "name").Build()
	ok := Table("people").Project("name", "age").Build()

	_, err := InferSchema(coltype.ANSI, tables(), From(a).Concat(From(b)).Build())
	var mismatch *relerr.SchemaMismatchError
	assert.ErrorAs(t, err, &mismatch)

	_, err = InferSchema(coltype.ANSI, tables(), From(a).Concat(From(ok)).Build())
	assert.NoError(t, err)
}

func TestInferSchema_Concat_Associativity(t *testing.T) {
	q1 := Table("people").Project("name").Build()
	q2 := Table("people").Project("name").Build()
	q3 := Table("people").Project("name").Build()

	left := From(From(q1).Concat(From(q2)).Build()).Concat(From(q3)).Build()
	right := From(q1).Concat(From(From(q2).Concat(From(q3)).Build())).Build()

	sl, err := InferSchema(coltype.ANSI, tables(), left)
	require.NoError(t, err)
	sr, err := InferSchema(coltype.ANSI, tables(), right)
	require.NoError(t, err)
	assert.Equal(t, sl, sr)
}

func TestInferSchema_GroupBy(t *testing.T) {
	q := Table("people").GroupBy([]string{"name"}, WithFn(coltype.AggSum, "age")).Build()
	sch, err := InferSchema(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, sch.Columns)
}

func TestInferSchema_MapColumns_Rename(t *testing.T) {
	q := Table("people").MapColumns(map[string]ColumnRemap{
		"name": {ID: Str("fullName")},
	}).Build()
	sch, err := InferSchema(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "fullName", "age"}, sch.Columns)
}

func TestInferSchema_MapColumnsByIndex(t *testing.T) {
	q := Table("people").MapColumnsByIndex(map[int]ColumnRemap{
		1: {ID: Str("fullName")},
	}).Build()
	sch, err := InferSchema(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "fullName", "age"}, sch.Columns)
}

func TestInferSchema_Extend_ConstVal(t *testing.T) {
	q := Table("people").Extend("isActive", expr.Const(true), ExtendOpts{}).Build()
	sch, err := InferSchema(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	m, ok := sch.Get("isActive")
	require.True(t, ok)
	assert.Equal(t, coltype.KindBoolean, m.Type.Kind)
}

func TestInferSchema_Extend_DuplicateColumn(t *testing.T) {
	_, err := InferSchema(coltype.ANSI, tables(), Table("people").Extend("name", expr.Const(1), ExtendOpts{}).Build())
	var want *relerr.DuplicateColumnError
	assert.ErrorAs(t, err, &want)
}

func TestInferSchema_Extend_AsString(t *testing.T) {
	q := Table("people").Extend("ageStr", expr.StringOf(expr.Col("age")), ExtendOpts{}).Build()
	sch, err := InferSchema(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	m, _ := sch.Get("ageStr")
	assert.Equal(t, coltype.KindString, m.Type.Kind)
}

func TestInferSchema_Extend_TypeInferenceFailed(t *testing.T) {
	_, err := InferSchema(coltype.ANSI, tables(), Table("people").Extend("bad", &expr.FilterExp{}, ExtendOpts{}).Build())
	var want *relerr.TypeInferenceFailedError
	assert.ErrorAs(t, err, &want)
}

func TestInferSchema_Join_UnsupportedType(t *testing.T) {
	q := Table("people").Join(Table("people"), JoinType("Inner"), "id").Build()
	_, err := InferSchema(coltype.ANSI, tables(), q)
	var want *relerr.UnsupportedJoinError
	assert.ErrorAs(t, err, &want)
}

func TestInferSchema_Join_LeftOuter_MergesNonOnColumns(t *testing.T) {
	lhs := Table("people").Project("id", "name").Build()
	rhs := Table("people").MapColumns(map[string]ColumnRemap{
		"id":  {},
		"age": {ID: Str("rhsAge")},
	}).Build()
	q := From(lhs).Join(From(rhs), LeftOuter, "id").Build()
	sch, err := InferSchema(coltype.ANSI, tables(), q)
	require.NoError(t, err)
	assert.Contains(t, sch.Columns, "rhsAge")
	assert.Equal(t, 1, countOccurrences(sch.Columns, "id"))
}

func countOccurrences(ss []string, v string) int {
	n := 0
	for _, s := range ss {
		if s == v {
			n++
		}
	}
	return n
}
