package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/coltype"
	"relq/expr"
	"relq/query"
	"relq/schema"
)

func assertQueryEqual(t *testing.T, want, got query.Expr) {
	t.Helper()
	wb, err := MarshalQuery(want)
	require.NoError(t, err)
	gb, err := MarshalQuery(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wb), string(gb))
}

func TestQueryRoundTrip_SimpleTable(t *testing.T) {
	q := query.Table("bart").Build()
	data, err := MarshalQuery(q)
	require.NoError(t, err)
	got, err := UnmarshalQuery(data)
	require.NoError(t, err)
	assertQueryEqual(t, q, got)
}

func TestQueryRoundTrip_FilterGroupByExtendJoin(t *testing.T) {
	inner := query.Table("bart").
		Filter(expr.And().Eq(expr.Col("JobFamily"), expr.Const("Executive Management"))).
		Extend("isHigh", expr.Const(true), query.ExtendOpts{}).
		Build()
	q := query.From(inner).
		GroupBy([]string{"JobFamily"}, query.WithFn(coltype.AggSum, "TCOE")).
		Join(query.Table("bart"), query.LeftOuter, "JobFamily").
		Build()

	data, err := MarshalQuery(q)
	require.NoError(t, err)
	got, err := UnmarshalQuery(data)
	require.NoError(t, err)
	assertQueryEqual(t, q, got)
}

func TestQueryRoundTrip_MapColumnsAndSort(t *testing.T) {
	q := query.Table("bart").
		MapColumns(map[string]query.ColumnRemap{"Name": {ID: query.Str("fullName")}}).
		Sort(query.SortKey{Col: "fullName", Asc: false}).
		Build()
	data, err := MarshalQuery(q)
	require.NoError(t, err)
	got, err := UnmarshalQuery(data)
	require.NoError(t, err)
	assertQueryEqual(t, q, got)
}

func TestUnmarshalQuery_UnknownOperatorFails(t *testing.T) {
	_, err := UnmarshalQuery([]byte(`{"expType":"QueryExp","_rep":{"operator":"madeUp"}}`))
	assert.Error(t, err)
}

func TestUnmarshalNode_UnknownExpTypePassesThrough(t *testing.T) {
	q := query.Table("bart").
		Filter(&expr.FilterExp{Op: expr.BoolAnd}).
		Build()
	_, err := MarshalQuery(q)
	require.NoError(t, err)

	// Mutate a child's expType to something this package doesn't recognize
	// and confirm it survives the round-trip as a RawNode instead of erroring.
	mutated := []byte(`{"expType":"QueryExp","_rep":{"operator":"filter","fExp":{"expType":"FilterExp","op":"AND","children":[{"expType":"FutureNode","foo":"bar"}]},"from":{"operator":"table","tableName":"bart"}}}`)
	got, err := UnmarshalQuery(mutated)
	require.NoError(t, err)

	fe := got.(*query.FilterExpr)
	raw, ok := fe.FExp.Children[0].(*RawNode)
	require.True(t, ok)
	assert.Equal(t, "FutureNode", raw.RawExpType)
}

func TestQueryRequest_DefaultsOffsetLimitAndFillsRequestID(t *testing.T) {
	req := NewQueryRequest(query.Table("bart").Build(), true)
	assert.Equal(t, -1, req.Offset)
	assert.Equal(t, -1, req.Limit)
	assert.NotEmpty(t, req.RequestID)

	data, err := MarshalQueryRequest(req)
	require.NoError(t, err)
	got, err := UnmarshalQueryRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req.RequestID, got.RequestID)
	assert.Equal(t, -1, got.Offset)
	assert.Equal(t, -1, got.Limit)
}

func TestQueryRequest_MissingRequestIDIsFilledOnUnmarshal(t *testing.T) {
	got, err := UnmarshalQueryRequest([]byte(`{"query":{"expType":"QueryExp","_rep":{"operator":"table","tableName":"bart"}},"filterRowCount":false}`))
	require.NoError(t, err)
	assert.NotEmpty(t, got.RequestID)
}

func TestResultRoundTrip(t *testing.T) {
	sch, _ := schema.New(nil, nil).Extend("id", schema.ColumnMetadata{Type: coltype.ANSI.MustType(coltype.KindInteger), DisplayName: "id"})
	result := TableResult{
		Schema:  sch,
		RowData: [][]any{{float64(1)}, {float64(2)}},
	}
	data, err := MarshalResult(result)
	require.NoError(t, err)
	got, err := UnmarshalResult(coltype.ANSI, data)
	require.NoError(t, err)
	assert.Equal(t, result.Schema.Columns, got.Schema.Columns)
	assert.Equal(t, result.RowData, got.RowData)
}
