package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"relq/coltype"
)

func TestBuilder_ChainsFilterProjectSort(t *testing.T) {
	q := Table("people").
		Filter(nil).
		Project("name").
		Sort(SortKey{Col: "name", Asc: true}).
		Build()

	sort, ok := q.(*SortExpr)
	assert.True(t, ok)
	proj, ok := sort.From.(*ProjectExpr)
	assert.True(t, ok)
	_, ok = proj.From.(*FilterExpr)
	assert.True(t, ok)
}

func TestColTypeAndStr_Helpers(t *testing.T) {
	intType := coltype.ANSI.MustType(coltype.KindInteger)
	p := ColType(intType)
	assert.Equal(t, intType, *p)

	s := Str("x")
	assert.Equal(t, "x", *s)
}
