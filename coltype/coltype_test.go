package coltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestANSI_QuoteCol(t *testing.T) {
	assert.Equal(t, `"col"`, ANSI.QuoteCol("col"))
	assert.Equal(t, `"weird""col"`, ANSI.QuoteCol(`weird"col`))
}

func TestANSI_EscapeString(t *testing.T) {
	assert.Equal(t, `it''s`, ANSI.EscapeString(`it's`))
	assert.Equal(t, `plain`, ANSI.EscapeString(`plain`))
}

func TestDialect_DefaultAggFn(t *testing.T) {
	assert.Equal(t, AggUniq, ANSI.MustType(KindString).DefaultAggFn)
	assert.Equal(t, AggSum, ANSI.MustType(KindInteger).DefaultAggFn)
	assert.Equal(t, AggSum, ANSI.MustType(KindReal).DefaultAggFn)
	assert.Equal(t, AggNull, ANSI.MustType(KindBoolean).DefaultAggFn)
}

func TestDuckDB_HasBlobExtra(t *testing.T) {
	bt, ok := DuckDB.Type("blob")
	require.True(t, ok)
	assert.Equal(t, "BLOB", bt.SQLTypeName)

	_, ok = ANSI.Type("blob")
	assert.False(t, ok)
}

func TestMustType_PanicsOnUnregisteredKind(t *testing.T) {
	assert.Panics(t, func() {
		ANSI.MustType("nope")
	})
}
