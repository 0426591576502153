package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"relq/schema"
)

func TestLookup(t *testing.T) {
	m := Map{"t": TableInfo{Schema: schema.New([]string{"a"}, map[string]schema.ColumnMetadata{"a": {}})}}

	_, ok := m.Lookup("t")
	assert.True(t, ok)

	_, ok = m.Lookup("ghost")
	assert.False(t, ok)
}
