package relqcli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relq/coltype"
	"relq/internal/sqlast"
	"relq/query"
)

func TestScenarios_AllInferSchemaAndLowerCleanly(t *testing.T) {
	tables := bartCatalog(coltype.ANSI)
	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			q := s.build()
			_, err := query.InferSchema(coltype.ANSI, tables, q)
			require.NoError(t, err)
			_, err = sqlast.Lower(coltype.ANSI, tables, q)
			require.NoError(t, err)
		})
	}
}

func TestProjectScenario_MatchesSpecColumnOrder(t *testing.T) {
	s, ok := findScenario("project")
	require.True(t, ok)
	sch, err := query.InferSchema(coltype.ANSI, bartCatalog(coltype.ANSI), s.build())
	require.NoError(t, err)
	assert.Equal(t, []string{"JobFamily", "Title", "Union", "Name", "Base", "TCOE"}, sch.Columns)
}

func TestDialectByName_RejectsUnknown(t *testing.T) {
	_, err := dialectByName("postgres")
	assert.Error(t, err)
}
