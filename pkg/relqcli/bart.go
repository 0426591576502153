package relqcli

import (
	"fmt"

	"relq/catalog"
	"relq/coltype"
	"relq/schema"
)

// dialectByName resolves the --dialect flag to a coltype.Dialect (§9:
// "a value-object Dialect is injected into every compilation call").
func dialectByName(name string) (coltype.Dialect, error) {
	switch name {
	case "ansi":
		return coltype.ANSI, nil
	case "sqlite":
		return coltype.SQLite, nil
	case "duckdb":
		return coltype.DuckDB, nil
	default:
		return coltype.Dialect{}, fmt.Errorf("unknown dialect %q (want ansi, sqlite, or duckdb)", name)
	}
}

// bartColumns is the 14-column BART compensation schema from §8's testable
// scenarios: Name, Title are strings; Base..TCOE are integer compensation
// figures; Source, JobFamily, Union are strings.
var bartColumns = []string{
	"Name", "Title", "Base", "OT", "Other", "MDV", "ER", "EE", "DC", "Misc", "TCOE", "Source", "JobFamily", "Union",
}

var bartStringCols = map[string]bool{
	"Name": true, "Title": true, "Source": true, "JobFamily": true, "Union": true,
}

// bartCatalog builds the single-table catalog §8's scenarios run against.
func bartCatalog(dialect coltype.Dialect) catalog.Map {
	meta := map[string]schema.ColumnMetadata{}
	for _, c := range bartColumns {
		t := dialect.MustType(coltype.KindInteger)
		if bartStringCols[c] {
			t = dialect.MustType(coltype.KindString)
		}
		meta[c] = schema.ColumnMetadata{Type: t, DisplayName: c}
	}
	return catalog.Map{
		"bart": catalog.TableInfo{Schema: schema.New(bartColumns, meta)},
	}
}
