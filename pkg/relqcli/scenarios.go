package relqcli

import (
	"relq/expr"
	"relq/query"
)

// scenario is one named §8 end-to-end example, built as a query.Expr over
// the bart catalog.
type scenario struct {
	name  string
	build func() query.Expr
}

var scenarios = []scenario{
	{
		name:  "table",
		build: func() query.Expr { return query.Table("bart").Build() },
	},
	{
		name: "project",
		build: func() query.Expr {
			return query.Table("bart").
				Project("JobFamily", "Title", "Union", "Name", "Base", "TCOE").
				Build()
		},
	},
	{
		name: "groupByJobTitle",
		build: func() query.Expr {
			return query.Table("bart").
				GroupBy([]string{"JobFamily", "Title"}, query.Bare("TCOE")).
				Build()
		},
	},
	{
		name: "groupByJobFamily",
		build: func() query.Expr {
			return query.Table("bart").
				Project("JobFamily", "Title", "Union", "Name", "Base", "TCOE").
				GroupBy([]string{"JobFamily"}, query.Bare("Title"), query.Bare("Union"), query.Bare("Name"), query.Bare("Base"), query.Bare("TCOE")).
				Build()
		},
	},
	{
		name: "filterExecutive",
		build: func() query.Expr {
			return query.Table("bart").
				Filter(expr.And().Eq(expr.Col("JobFamily"), expr.Const("Executive Management"))).
				Build()
		},
	},
	{
		name: "filterQuotedTitle",
		build: func() query.Expr {
			return query.Table("bart").
				Filter(expr.And().Eq(expr.Col("Title"), expr.Const("Department Manager Gov't & Comm Rel"))).
				Build()
		},
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	return names
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}
