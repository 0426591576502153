// Package prettyprint is a reference SQL renderer for the AST emitted by
// internal/sqlast. Per spec.md §1/§6 the real pretty-printer is a
// downstream module whose exact textual output is not normative; this one
// exists only so internal/sqlast's lowering is exercisable by tests and the
// demo CLI (cmd/relq) without a real database. Output is flat (no
// indentation); identifier quoting and string-literal escaping go through
// the injected dialect rather than any hardcoded quoting rule.
package prettyprint

import (
	"fmt"
	"strconv"
	"strings"

	"relq/coltype"
	"relq/expr"
	"relq/internal/sqlast"
)

// Print renders ast as a single SQL string. offset/limit follow §6's
// contract: -1 means "none"; the printer owns their suffixing.
func Print(dialect coltype.Dialect, ast *sqlast.QueryAST, offset, limit int) string {
	p := &printer{dialect: dialect}
	p.printQuery(ast)
	out := strings.TrimSpace(p.buf.String())
	if offset >= 0 {
		out += fmt.Sprintf(" OFFSET %d", offset)
	}
	if limit >= 0 {
		out += fmt.Sprintf(" LIMIT %d", limit)
	}
	return out
}

type printer struct {
	dialect coltype.Dialect
	buf     strings.Builder
}

func (p *printer) write(s string) { p.buf.WriteString(s) }

func (p *printer) commaSep(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			p.write(", ")
		}
		fn(i)
	}
}

func (p *printer) printQuery(q *sqlast.QueryAST) {
	p.commaSepStmts(q.SelectStmts)
}

func (p *printer) commaSepStmts(stmts []*sqlast.SelectAST) {
	for i, s := range stmts {
		if i > 0 {
			p.write(" UNION ALL ")
		}
		p.printSelect(s)
	}
}

func (p *printer) printSelect(s *sqlast.SelectAST) {
	p.write("SELECT ")
	p.commaSep(len(s.SelectCols), func(i int) {
		p.printSelectItem(s.SelectCols[i])
	})
	p.write(" FROM ")
	p.printFrom(s.From, s.On)
	if s.Where != nil {
		p.write(" WHERE ")
		p.printFilter(s.Where)
	}
	if len(s.GroupBy) > 0 {
		p.write(" GROUP BY ")
		p.commaSep(len(s.GroupBy), func(i int) {
			p.write(p.dialect.QuoteCol(s.GroupBy[i]))
		})
	}
	if len(s.OrderBy) > 0 {
		p.write(" ORDER BY ")
		p.commaSep(len(s.OrderBy), func(i int) {
			ob := s.OrderBy[i]
			p.write(p.dialect.QuoteCol(ob.Col))
			if !ob.Asc {
				p.write(" DESC")
			}
		})
	}
}

func (p *printer) printSelectItem(item sqlast.SelectItem) {
	p.printColExp(item.ColExp)
	if item.As != "" {
		p.write(" AS ")
		p.write(p.dialect.QuoteCol(item.As))
	}
}

func (p *printer) printColExp(ce sqlast.ColExp) {
	switch v := ce.(type) {
	case *expr.ColRef:
		p.write(p.dialect.QuoteCol(v.Name))
	case *expr.ConstVal:
		p.write(p.renderConst(v.Value))
	case *expr.AsString:
		p.write("CAST(")
		p.printColExp(v.Inner)
		p.write(" AS " + p.dialect.StringType().SQLTypeName + ")")
	case *sqlast.AggCall:
		arg := "*"
		if v.Arg != "*" {
			arg = p.dialect.QuoteCol(v.Arg)
		}
		p.write(strings.ToUpper(string(v.Fn)) + "(" + arg + ")")
	default:
		p.write(fmt.Sprintf("/* unsupported colExp %T */", ce))
	}
}

func (p *printer) renderConst(v any) string {
	switch t := v.(type) {
	case string:
		return "'" + p.dialect.EscapeString(t) + "'"
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case nil:
		return "NULL"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	case float32, float64:
		return strconv.FormatFloat(toFloat64(t), 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func toFloat64(v any) float64 {
	switch t := v.(type) {
	case float32:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}

func (p *printer) printFrom(f sqlast.FromRef, on []string) {
	switch f.Kind {
	case sqlast.FromTable:
		p.write(p.dialect.QuoteCol(f.TableName))
	case sqlast.FromSubquery:
		p.write("(")
		p.printQuery(f.Query)
		p.write(")")
	case sqlast.FromJoin:
		p.write("(")
		p.printQuery(f.Lhs)
		p.write(") AS lhs ")
		switch f.JoinType {
		case "LeftOuter":
			p.write("LEFT JOIN ")
		default:
			p.write(strings.ToUpper(f.JoinType) + " JOIN ")
		}
		p.write("(")
		p.printQuery(f.Rhs)
		p.write(") AS rhs")
		if len(on) > 0 {
			p.write(" ON ")
			p.commaSep(len(on), func(i int) {
				q := p.dialect.QuoteCol(on[i])
				p.write("lhs." + q + " = rhs." + q)
			})
		}
	}
}

func (p *printer) printFilter(n *expr.FilterExp) {
	joiner := " AND "
	if n.Op == expr.BoolOr {
		joiner = " OR "
	}
	for i, c := range n.Children {
		if i > 0 {
			p.write(joiner)
		}
		p.printFilterChild(c)
	}
}

func (p *printer) printFilterChild(n expr.Node) {
	switch v := n.(type) {
	case *expr.BinRelExp:
		p.printOperand(v.Lhs)
		p.write(" " + string(v.Op) + " ")
		p.printOperand(v.Rhs)
	case *expr.UnaryRelExp:
		p.printOperand(v.Arg)
		p.write(" " + string(v.Op))
	case *expr.FilterExp:
		p.write("(")
		p.printFilter(v)
		p.write(")")
	default:
		p.write(fmt.Sprintf("/* unsupported filter node %T */", n))
	}
}

func (p *printer) printOperand(n expr.Node) {
	switch v := n.(type) {
	case *expr.ColRef:
		p.write(p.dialect.QuoteCol(v.Name))
	case *expr.ConstVal:
		p.write(p.renderConst(v.Value))
	default:
		p.write(fmt.Sprintf("/* unsupported operand %T */", n))
	}
}
