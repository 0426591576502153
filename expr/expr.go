// Package expr defines the shared expression node tree used both for filter
// predicates (FilterExp/BinRelExp/UnaryRelExp) and for extend column
// expressions (ColRef/ConstVal/AsString). Every node carries an ExpType
// discriminator so the wire reviver in package wire can reconstruct a typed
// tree from JSON without a parallel class hierarchy per use site.
package expr

// Node is implemented by every expression tree node: filter predicates,
// their operands, and extend column expressions all share this marker.
type Node interface {
	// ExpType returns the wire discriminator for this node ("ColRef",
	// "ConstVal", "BinRelExp", "UnaryRelExp", "FilterExp", "AsString").
	ExpType() string
	ExprNode()
}

// RelOp is the fixed vocabulary of relational/comparison operators a
// BinRelExp or UnaryRelExp may carry. The core never inspects these values;
// they are opaque payload forwarded to the downstream pretty-printer.
type RelOp string

// Comparison and predicate operators recognized by BinRelExp/UnaryRelExp.
const (
	OpEq        RelOp = "="
	OpNe        RelOp = "<>"
	OpLt        RelOp = "<"
	OpLe        RelOp = "<="
	OpGt        RelOp = ">"
	OpGe        RelOp = ">="
	OpLike      RelOp = "LIKE"
	OpBegins    RelOp = "BEGINS"
	OpEnds      RelOp = "ENDS"
	OpContains  RelOp = "CONTAINS"
	OpIsNull    RelOp = "IS NULL"
	OpIsNotNull RelOp = "IS NOT NULL"
)

// BoolOp distinguishes the two ways a FilterExp combines its children.
type BoolOp string

// BoolAnd and BoolOr are the two supported boolean combinators.
const (
	BoolAnd BoolOp = "AND"
	BoolOr  BoolOp = "OR"
)

// ColRef references a column by id. It doubles as both a filter operand and
// an extend column expression (ColumnExtendExp's ColRef form).
type ColRef struct {
	Name string
}

func (*ColRef) ExprNode()       {}
func (*ColRef) ExpType() string { return "ColRef" }

// Col is shorthand for &ColRef{Name: name}.
func Col(name string) *ColRef { return &ColRef{Name: name} }

// ConstVal wraps a scalar literal. It doubles as both a filter operand and
// an extend column expression (ColumnExtendExp's ConstVal form).
type ConstVal struct {
	Value any
}

func (*ConstVal) ExprNode()       {}
func (*ConstVal) ExpType() string { return "ConstVal" }

// Const is shorthand for &ConstVal{Value: v}.
func Const(v any) *ConstVal { return &ConstVal{Value: v} }

// AsString is an extend-only ColumnExtendExp form: render Inner as a string
// in the target dialect's string type.
type AsString struct {
	Inner Node
}

func (*AsString) ExprNode()       {}
func (*AsString) ExpType() string { return "AsString" }

// StringOf is shorthand for &AsString{Inner: n}.
func StringOf(n Node) *AsString { return &AsString{Inner: n} }

// BinRelExp is a binary relational expression: Lhs Op Rhs.
type BinRelExp struct {
	Op  RelOp
	Lhs Node
	Rhs Node
}

func (*BinRelExp) ExprNode()       {}
func (*BinRelExp) ExpType() string { return "BinRelExp" }

// UnaryRelExp is a unary relational expression: Op Arg (e.g. Arg IS NULL).
type UnaryRelExp struct {
	Op  RelOp
	Arg Node
}

func (*UnaryRelExp) ExprNode()       {}
func (*UnaryRelExp) ExpType() string { return "UnaryRelExp" }

// FilterExp combines Children under a single boolean operator. And()/Or()
// construct an empty FilterExp of the given op; the fluent Eq/Ne/.../IsNull
// methods append a child relation and return the same pointer so callers can
// chain, e.g. And().Eq(Col("a"), Const(1)).Gt(Col("b"), Const(0)).
type FilterExp struct {
	Op       BoolOp
	Children []Node
}

func (*FilterExp) ExprNode()       {}
func (*FilterExp) ExpType() string { return "FilterExp" }

// And starts a new conjunction. Pass optional initial children, or none and
// append via the fluent methods below.
func And(children ...Node) *FilterExp { return &FilterExp{Op: BoolAnd, Children: children} }

// Or starts a new disjunction.
func Or(children ...Node) *FilterExp { return &FilterExp{Op: BoolOr, Children: children} }

func (f *FilterExp) bin(op RelOp, lhs, rhs Node) *FilterExp {
	f.Children = append(f.Children, &BinRelExp{Op: op, Lhs: lhs, Rhs: rhs})
	return f
}

func (f *FilterExp) unary(op RelOp, arg Node) *FilterExp {
	f.Children = append(f.Children, &UnaryRelExp{Op: op, Arg: arg})
	return f
}

// Eq appends lhs = rhs.
func (f *FilterExp) Eq(lhs, rhs Node) *FilterExp { return f.bin(OpEq, lhs, rhs) }

// Ne appends lhs <> rhs.
func (f *FilterExp) Ne(lhs, rhs Node) *FilterExp { return f.bin(OpNe, lhs, rhs) }

// Lt appends lhs < rhs.
func (f *FilterExp) Lt(lhs, rhs Node) *FilterExp { return f.bin(OpLt, lhs, rhs) }

// Le appends lhs <= rhs.
func (f *FilterExp) Le(lhs, rhs Node) *FilterExp { return f.bin(OpLe, lhs, rhs) }

// Gt appends lhs > rhs.
func (f *FilterExp) Gt(lhs, rhs Node) *FilterExp { return f.bin(OpGt, lhs, rhs) }

// Ge appends lhs >= rhs.
func (f *FilterExp) Ge(lhs, rhs Node) *FilterExp { return f.bin(OpGe, lhs, rhs) }

// Like appends lhs LIKE rhs.
func (f *FilterExp) Like(lhs, rhs Node) *FilterExp { return f.bin(OpLike, lhs, rhs) }

// Begins appends lhs BEGINS rhs.
func (f *FilterExp) Begins(lhs, rhs Node) *FilterExp { return f.bin(OpBegins, lhs, rhs) }

// Ends appends lhs ENDS rhs.
func (f *FilterExp) Ends(lhs, rhs Node) *FilterExp { return f.bin(OpEnds, lhs, rhs) }

// Contains appends lhs CONTAINS rhs.
func (f *FilterExp) Contains(lhs, rhs Node) *FilterExp { return f.bin(OpContains, lhs, rhs) }

// IsNull appends arg IS NULL.
func (f *FilterExp) IsNull(arg Node) *FilterExp { return f.unary(OpIsNull, arg) }

// IsNotNull appends arg IS NOT NULL.
func (f *FilterExp) IsNotNull(arg Node) *FilterExp { return f.unary(OpIsNotNull, arg) }

// ColumnsOf returns every ColRef name reachable from n, used by callers that
// want to validate a filter's columns against a schema (the core itself
// does not enforce this — see query.FilterExpr's docs).
func ColumnsOf(n Node) []string {
	var out []string
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *ColRef:
			out = append(out, v.Name)
		case *ConstVal:
		case *AsString:
			walk(v.Inner)
		case *BinRelExp:
			walk(v.Lhs)
			walk(v.Rhs)
		case *UnaryRelExp:
			walk(v.Arg)
		case *FilterExp:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}
