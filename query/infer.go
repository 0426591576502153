package query

import (
	"fmt"

	"relq/catalog"
	"relq/coltype"
	"relq/expr"
	"relq/internal/relerr"
	"relq/schema"
)

// InferSchema computes the output Schema of q against tables under dialect,
// dispatching on q's concrete type exactly as §4.2 specifies per operator.
// Every failure is one of the internal/relerr typed kinds; there is no
// partial result.
func InferSchema(dialect coltype.Dialect, tables catalog.Map, q Expr) (schema.Schema, error) {
	switch n := q.(type) {
	case *TableExpr:
		info, ok := tables.Lookup(n.TableName)
		if !ok {
			return schema.Schema{}, relerr.NewUnknownTable(n.TableName)
		}
		return info.Schema, nil

	case *ProjectExpr:
		in, err := InferSchema(dialect, tables, n.From)
		if err != nil {
			return schema.Schema{}, err
		}
		out, missing, ok := in.Project(n.Cols)
		if !ok {
			return schema.Schema{}, relerr.NewUnknownColumn(missing, "project")
		}
		return out, nil

	case *FilterExpr:
		return InferSchema(dialect, tables, n.From)

	case *SortExpr:
		return InferSchema(dialect, tables, n.From)

	case *ConcatExpr:
		left, err := InferSchema(dialect, tables, n.From)
		if err != nil {
			return schema.Schema{}, err
		}
		right, err := InferSchema(dialect, tables, n.Target)
		if err != nil {
			return schema.Schema{}, err
		}
		if !left.EqualByIDAndType(right) {
			return schema.Schema{}, relerr.NewSchemaMismatch("concat operands have different schemas")
		}
		return left, nil

	case *GroupByExpr:
		return inferGroupBy(dialect, tables, n)

	case *MapColumnsExpr:
		return inferMapColumns(dialect, tables, n)

	case *MapColumnsByIndexExpr:
		return inferMapColumnsByIndex(dialect, tables, n)

	case *ExtendExpr:
		return inferExtend(dialect, tables, n)

	case *JoinExpr:
		return inferJoin(dialect, tables, n)

	default:
		return schema.Schema{}, relerr.NewInvalidOperator(fmt.Sprintf("%T", q))
	}
}

func inferGroupBy(dialect coltype.Dialect, tables catalog.Map, n *GroupByExpr) (schema.Schema, error) {
	in, err := InferSchema(dialect, tables, n.From)
	if err != nil {
		return schema.Schema{}, err
	}

	out := schema.Schema{Columns: []string{}, Metadata: map[string]schema.ColumnMetadata{}}
	for _, c := range n.Cols {
		m, ok := in.Get(c)
		if !ok {
			return schema.Schema{}, relerr.NewUnknownColumn(c, "groupBy")
		}
		var okExt bool
		out, okExt = out.Extend(c, m)
		if !okExt {
			return schema.Schema{}, relerr.NewDuplicateColumn(c)
		}
	}
	for _, a := range n.Aggs {
		m, ok := in.Get(a.Col)
		if !ok {
			return schema.Schema{}, relerr.NewUnknownColumn(a.Col, "groupBy")
		}
		var okExt bool
		out, okExt = out.Extend(a.Col, m)
		if !okExt {
			return schema.Schema{}, relerr.NewDuplicateColumn(a.Col)
		}
	}
	return out, nil
}

func applyRemap(id string, m schema.ColumnMetadata, remap ColumnRemap) (string, schema.ColumnMetadata) {
	newID := id
	if remap.ID != nil {
		newID = *remap.ID
	}
	if remap.DisplayName != nil {
		m.DisplayName = *remap.DisplayName
	}
	if remap.Type != nil {
		m.Type = *remap.Type
	}
	return newID, m
}

func inferMapColumns(dialect coltype.Dialect, tables catalog.Map, n *MapColumnsExpr) (schema.Schema, error) {
	in, err := InferSchema(dialect, tables, n.From)
	if err != nil {
		return schema.Schema{}, err
	}
	out := schema.Schema{Columns: []string{}, Metadata: map[string]schema.ColumnMetadata{}}
	for _, id := range in.Columns {
		m, _ := in.Get(id)
		newID, newMeta := id, m
		if remap, ok := n.CMap[id]; ok {
			newID, newMeta = applyRemap(id, m, remap)
		}
		var okExt bool
		out, okExt = out.Extend(newID, newMeta)
		if !okExt {
			return schema.Schema{}, relerr.NewDuplicateColumn(newID)
		}
	}
	return out, nil
}

func inferMapColumnsByIndex(dialect coltype.Dialect, tables catalog.Map, n *MapColumnsByIndexExpr) (schema.Schema, error) {
	in, err := InferSchema(dialect, tables, n.From)
	if err != nil {
		return schema.Schema{}, err
	}
	out := schema.Schema{Columns: []string{}, Metadata: map[string]schema.ColumnMetadata{}}
	for i, id := range in.Columns {
		m, _ := in.Get(id)
		newID, newMeta := id, m
		if remap, ok := n.CMap[i]; ok {
			newID, newMeta = applyRemap(id, m, remap)
		}
		var okExt bool
		out, okExt = out.Extend(newID, newMeta)
		if !okExt {
			return schema.Schema{}, relerr.NewDuplicateColumn(newID)
		}
	}
	return out, nil
}

func inferExtend(dialect coltype.Dialect, tables catalog.Map, n *ExtendExpr) (schema.Schema, error) {
	in, err := InferSchema(dialect, tables, n.From)
	if err != nil {
		return schema.Schema{}, err
	}
	colType, err := InferColumnExpType(dialect, in, n.ColExp, n.Opts)
	if err != nil {
		return schema.Schema{}, err
	}
	displayName := n.ColID
	if n.Opts.DisplayName != nil {
		displayName = *n.Opts.DisplayName
	}
	out, ok := in.Extend(n.ColID, schema.ColumnMetadata{Type: colType, DisplayName: displayName})
	if !ok {
		return schema.Schema{}, relerr.NewDuplicateColumn(n.ColID)
	}
	return out, nil
}

// InferColumnExpType realizes §4.2's getOrInferColumnType: an explicit
// opts.Type always wins; otherwise dispatch on colExp's concrete form. It is
// exported so internal/sqlast's extend lowering can label its new
// SelectItem with the exact same type schema inference would compute.
func InferColumnExpType(dialect coltype.Dialect, inSchema schema.Schema, colExp expr.Node, opts ExtendOpts) (coltype.ColumnType, error) {
	if opts.Type != nil {
		return *opts.Type, nil
	}
	switch e := colExp.(type) {
	case *expr.ColRef:
		m, ok := inSchema.Get(e.Name)
		if !ok {
			return coltype.ColumnType{}, relerr.NewUnknownColumn(e.Name, "extend")
		}
		return m.Type, nil
	case *expr.AsString:
		return dialect.StringType(), nil
	case *expr.ConstVal:
		switch e.Value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return dialect.MustType(coltype.KindInteger), nil
		case float32, float64:
			return dialect.MustType(coltype.KindReal), nil
		case string:
			return dialect.MustType(coltype.KindString), nil
		case bool:
			return dialect.MustType(coltype.KindBoolean), nil
		default:
			return coltype.ColumnType{}, relerr.NewTypeInferenceFailed(fmt.Sprintf("ConstVal of unsupported kind %T", e.Value))
		}
	default:
		return coltype.ColumnType{}, relerr.NewTypeInferenceFailed(colExp.ExpType())
	}
}

func inferJoin(dialect coltype.Dialect, tables catalog.Map, n *JoinExpr) (schema.Schema, error) {
	if n.JoinType != LeftOuter {
		return schema.Schema{}, relerr.NewUnsupportedJoin(string(n.JoinType))
	}
	lhs, err := InferSchema(dialect, tables, n.Lhs)
	if err != nil {
		return schema.Schema{}, err
	}
	rhs, err := InferSchema(dialect, tables, n.Rhs)
	if err != nil {
		return schema.Schema{}, err
	}

	on := make(map[string]bool, len(n.On))
	for _, c := range n.On {
		on[c] = true
	}
	lhsCols := make(map[string]bool, len(lhs.Columns))
	for _, c := range lhs.Columns {
		lhsCols[c] = true
	}

	out := lhs.Clone()
	for _, c := range rhs.Columns {
		if on[c] || lhsCols[c] {
			continue
		}
		m, _ := rhs.Get(c)
		var ok bool
		out, ok = out.Extend(c, m)
		if !ok {
			return schema.Schema{}, relerr.NewDuplicateColumn(c)
		}
	}
	return out, nil
}
