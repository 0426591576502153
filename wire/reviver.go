package wire

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"relq/coltype"
	"relq/expr"
	"relq/internal/relerr"
	"relq/query"
)

// marshalNode renders an expr.Node into its tagged wire shape. ColumnType is
// never part of an expr.Node's wire shape — only ConstVal's raw value and
// ColRef's name travel, matching §4.5's discriminator list.
func marshalNode(n expr.Node) (map[string]any, error) {
	switch v := n.(type) {
	case *expr.ColRef:
		return map[string]any{"expType": expColRef, "name": v.Name}, nil
	case *expr.ConstVal:
		return map[string]any{"expType": expConstVal, "value": v.Value}, nil
	case *expr.AsString:
		inner, err := marshalNode(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{"expType": "AsString", "inner": inner}, nil
	case *expr.BinRelExp:
		lhs, err := marshalNode(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := marshalNode(v.Rhs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"expType": expBinRelExp, "op": string(v.Op), "lhs": lhs, "rhs": rhs}, nil
	case *expr.UnaryRelExp:
		arg, err := marshalNode(v.Arg)
		if err != nil {
			return nil, err
		}
		return map[string]any{"expType": expUnaryRelExp, "op": string(v.Op), "arg": arg}, nil
	case *expr.FilterExp:
		children := make([]map[string]any, 0, len(v.Children))
		for _, c := range v.Children {
			cm, err := marshalNode(c)
			if err != nil {
				return nil, err
			}
			children = append(children, cm)
		}
		return map[string]any{"expType": expFilterExp, "op": string(v.Op), "children": children}, nil
	case *RawNode:
		var rest map[string]any
		if len(v.Raw) > 0 {
			if err := json.Unmarshal(v.Raw, &rest); err != nil {
				return nil, err
			}
		}
		if rest == nil {
			rest = map[string]any{}
		}
		rest["expType"] = v.RawExpType
		return rest, nil
	default:
		return nil, fmt.Errorf("wire: unrecognized expr.Node %T", n)
	}
}

type taggedWire struct {
	ExpType string `json:"expType"`
}

// nodeRevivers is the expType -> constructor reviver registry (§9 DESIGN
// NOTES: "the JSON revival table is the language-neutral substitute for
// dynamic reconstruction; implementations should keep it a dictionary rather
// than a class hierarchy"). Entries call back into unmarshalNode for nested
// operands, so the registry is built lazily in init to avoid an
// initialization-cycle declaration order problem.
var nodeRevivers map[string]func(json.RawMessage) (expr.Node, error)

func init() {
	nodeRevivers = map[string]func(json.RawMessage) (expr.Node, error){
		expColRef: func(data json.RawMessage) (expr.Node, error) {
			var w struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
			return &expr.ColRef{Name: w.Name}, nil
		},
		expConstVal: func(data json.RawMessage) (expr.Node, error) {
			var w struct {
				Value any `json:"value"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
			return &expr.ConstVal{Value: w.Value}, nil
		},
		"AsString": func(data json.RawMessage) (expr.Node, error) {
			var w struct {
				Inner json.RawMessage `json:"inner"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
			inner, err := unmarshalNode(w.Inner)
			if err != nil {
				return nil, err
			}
			return &expr.AsString{Inner: inner}, nil
		},
		expBinRelExp: func(data json.RawMessage) (expr.Node, error) {
			var w struct {
				Op  string          `json:"op"`
				Lhs json.RawMessage `json:"lhs"`
				Rhs json.RawMessage `json:"rhs"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
			lhs, err := unmarshalNode(w.Lhs)
			if err != nil {
				return nil, err
			}
			rhs, err := unmarshalNode(w.Rhs)
			if err != nil {
				return nil, err
			}
			return &expr.BinRelExp{Op: expr.RelOp(w.Op), Lhs: lhs, Rhs: rhs}, nil
		},
		expUnaryRelExp: func(data json.RawMessage) (expr.Node, error) {
			var w struct {
				Op  string          `json:"op"`
				Arg json.RawMessage `json:"arg"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
			arg, err := unmarshalNode(w.Arg)
			if err != nil {
				return nil, err
			}
			return &expr.UnaryRelExp{Op: expr.RelOp(w.Op), Arg: arg}, nil
		},
		expFilterExp: func(data json.RawMessage) (expr.Node, error) {
			var w struct {
				Op       string            `json:"op"`
				Children []json.RawMessage `json:"children"`
			}
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
			children := make([]expr.Node, 0, len(w.Children))
			for _, c := range w.Children {
				cn, err := unmarshalNode(c)
				if err != nil {
					return nil, err
				}
				children = append(children, cn)
			}
			return &expr.FilterExp{Op: expr.BoolOp(w.Op), Children: children}, nil
		},
	}
}

// unmarshalNode reconstitutes an expr.Node from its tagged JSON shape via the
// nodeRevivers registry (§4.5/§9). An unrecognized expType is logged and
// passed through as *RawNode rather than failing the whole deserialization.
func unmarshalNode(data json.RawMessage) (expr.Node, error) {
	var tag taggedWire
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	revive, ok := nodeRevivers[tag.ExpType]
	if !ok {
		slog.Warn("wire: unrecognized expr node expType, passing through raw", "expType", tag.ExpType)
		return &RawNode{RawExpType: tag.ExpType, Raw: data}, nil
	}
	return revive(data)
}

func marshalColumnType(t coltype.ColumnType) map[string]any {
	return map[string]any{"sqlTypeName": t.SQLTypeName, "kind": string(t.Kind)}
}

func unmarshalColumnType(dialect coltype.Dialect, data json.RawMessage) *coltype.ColumnType {
	if len(data) == 0 {
		return nil
	}
	var w struct {
		SQLTypeName string `json:"sqlTypeName"`
		Kind        string `json:"kind"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil
	}
	if ct, ok := dialect.Type(coltype.Kind(w.Kind)); ok {
		return &ct
	}
	ct := coltype.ColumnType{SQLTypeName: w.SQLTypeName, Kind: coltype.Kind(w.Kind)}
	return &ct
}

// marshalQueryExpr renders a query.Expr as QueryRep's wire shape: one object
// per operator tag, "from"/"lhs"/"rhs"/"target" holding nested QueryRep
// objects and filter/extend expressions nested via marshalNode.
func marshalQueryExpr(q query.Expr) (map[string]any, error) {
	switch n := q.(type) {
	case *query.TableExpr:
		return map[string]any{"operator": "table", "tableName": n.TableName}, nil

	case *query.ProjectExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		return map[string]any{"operator": "project", "cols": n.Cols, "from": from}, nil

	case *query.FilterExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		fexp, err := marshalNode(n.FExp)
		if err != nil {
			return nil, err
		}
		return map[string]any{"operator": "filter", "fExp": fexp, "from": from}, nil

	case *query.GroupByExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		aggs := make([]map[string]any, 0, len(n.Aggs))
		for _, a := range n.Aggs {
			aggs = append(aggs, map[string]any{"fn": string(a.Fn), "col": a.Col})
		}
		return map[string]any{"operator": "groupBy", "cols": n.Cols, "aggs": aggs, "from": from}, nil

	case *query.MapColumnsExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		cmap := map[string]any{}
		for k, v := range n.CMap {
			cmap[k] = marshalColumnRemap(v)
		}
		return map[string]any{"operator": "mapColumns", "cmap": cmap, "from": from}, nil

	case *query.MapColumnsByIndexExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		cmap := map[string]any{}
		for k, v := range n.CMap {
			cmap[fmt.Sprint(k)] = marshalColumnRemap(v)
		}
		return map[string]any{"operator": "mapColumnsByIndex", "cmap": cmap, "from": from}, nil

	case *query.ConcatExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		target, err := marshalQueryExpr(n.Target)
		if err != nil {
			return nil, err
		}
		return map[string]any{"operator": "concat", "from": from, "target": target}, nil

	case *query.SortExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		keys := make([]map[string]any, 0, len(n.Keys))
		for _, k := range n.Keys {
			keys = append(keys, map[string]any{"col": k.Col, "asc": k.Asc})
		}
		return map[string]any{"operator": "sort", "keys": keys, "from": from}, nil

	case *query.ExtendExpr:
		from, err := marshalQueryExpr(n.From)
		if err != nil {
			return nil, err
		}
		colExp, err := marshalNode(n.ColExp)
		if err != nil {
			return nil, err
		}
		opts := map[string]any{}
		if n.Opts.Type != nil {
			opts["type"] = marshalColumnType(*n.Opts.Type)
		}
		if n.Opts.DisplayName != nil {
			opts["displayName"] = *n.Opts.DisplayName
		}
		return map[string]any{
			"operator": "extend",
			"colId":    n.ColID,
			"colExp":   colExp,
			"opts":     opts,
			"from":     from,
		}, nil

	case *query.JoinExpr:
		lhs, err := marshalQueryExpr(n.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := marshalQueryExpr(n.Rhs)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"operator": "join",
			"lhs":      lhs,
			"rhs":      rhs,
			"on":       n.On,
			"joinType": string(n.JoinType),
		}, nil

	default:
		return nil, fmt.Errorf("wire: unrecognized query.Expr %T", q)
	}
}

func marshalColumnRemap(r query.ColumnRemap) map[string]any {
	m := map[string]any{}
	if r.ID != nil {
		m["id"] = *r.ID
	}
	if r.DisplayName != nil {
		m["displayName"] = *r.DisplayName
	}
	if r.Type != nil {
		m["type"] = marshalColumnType(*r.Type)
	}
	return m
}

// reviveDialect is the dialect used at unmarshal time to resolve any
// embedded ColumnType by kind; it need not match the dialect the query was
// originally built under, since ColumnType carries no dialect identity of
// its own.
var reviveDialect = coltype.ANSI

func unmarshalColumnRemap(data json.RawMessage) query.ColumnRemap {
	var w struct {
		ID          *string         `json:"id"`
		DisplayName *string         `json:"displayName"`
		Type        json.RawMessage `json:"type"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &w)
	}
	return query.ColumnRemap{
		ID:          w.ID,
		DisplayName: w.DisplayName,
		Type:        unmarshalColumnType(reviveDialect, w.Type),
	}
}

// unmarshalQueryExpr reconstitutes a query.Expr from QueryRep's wire shape.
func unmarshalQueryExpr(data json.RawMessage) (query.Expr, error) {
	var tag struct {
		Operator string `json:"operator"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	switch tag.Operator {
	case "table":
		var w struct {
			TableName string `json:"tableName"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return &query.TableExpr{TableName: w.TableName}, nil

	case "project":
		var w struct {
			Cols []string        `json:"cols"`
			From json.RawMessage `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		return &query.ProjectExpr{Cols: w.Cols, From: from}, nil

	case "filter":
		var w struct {
			FExp json.RawMessage `json:"fExp"`
			From json.RawMessage `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		fexpNode, err := unmarshalNode(w.FExp)
		if err != nil {
			return nil, err
		}
		fexp, ok := fexpNode.(*expr.FilterExp)
		if !ok {
			return nil, fmt.Errorf("wire: filter fExp is not a FilterExp (%T)", fexpNode)
		}
		return &query.FilterExpr{FExp: fexp, From: from}, nil

	case "groupBy":
		var w struct {
			Cols []string          `json:"cols"`
			Aggs []json.RawMessage `json:"aggs"`
			From json.RawMessage   `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		aggs := make([]query.Agg, 0, len(w.Aggs))
		for _, a := range w.Aggs {
			var aw struct {
				Fn  string `json:"fn"`
				Col string `json:"col"`
			}
			if err := json.Unmarshal(a, &aw); err != nil {
				return nil, err
			}
			aggs = append(aggs, query.Agg{Fn: coltype.AggFn(aw.Fn), Col: aw.Col})
		}
		return &query.GroupByExpr{Cols: w.Cols, Aggs: aggs, From: from}, nil

	case "mapColumns":
		var w struct {
			CMap map[string]json.RawMessage `json:"cmap"`
			From json.RawMessage            `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		cmap := make(map[string]query.ColumnRemap, len(w.CMap))
		for k, v := range w.CMap {
			cmap[k] = unmarshalColumnRemap(v)
		}
		return &query.MapColumnsExpr{CMap: cmap, From: from}, nil

	case "mapColumnsByIndex":
		var w struct {
			CMap map[string]json.RawMessage `json:"cmap"`
			From json.RawMessage            `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		cmap := make(map[int]query.ColumnRemap, len(w.CMap))
		for k, v := range w.CMap {
			var idx int
			if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
				return nil, fmt.Errorf("wire: mapColumnsByIndex key %q is not an integer", k)
			}
			cmap[idx] = unmarshalColumnRemap(v)
		}
		return &query.MapColumnsByIndexExpr{CMap: cmap, From: from}, nil

	case "concat":
		var w struct {
			From   json.RawMessage `json:"from"`
			Target json.RawMessage `json:"target"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		target, err := unmarshalQueryExpr(w.Target)
		if err != nil {
			return nil, err
		}
		return &query.ConcatExpr{From: from, Target: target}, nil

	case "sort":
		var w struct {
			Keys []json.RawMessage `json:"keys"`
			From json.RawMessage   `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		keys := make([]query.SortKey, 0, len(w.Keys))
		for _, k := range w.Keys {
			var kw struct {
				Col string `json:"col"`
				Asc bool   `json:"asc"`
			}
			if err := json.Unmarshal(k, &kw); err != nil {
				return nil, err
			}
			keys = append(keys, query.SortKey{Col: kw.Col, Asc: kw.Asc})
		}
		return &query.SortExpr{Keys: keys, From: from}, nil

	case "extend":
		var w struct {
			ColID  string          `json:"colId"`
			ColExp json.RawMessage `json:"colExp"`
			Opts   struct {
				Type        json.RawMessage `json:"type"`
				DisplayName *string         `json:"displayName"`
			} `json:"opts"`
			From json.RawMessage `json:"from"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		from, err := unmarshalQueryExpr(w.From)
		if err != nil {
			return nil, err
		}
		colExp, err := unmarshalNode(w.ColExp)
		if err != nil {
			return nil, err
		}
		return &query.ExtendExpr{
			ColID:  w.ColID,
			ColExp: colExp,
			Opts: query.ExtendOpts{
				Type:        unmarshalColumnType(reviveDialect, w.Opts.Type),
				DisplayName: w.Opts.DisplayName,
			},
			From: from,
		}, nil

	case "join":
		var w struct {
			Lhs      json.RawMessage `json:"lhs"`
			Rhs      json.RawMessage `json:"rhs"`
			On       []string        `json:"on"`
			JoinType string          `json:"joinType"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		lhs, err := unmarshalQueryExpr(w.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := unmarshalQueryExpr(w.Rhs)
		if err != nil {
			return nil, err
		}
		return &query.JoinExpr{Lhs: lhs, Rhs: rhs, On: w.On, JoinType: query.JoinType(w.JoinType)}, nil

	default:
		return nil, relerr.NewInvalidOperator(tag.Operator)
	}
}
