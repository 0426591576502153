// Package wire implements the JSON wire form of §4.5/§6: queries and
// results round-trip through a reviver keyed on a per-node "expType"
// discriminator. Uses encoding/json directly rather than a schema/codegen
// layer, since the wire shapes are small and the discriminator dispatch
// needs full control over per-node unmarshaling anyway.
package wire

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"relq/coltype"
	"relq/expr"
	"relq/query"
	"relq/schema"
)

// Recognized expType discriminators (§4.5).
const (
	expColRef      = "ColRef"
	expConstVal    = "ConstVal"
	expBinRelExp   = "BinRelExp"
	expUnaryRelExp = "UnaryRelExp"
	expFilterExp   = "FilterExp"
	expQueryExp    = "QueryExp"
)

// RawNode carries an expType this package doesn't recognize through a
// round-trip unchanged, per §4.5: "an unknown expType is logged and passed
// through."
type RawNode struct {
	RawExpType string
	Raw        json.RawMessage
}

func (r *RawNode) ExpType() string { return r.RawExpType }
func (r *RawNode) ExprNode()       {}

var _ expr.Node = (*RawNode)(nil)

// MarshalQuery serializes q as the §6 `{ expType: "QueryExp", _rep: QueryRep }`
// envelope.
func MarshalQuery(q query.Expr) ([]byte, error) {
	rep, err := marshalQueryExpr(q)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"expType": expQueryExp,
		"_rep":    rep,
	})
}

// UnmarshalQuery reconstitutes a query.Expr from the §6 wire envelope.
func UnmarshalQuery(data []byte) (query.Expr, error) {
	var env struct {
		ExpType string          `json:"expType"`
		Rep     json.RawMessage `json:"_rep"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.ExpType != expQueryExp {
		slog.Warn("wire: unrecognized query envelope expType, passing through raw", "expType", env.ExpType)
	}
	return unmarshalQueryExpr(env.Rep)
}

// QueryRequest is §6's `{ query, filterRowCount, offset?, limit? }`. Offset
// and limit default to -1 ("none") per §6; RequestID is populated by
// NewQueryRequest for correlation in logs.
type QueryRequest struct {
	Query          query.Expr
	FilterRowCount bool
	Offset         int
	Limit          int
	RequestID      string
}

// NewQueryRequest builds a QueryRequest with offset/limit defaulted to -1
// and a fresh request id.
func NewQueryRequest(q query.Expr, filterRowCount bool) QueryRequest {
	return QueryRequest{
		Query:          q,
		FilterRowCount: filterRowCount,
		Offset:         -1,
		Limit:          -1,
		RequestID:      newRequestID(),
	}
}

type queryRequestWire struct {
	Query          json.RawMessage `json:"query"`
	FilterRowCount bool            `json:"filterRowCount"`
	Offset         *int            `json:"offset,omitempty"`
	Limit          *int            `json:"limit,omitempty"`
	RequestID      string          `json:"requestId,omitempty"`
}

// MarshalQueryRequest serializes a QueryRequest to its wire form.
func MarshalQueryRequest(r QueryRequest) ([]byte, error) {
	qBytes, err := MarshalQuery(r.Query)
	if err != nil {
		return nil, err
	}
	w := queryRequestWire{
		Query:          qBytes,
		FilterRowCount: r.FilterRowCount,
		RequestID:      r.RequestID,
	}
	if r.Offset != -1 {
		w.Offset = &r.Offset
	}
	if r.Limit != -1 {
		w.Limit = &r.Limit
	}
	return json.Marshal(w)
}

// UnmarshalQueryRequest reconstitutes a QueryRequest, filling a missing
// RequestID so every in-process request is still correlatable.
func UnmarshalQueryRequest(data []byte) (QueryRequest, error) {
	var w queryRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return QueryRequest{}, err
	}
	q, err := UnmarshalQuery(w.Query)
	if err != nil {
		return QueryRequest{}, err
	}
	r := QueryRequest{
		Query:          q,
		FilterRowCount: w.FilterRowCount,
		Offset:         -1,
		Limit:          -1,
		RequestID:      w.RequestID,
	}
	if w.Offset != nil {
		r.Offset = *w.Offset
	}
	if w.Limit != nil {
		r.Limit = *w.Limit
	}
	if r.RequestID == "" {
		r.RequestID = newRequestID()
	}
	return r, nil
}

// newRequestID generates a UUIDv7 string, chosen over v4 so request ids
// sort roughly by creation time in logs.
func newRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// TableResult is §6's `{ schema, rowData }` table result payload.
type TableResult struct {
	Schema  schema.Schema
	RowData [][]any
}

type schemaWire struct {
	Columns        []string                          `json:"columns"`
	ColumnMetadata map[string]columnMetadataWireEntry `json:"columnMetadata"`
}

type columnMetadataWireEntry struct {
	DisplayName string `json:"displayName"`
	SQLTypeName string `json:"sqlTypeName"`
	Kind        string `json:"kind"`
}

// MarshalResult serializes a TableResult, writing its schema as the
// { columns, columnMetadata } object that UnmarshalResult rebuilds into a
// schema.Schema.
func MarshalResult(r TableResult) ([]byte, error) {
	sw := schemaWire{Columns: r.Schema.Columns, ColumnMetadata: map[string]columnMetadataWireEntry{}}
	for id, m := range r.Schema.Metadata {
		sw.ColumnMetadata[id] = columnMetadataWireEntry{
			DisplayName: m.DisplayName,
			SQLTypeName: m.Type.SQLTypeName,
			Kind:        string(m.Type.Kind),
		}
	}
	return json.Marshal(map[string]any{
		"schema":  sw,
		"rowData": r.RowData,
	})
}

// UnmarshalResult reconstitutes a TableResult. ColumnType fields beyond
// SQLTypeName/Kind (IsNumeric, DefaultAggFn, rendering) are not recoverable
// from the wire form alone, so dialect is consulted to fill them in by kind.
func UnmarshalResult(dialect coltype.Dialect, data []byte) (TableResult, error) {
	var raw struct {
		Schema  schemaWire `json:"schema"`
		RowData [][]any    `json:"rowData"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return TableResult{}, err
	}
	sch := schema.New(nil, nil)
	for _, id := range raw.Schema.Columns {
		entry := raw.Schema.ColumnMetadata[id]
		ct, ok := dialect.Type(coltype.Kind(entry.Kind))
		if !ok {
			ct = coltype.ColumnType{SQLTypeName: entry.SQLTypeName, Kind: coltype.Kind(entry.Kind)}
		}
		var okExt bool
		sch, okExt = sch.Extend(id, schema.ColumnMetadata{Type: ct, DisplayName: entry.DisplayName})
		if !okExt {
			return TableResult{}, fmt.Errorf("wire: duplicate column %q in result schema", id)
		}
	}
	return TableResult{Schema: sch, RowData: raw.RowData}, nil
}
