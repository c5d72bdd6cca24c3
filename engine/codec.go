package engine

// Wire codec for values crossing the engine boundary. Matrices and frames
// are encoded as single-record Arrow IPC streams; scalars and lists as
// small JSON documents. The layout is a fixed external contract shared
// with the engine and must not drift.

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/ipc"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/pkg/errors"
)

// MIME types used on the multipart wire.
const (
	contentTypeArrow = "application/vnd.apache.arrow.stream"
	contentTypeJSON  = "application/json"
)

const kindMetadataKey = "gridml.kind"

// WriteValue encodes any Value onto w in its wire form and reports the
// content type used.
func WriteValue(w io.Writer, v Value) (string, error) {
	switch x := v.(type) {
	case *MatrixData:
		return contentTypeArrow, writeMatrix(w, x)
	case *FrameData:
		return contentTypeArrow, writeFrame(w, x)
	case ScalarValue:
		return contentTypeJSON, writeScalarJSON(w, x)
	case ListValue:
		return contentTypeJSON, writeListJSON(w, x)
	}
	return "", errors.Errorf("cannot encode value of type %T", v)
}

// ReadValue decodes a wire payload with the given content type.
func ReadValue(r io.Reader, contentType string) (Value, error) {
	switch contentType {
	case contentTypeArrow:
		return readArrow(r)
	case contentTypeJSON:
		return readJSONValue(r)
	}
	return nil, errors.Errorf("unknown payload content type %q", contentType)
}

func writeMatrix(w io.Writer, m *MatrixData) error {
	mem := memory.NewGoAllocator()

	fields := make([]arrow.Field, m.Cols)
	for c := range fields {
		fields[c] = arrow.Field{Name: colName(c), Type: arrow.PrimitiveTypes.Float64}
	}
	md := arrow.NewMetadata([]string{kindMetadataKey}, []string{KindMatrix.String()})
	schema := arrow.NewSchema(fields, &md)

	cols := make([]arrow.Array, m.Cols)
	for c := 0; c < m.Cols; c++ {
		b := array.NewFloat64Builder(mem)
		for r := 0; r < m.Rows; r++ {
			b.Append(m.At(r, c))
		}
		cols[c] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, cols, int64(m.Rows))
	defer rec.Release()
	for _, col := range cols {
		col.Release()
	}

	return writeRecord(w, schema, rec, mem)
}

func writeFrame(w io.Writer, f *FrameData) error {
	mem := memory.NewGoAllocator()

	fields := make([]arrow.Field, len(f.Columns))
	for i, col := range f.Columns {
		fields[i] = arrow.Field{Name: col.Name, Type: arrow.BinaryTypes.String}
	}
	md := arrow.NewMetadata([]string{kindMetadataKey}, []string{KindFrame.String()})
	schema := arrow.NewSchema(fields, &md)

	cols := make([]arrow.Array, len(f.Columns))
	for i, col := range f.Columns {
		b := array.NewStringBuilder(mem)
		for _, v := range col.Values {
			b.Append(v)
		}
		cols[i] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, cols, int64(f.NumRows()))
	defer rec.Release()
	for _, col := range cols {
		col.Release()
	}

	return writeRecord(w, schema, rec, mem)
}

func writeRecord(w io.Writer, schema *arrow.Schema, rec arrow.Record, mem memory.Allocator) error {
	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return errors.Wrap(err, "writing arrow record")
	}
	return errors.Wrap(wr.Close(), "closing arrow stream")
}

func readArrow(r io.Reader) (Value, error) {
	rd, err := ipc.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening arrow stream")
	}
	defer rd.Release()
	if !rd.Next() {
		return nil, errors.New("arrow stream carries no record")
	}
	rec := rd.Record()
	rec.Retain()
	defer rec.Release()
	if rd.Next() {
		return nil, errors.New("arrow stream carries more than one record")
	}

	schema := rec.Schema()
	kind := KindMatrix.String()
	md := schema.Metadata()
	if idx := md.FindKey(kindMetadataKey); idx >= 0 {
		kind = md.Values()[idx]
	} else if rec.NumCols() > 0 {
		// Legacy streams have no metadata; fall back to field-type inference.
		if _, ok := rec.Column(0).(*array.String); ok {
			kind = KindFrame.String()
		}
	}

	switch kind {
	case KindFrame.String():
		return frameFromRecord(rec)
	default:
		return matrixFromRecord(rec)
	}
}

func matrixFromRecord(rec arrow.Record) (*MatrixData, error) {
	rows := int(rec.NumRows())
	cols := int(rec.NumCols())
	data := make([]float64, rows*cols)
	for c := 0; c < cols; c++ {
		fc, ok := rec.Column(c).(*array.Float64)
		if !ok {
			return nil, errors.Errorf("matrix column %d is %T, want float64", c, rec.Column(c))
		}
		vals := fc.Float64Values()
		for r := 0; r < rows; r++ {
			data[r*cols+c] = vals[r]
		}
	}
	return NewMatrixData(rows, cols, data)
}

func frameFromRecord(rec arrow.Record) (*FrameData, error) {
	rows := int(rec.NumRows())
	out := &FrameData{Columns: make([]FrameColumn, rec.NumCols())}
	schema := rec.Schema()
	for c := 0; c < int(rec.NumCols()); c++ {
		sc, ok := rec.Column(c).(*array.String)
		if !ok {
			return nil, errors.Errorf("frame column %d is %T, want string", c, rec.Column(c))
		}
		vals := make([]string, rows)
		for r := 0; r < rows; r++ {
			vals[r] = sc.Value(r)
		}
		out.Columns[c] = FrameColumn{Name: schema.Field(c).Name, Values: vals}
	}
	return out, nil
}

// jsonValue is the envelope for scalar and list payloads.
type jsonValue struct {
	Kind   string `json:"kind"`
	Value  any    `json:"value,omitempty"`
	Values []any  `json:"values,omitempty"`
}

func writeScalarJSON(w io.Writer, s ScalarValue) error {
	return json.NewEncoder(w).Encode(jsonValue{Kind: KindScalar.String(), Value: s.Native()})
}

func writeListJSON(w io.Writer, l ListValue) error {
	vals := make([]any, len(l.Values))
	for i, v := range l.Values {
		vals[i] = v.Native()
	}
	return json.NewEncoder(w).Encode(jsonValue{Kind: KindList.String(), Values: vals})
}

func readJSONValue(r io.Reader) (Value, error) {
	var env jsonValue
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decoding json payload")
	}
	switch env.Kind {
	case KindScalar.String():
		return scalarFromNative(env.Value)
	case KindList.String():
		out := ListValue{Values: make([]ScalarValue, len(env.Values))}
		for i, v := range env.Values {
			sv, err := scalarFromNative(v)
			if err != nil {
				return nil, errors.Wrapf(err, "list element %d", i)
			}
			out.Values[i] = sv
		}
		return out, nil
	}
	return nil, errors.Errorf("unknown json payload kind %q", env.Kind)
}

func colName(c int) string {
	return "c" + strconv.Itoa(c)
}
