package engine

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Kind discriminates the value categories the engine can exchange with a
// client: dense matrices, string-schema frames, scalars and scalar lists.
type Kind int

const (
	KindMatrix Kind = iota
	KindFrame
	KindScalar
	KindList
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMatrix:
		return "matrix"
	case KindFrame:
		return "frame"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a concrete, fully materialized value that can cross the engine
// boundary in either direction.
type Value interface {
	Kind() Kind
}

// MatrixData is a dense row-major float64 matrix.
type MatrixData struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrixData wraps the given row-major buffer. The buffer length must
// equal Rows*Cols.
func NewMatrixData(rows, cols int, data []float64) (*MatrixData, error) {
	if rows < 0 || cols < 0 {
		return nil, errors.Errorf("invalid matrix shape %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.Errorf("matrix buffer has %d elements, shape %dx%d needs %d",
			len(data), rows, cols, rows*cols)
	}
	return &MatrixData{Rows: rows, Cols: cols, Data: data}, nil
}

// Kind implements Value.
func (m *MatrixData) Kind() Kind { return KindMatrix }

// At returns the element at row r, column c.
func (m *MatrixData) At(r, c int) float64 {
	return m.Data[r*m.Cols+c]
}

// FrameColumn is one named column of a frame. Cell values travel as strings;
// the engine casts to its declared schema on ingest.
type FrameColumn struct {
	Name   string
	Values []string
}

// FrameData is a column-oriented frame.
type FrameData struct {
	Columns []FrameColumn
}

// Kind implements Value.
func (f *FrameData) Kind() Kind { return KindFrame }

// NumRows returns the row count of the frame, zero for an empty frame.
func (f *FrameData) NumRows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Values)
}

// ScalarValue is a single typed scalar. The payload is a cty.Value, which
// gives us one uniform representation for booleans, numbers and strings on
// both the script-literal and the JSON wire path.
type ScalarValue struct {
	v cty.Value
}

// Kind implements Value.
func (s ScalarValue) Kind() Kind { return KindScalar }

// BoolScalar returns a boolean scalar.
func BoolScalar(b bool) ScalarValue { return ScalarValue{cty.BoolVal(b)} }

// IntScalar returns an integer scalar.
func IntScalar(i int64) ScalarValue { return ScalarValue{cty.NumberIntVal(i)} }

// FloatScalar returns a floating-point scalar.
func FloatScalar(f float64) ScalarValue { return ScalarValue{cty.NumberFloatVal(f)} }

// StringScalar returns a string scalar.
func StringScalar(s string) ScalarValue { return ScalarValue{cty.StringVal(s)} }

// ScalarOf converts a native Go value into a scalar. Supported inputs are
// booleans, the integer and float types, and strings.
func ScalarOf(v any) (ScalarValue, error) {
	if sv, ok := v.(ScalarValue); ok {
		return sv, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return ScalarValue{}, errors.Wrapf(err, "unsupported scalar value %T", v)
	}
	cv, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return ScalarValue{}, errors.Wrapf(err, "cannot convert %T to scalar", v)
	}
	switch {
	case ty == cty.Bool, ty == cty.Number, ty == cty.String:
		return ScalarValue{cv}, nil
	}
	return ScalarValue{}, errors.Errorf("unsupported scalar type %s", ty.FriendlyName())
}

// Cty exposes the underlying cty value.
func (s ScalarValue) Cty() cty.Value { return s.v }

// IsNumber reports whether the scalar is numeric.
func (s ScalarValue) IsNumber() bool { return s.v.Type() == cty.Number }

// Bool returns the boolean payload.
func (s ScalarValue) Bool() (bool, error) {
	var b bool
	if err := gocty.FromCtyValue(s.v, &b); err != nil {
		return false, errors.Wrap(err, "scalar is not a boolean")
	}
	return b, nil
}

// Int64 returns the integer payload. Fails for non-integral numbers.
func (s ScalarValue) Int64() (int64, error) {
	var i int64
	if err := gocty.FromCtyValue(s.v, &i); err != nil {
		return 0, errors.Wrap(err, "scalar is not an integer")
	}
	return i, nil
}

// Float64 returns the numeric payload as a float.
func (s ScalarValue) Float64() (float64, error) {
	var f float64
	if err := gocty.FromCtyValue(s.v, &f); err != nil {
		return 0, errors.Wrap(err, "scalar is not a number")
	}
	return f, nil
}

// Text returns the string payload.
func (s ScalarValue) Text() (string, error) {
	var str string
	if err := gocty.FromCtyValue(s.v, &str); err != nil {
		return "", errors.Wrap(err, "scalar is not a string")
	}
	return str, nil
}

// Equal reports value equality between two scalars.
func (s ScalarValue) Equal(o ScalarValue) bool {
	return s.v.RawEquals(o.v)
}

// Literal renders the scalar as a script literal: TRUE/FALSE for booleans,
// decimal notation for numbers, double-quoted escaped text for strings.
func (s ScalarValue) Literal() string {
	switch s.v.Type() {
	case cty.Bool:
		if s.v.True() {
			return "TRUE"
		}
		return "FALSE"
	case cty.Number:
		bf := s.v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int(nil)
			return i.String()
		}
		f, _ := bf.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case cty.String:
		return strconv.Quote(s.v.AsString())
	}
	return s.v.GoString()
}

// Native returns the scalar as a plain Go value (bool, int64, float64 or
// string), the form used on the JSON wire.
func (s ScalarValue) Native() any {
	switch s.v.Type() {
	case cty.Bool:
		return s.v.True()
	case cty.Number:
		bf := s.v.AsBigFloat()
		if bf.IsInt() {
			i, _ := bf.Int64()
			return i
		}
		f, _ := bf.Float64()
		return f
	case cty.String:
		return s.v.AsString()
	}
	return nil
}

// scalarFromNative is the inverse of Native, used when decoding JSON parts.
// JSON numbers arrive as float64; integral floats are narrowed back so that
// integer round-trips stay exact.
func scalarFromNative(v any) (ScalarValue, error) {
	switch x := v.(type) {
	case bool:
		return BoolScalar(x), nil
	case string:
		return StringScalar(x), nil
	case float64:
		bf := big.NewFloat(x)
		if bf.IsInt() {
			i, _ := bf.Int64()
			return IntScalar(i), nil
		}
		return FloatScalar(x), nil
	case int64:
		return IntScalar(x), nil
	}
	return ScalarValue{}, errors.Errorf("unsupported scalar payload %T", v)
}

// ListValue is an ordered sequence of scalars. Matrix- or frame-valued list
// elements never travel inline; clients address them lazily through element
// access operations instead.
type ListValue struct {
	Values []ScalarValue
}

// Kind implements Value.
func (l ListValue) Kind() Kind { return KindList }

// String renders a short human-readable form, used by the CLI output path.
func (l ListValue) String() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = v.Literal()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
