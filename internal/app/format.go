package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/gridml/engine"
)

// formatValue renders a result value for terminal output.
func formatValue(v engine.Value) string {
	switch val := v.(type) {
	case *engine.MatrixData:
		return formatMatrix(val)
	case *engine.FrameData:
		return formatFrame(val)
	case engine.ScalarValue:
		return val.Literal()
	case engine.ListValue:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatMatrix(m *engine.MatrixData) string {
	var b strings.Builder
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(m.At(r, c), 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFrame(f *engine.FrameData) string {
	var b strings.Builder
	for i, col := range f.Columns {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(col.Name)
	}
	rows := f.NumRows()
	for r := 0; r < rows; r++ {
		b.WriteByte('\n')
		for i, col := range f.Columns {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(col.Values[r])
		}
	}
	return b.String()
}
