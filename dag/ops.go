package dag

// Builtin matrix operations. These compose lazily like everything else:
// each call records one positional-input node and returns its handle.

func (m *Matrix) binary(op string, o *Matrix) *Matrix {
	node := newNode(m.ectx, op, nil, []Handle{m, o}, []OutputType{OutputMatrix})
	return &Matrix{node.outs[0]}
}

func (m *Matrix) unary(op string) *Matrix {
	node := newNode(m.ectx, op, nil, []Handle{m}, []OutputType{OutputMatrix})
	return &Matrix{node.outs[0]}
}

func (m *Matrix) aggregate(op string) *Scalar {
	node := newNode(m.ectx, op, nil, []Handle{m}, []OutputType{OutputScalar})
	return &Scalar{node.outs[0]}
}

// Add returns the element-wise sum of m and o.
func (m *Matrix) Add(o *Matrix) *Matrix { return m.binary("+", o) }

// Sub returns the element-wise difference of m and o.
func (m *Matrix) Sub(o *Matrix) *Matrix { return m.binary("-", o) }

// Mul returns the element-wise product of m and o.
func (m *Matrix) Mul(o *Matrix) *Matrix { return m.binary("*", o) }

// Div returns the element-wise quotient of m and o.
func (m *Matrix) Div(o *Matrix) *Matrix { return m.binary("/", o) }

// MatMul returns the matrix product of m and o.
func (m *Matrix) MatMul(o *Matrix) *Matrix { return m.binary("%*%", o) }

// Transpose returns m transposed.
func (m *Matrix) Transpose() *Matrix { return m.unary("t") }

// Rbind appends the rows of o below m.
func (m *Matrix) Rbind(o *Matrix) *Matrix {
	node := newNode(m.ectx, "rbind", nil, []Handle{m, o}, []OutputType{OutputMatrix})
	return &Matrix{node.outs[0]}
}

// Cbind appends the columns of o to the right of m.
func (m *Matrix) Cbind(o *Matrix) *Matrix {
	node := newNode(m.ectx, "cbind", nil, []Handle{m, o}, []OutputType{OutputMatrix})
	return &Matrix{node.outs[0]}
}

// Sum reduces the matrix to the sum of its elements.
func (m *Matrix) Sum() *Scalar { return m.aggregate("sum") }

// Mean reduces the matrix to the mean of its elements.
func (m *Matrix) Mean() *Scalar { return m.aggregate("mean") }

// Max reduces the matrix to its largest element.
func (m *Matrix) Max() *Scalar { return m.aggregate("max") }

// Min reduces the matrix to its smallest element.
func (m *Matrix) Min() *Scalar { return m.aggregate("min") }

// NRow returns the row count as a lazy scalar.
func (m *Matrix) NRow() *Scalar { return m.aggregate("nrow") }

// NCol returns the column count as a lazy scalar.
func (m *Matrix) NCol() *Scalar { return m.aggregate("ncol") }
