// Package mat implements the sparse complex matrices used to assemble lattice Hamiltonians.
package mat

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	gonum "gonum.org/v1/gonum/mat"
)

const (
	FnameShape = "shape.csv"
	FnameCOO   = "coo.csv"
)

var (
	PauliX = [][]complex128{
		{0, 1},
		{1, 0},
	}
	PauliY = [][]complex128{
		{0, -1i},
		{1i, 0},
	}
	PauliZ = [][]complex128{
		{1, 0},
		{0, -1},
	}
)

var (
	ErrOutOfRange   = errors.New("index out of range")
	ErrShape        = errors.New("wrong dimensions")
	ErrNotHermitian = errors.New("not hermitian")
)

type Matrix interface {
	Zeros(int, int)
	Scalar(complex128)
	Rows() int
	Cols() int

	Add(complex128, Matrix)
	Kron(*COO)
	COO() *COO

	WriteCOO(string) error
}

// Triple is a single coordinate entry of a sparse matrix.
type Triple struct {
	V   complex128
	Row int
	Col int
}

// COO is a sparse matrix whose entries are kept sorted in row major order.
type COO struct {
	rows int
	cols int
	Data []Triple
}

func newCOO(rows, cols int) *COO {
	return &COO{rows: rows, cols: cols, Data: make([]Triple, 0)}
}

func M(dense [][]complex128) *COO {
	m := newCOO(len(dense), len(dense[0]))
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, Triple{V: v, Row: i, Col: j})
		}
	}
	return m
}

// NewCOO assembles a rows by cols matrix from coordinate triples.
// Entries sharing the same coordinates are summed, and entries that sum to zero are dropped.
func NewCOO(rows, cols int, triples []Triple) (*COO, error) {
	m := newCOO(rows, cols)
	sums := make(map[[2]int]complex128, len(triples))
	for _, t := range triples {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return nil, errors.Wrap(ErrOutOfRange, fmt.Sprintf("%#v %d %d", t, rows, cols))
		}
		sums[[2]int{t.Row, t.Col}] += t.V
	}
	for yx, v := range sums {
		if v == 0 {
			continue
		}
		m.Data = append(m.Data, Triple{V: v, Row: yx[0], Col: yx[1]})
	}
	slices.SortFunc(m.Data, rowMajor)
	return m, nil
}

func COOZeros(rows, cols int) *COO {
	return newCOO(rows, cols)
}

func COOIdentity(rows int) *COO {
	m := newCOO(rows, rows)
	for i := 0; i < rows; i++ {
		m.Data = append(m.Data, Triple{V: 1, Row: i, Col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.Data = m.Data[:0]
}

func (m *COO) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	m.Data = m.Data[:0]
	m.Data = append(m.Data, Triple{V: v, Row: 0, Col: 0})
}

// Clone returns a deep copy of m.
func (m *COO) Clone() *COO {
	c := newCOO(m.rows, m.cols)
	c.Data = append(c.Data, m.Data...)
	return c
}

// At returns the entry at row i and column j.
func (m *COO) At(i, j int) complex128 {
	k, ok := slices.BinarySearchFunc(m.Data, Triple{Row: i, Col: j}, rowMajor)
	if !ok {
		return 0
	}
	return m.Data[k].V
}

func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows {
		return false
	}
	if a.cols != b.cols {
		return false
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i, av := range a.Data {
		bv := b.Data[i]
		if av != bv {
			return false
		}
	}
	return true
}

// EqualApprox reports whether a and b have the same shape and all their entries are within tol of each other.
func (a *COO) EqualApprox(b *COO, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	diff := a.Clone()
	diff.Add(-1, b)
	for _, v := range diff.Data {
		if cmplx.Abs(v.V) > tol {
			return false
		}
	}
	return true
}

func (m *COO) Slice(yBoundN, xBoundN [2]int) *COO {
	yBound, xBound := yBoundN, xBoundN
	for i := 0; i < 2; i++ {
		if yBound[i] < 0 {
			yBound[i] += m.rows
		}
		if xBound[i] < 0 {
			xBound[i] += m.cols
		}
	}

	s := newCOO(yBound[1]-yBound[0], xBound[1]-xBound[0])
	for _, v := range m.Data {
		if v.Row < yBound[0] {
			continue
		}
		if v.Row >= yBound[1] {
			break
		}
		if v.Col < xBound[0] || v.Col >= xBound[1] {
			continue
		}
		s.Data = append(s.Data, Triple{V: v.V, Row: v.Row - yBound[0], Col: v.Col - xBound[0]})
	}
	return s
}

// Sub returns the principal submatrix whose i-th row and column are row and column idx[i] of m.
func (m *COO) Sub(idx []int) (*COO, error) {
	pos := make(map[int]int, len(idx))
	for i, k := range idx {
		if k < 0 || k >= m.rows || k >= m.cols {
			return nil, errors.Wrap(ErrOutOfRange, fmt.Sprintf("%d %d %d", k, m.rows, m.cols))
		}
		pos[k] = i
	}

	s := newCOO(len(idx), len(idx))
	for _, v := range m.Data {
		i, ok := pos[v.Row]
		if !ok {
			continue
		}
		j, ok := pos[v.Col]
		if !ok {
			continue
		}
		s.Data = append(s.Data, Triple{V: v.V, Row: i, Col: j})
	}
	slices.SortFunc(s.Data, rowMajor)
	return s, nil
}

func (a *COO) Add(c complex128, bMatrix Matrix) {
	b := bMatrix.COO()
	if b.rows != a.rows || b.cols != a.cols {
		panic(fmt.Sprintf("%v %d %d %d %d", ErrShape, a.rows, a.cols, b.rows, b.cols))
	}
	if b == a {
		b = a.Clone()
	}
	rest := make(map[[2]int]complex128, len(b.Data))
	for _, v := range b.Data {
		rest[[2]int{v.Row, v.Col}] = v.V
	}

	for i, av := range a.Data {
		byx := [2]int{av.Row, av.Col}
		bv := rest[byx]
		delete(rest, byx)

		a.Data[i].V = av.V + c*bv
	}

	a.Data = slices.DeleteFunc(a.Data, func(v Triple) bool {
		return v.V == 0
	})
	for yx, bv := range rest {
		if c*bv == 0 {
			continue
		}
		a.Data = append(a.Data, Triple{V: c * bv, Row: yx[0], Col: yx[1]})
	}
	slices.SortFunc(a.Data, rowMajor)
}

// Scale multiplies every entry of m by c.
func (m *COO) Scale(c complex128) {
	for i := range m.Data {
		m.Data[i].V *= c
	}
	m.Data = slices.DeleteFunc(m.Data, func(v Triple) bool {
		return v.V == 0
	})
}

func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols

	data := make([]Triple, 0, len(a.Data)*len(b.Data))
	for _, av := range a.Data {
		for _, bv := range b.Data {
			v := av.V * bv.V
			if v == 0 {
				continue
			}
			ky := av.Row*b.rows + bv.Row
			kx := av.Col*b.cols + bv.Col
			data = append(data, Triple{V: v, Row: ky, Col: kx})
		}
	}
	// Rows of b interleave between rows of a.
	slices.SortFunc(data, rowMajor)

	a.rows, a.cols = rows, cols
	a.Data = data
}

// Kron returns the Kronecker product of a and b without modifying either.
func Kron(a, b *COO) *COO {
	c := a.Clone()
	c.Kron(b)
	return c
}

func (m *COO) COO() *COO {
	return m
}

// H returns the conjugate transpose of m.
func (m *COO) H() *COO {
	h := newCOO(m.cols, m.rows)
	for _, v := range m.Data {
		h.Data = append(h.Data, Triple{V: cmplx.Conj(v.V), Row: v.Col, Col: v.Row})
	}
	slices.SortFunc(h.Data, rowMajor)
	return h
}

// IsHermitian reports whether m equals its conjugate transpose within tol.
func (m *COO) IsHermitian(tol float64) bool {
	if m.rows != m.cols {
		return false
	}
	return m.EqualApprox(m.H(), tol)
}

// IsReal reports whether all imaginary parts of m are within tol of zero.
func (m *COO) IsReal(tol float64) bool {
	for _, v := range m.Data {
		if math.Abs(imag(v.V)) > tol {
			return false
		}
	}
	return true
}

func (m *COO) Dense() [][]complex128 {
	dense := make([][]complex128, m.rows)
	for i := range dense {
		dense[i] = make([]complex128, m.cols)
	}

	for _, v := range m.Data {
		dense[v.Row][v.Col] = v.V
	}

	return dense
}

// CDense converts m to a gonum dense complex matrix.
func (m *COO) CDense() *gonum.CDense {
	d := gonum.NewCDense(m.rows, m.cols, nil)
	for _, v := range m.Data {
		d.Set(v.Row, v.Col, v.V)
	}
	return d
}

func (m *COO) WriteCOO(dir string) error {
	shapePath := filepath.Join(dir, FnameShape)
	if err := os.WriteFile(shapePath, []byte(fmt.Sprintf("%d,%d", m.rows, m.cols)), 0644); err != nil {
		return errors.Wrap(err, "")
	}

	cooPath := filepath.Join(dir, FnameCOO)
	cooF, err := os.Create(cooPath)
	if err != nil {
		return errors.Wrap(err, "")
	}

	w := csv.NewWriter(cooF)
	for _, v := range m.Data {
		if err1 := w.Write([]string{FormatNumpy(v.V), strconv.Itoa(v.Row), strconv.Itoa(v.Col)}); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}
	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}

	if err1 := cooF.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// COOReader streams the entries written by WriteCOO.
// Empty value or row fields repeat the previous record.
type COOReader struct {
	f *os.File
	r *csv.Reader
	i int

	prev Triple
}

func NewCOOReader(dir string) (*COOReader, error) {
	r := &COOReader{i: -1}

	var err error
	r.f, err = os.Open(filepath.Join(dir, FnameCOO))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	r.r = csv.NewReader(r.f)
	return r, nil
}

func (r *COOReader) Close() error {
	return r.f.Close()
}

func (r *COOReader) Read() (Triple, error) {
	r.i++
	record, err := r.r.Read()
	if err == io.EOF {
		return Triple{}, io.EOF
	}
	if err != nil {
		return Triple{}, errors.Wrap(err, fmt.Sprintf("%d", r.i))
	}
	if len(record) != 3 {
		return Triple{}, errors.Errorf("%d %#v", r.i, record)
	}

	t := r.prev
	if record[0] != "" {
		t.V, err = strconv.ParseComplex(strings.ReplaceAll(record[0], "j", "i"), 128)
		if err != nil {
			return Triple{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
		}
	}
	if record[1] != "" {
		t.Row, err = strconv.Atoi(record[1])
		if err != nil {
			return Triple{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
		}
	}
	t.Col, err = strconv.Atoi(record[2])
	if err != nil {
		return Triple{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
	}

	r.prev = t
	return t, nil
}

func ReadCOO(dir string) (*COO, error) {
	rows, cols, err := readShape(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m := newCOO(rows, cols)

	r, err := NewCOOReader(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer r.Close()
	for {
		v, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}

		m.Data = append(m.Data, v)
	}

	return m, nil
}

func readShape(dir string) (int, int, error) {
	f, err := os.Open(filepath.Join(dir, FnameShape))
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	if len(records) == 0 {
		return -1, -1, errors.Errorf("empty")
	}
	row := records[0]

	if len(row) != 2 {
		return -1, -1, errors.Errorf("%#v", row)
	}
	i, err := strconv.Atoi(row[0])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	j, err := strconv.Atoi(row[1])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", row))
	}

	return i, j, nil
}

func (m *COO) String() string {
	lines := make([]string, 0, m.rows)
	dense := m.Dense()
	for _, row := range dense {
		cs := make([]string, 0, len(row))
		for _, v := range row {
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func rowMajor(a, b Triple) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := strconv.FormatFloat(v, 'g', 6, 64)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}

func FormatNumpy(v complex128) string {
	switch {
	case imag(v) == 0:
		return strconv.FormatFloat(real(v), 'g', -1, 64)
	default:
		s := strconv.FormatComplex(v, 'g', -1, 128)
		s = strings.Trim(s, "()")
		s = strings.ReplaceAll(s, "i", "j")
		return s
	}
}
