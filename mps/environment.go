package mps

import (
	"fmt"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mpo"
)

// LExpressions sweeps the left environments of Equation 192, Ulrich Schollwock, from the first site to the last,
// leaving the environment that includes site i in fs[i], and returns <ms|ws|ms>.
func LExpressions(fs, ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) (complex64, error) {
	if err := checkLengths(fs, ws, ms); err != nil {
		return 0, errors.Wrap(err, "")
	}

	env := ones(fs[0], 1, 1, 1)
	for i := range ws {
		env = lExpression(fs[i], env, ws[i], ms[i], bufs[:])
	}
	return scalar(env)
}

// lExpression extends the left environment prev by one site into fi.
// prev and fi are of shape {bra, operator, ket}.
func lExpression(fi, prev, w, m *tensor.Dense, bufs []*tensor.Dense) *tensor.Dense {
	// ket is of shape {bra, operator, up, ket right}.
	ket := tensor.Product(bufs[0], prev, m, [][2]int{{2, mpsLeftAxis}})
	// op is of shape {operator right, up, bra, ket right}.
	op := tensor.Product(bufs[1], w, ket, [][2]int{{mpoDownAxis, 2}, {mpoLeftAxis, 1}})
	return tensor.Product(fi, m.Conj(), op, [][2]int{{mpsLeftAxis, 2}, {mpsUpAxis, 1}})
}

// RExpressions sweeps the right environments of Equation 193, Ulrich Schollwock, from the last site to the first.
func RExpressions(fs, ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) (complex64, error) {
	if err := checkLengths(fs, ws, ms); err != nil {
		return 0, errors.Wrap(err, "")
	}

	env := ones(fs[len(fs)-1], 1, 1, 1)
	for i := len(fs) - 1; i >= 0; i-- {
		env = rExpression(fs[i], env, ws[i], ms[i], bufs[:])
	}
	return scalar(env)
}

func rExpression(fi, next, w, m *tensor.Dense, bufs []*tensor.Dense) *tensor.Dense {
	// ket is of shape {bra, operator, ket left, up}.
	ket := tensor.Product(bufs[0], next, m, [][2]int{{2, mpsRightAxis}})
	// op is of shape {operator left, up, bra, ket left}.
	op := tensor.Product(bufs[1], w, ket, [][2]int{{mpoDownAxis, 3}, {mpoRightAxis, 1}})
	return tensor.Product(fi, m.Conj(), op, [][2]int{{mpsRightAxis, 2}, {mpsUpAxis, 1}})
}

// H2 returns <ms|ws^2|ms>, applying ws twice inside a single left sweep.
// See Figure 44, Ulrich Schollwock.
func H2(ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) (complex64, error) {
	if len(ws) != len(ms) {
		return 0, errors.Wrap(mpo.ErrDimensionMismatch, fmt.Sprintf("%d %d", len(ws), len(ms)))
	}

	// env is of shape {bra, upper operator, lower operator, ket}.
	env := ones(bufs[0], 1, 1, 1, 1)
	for i, w := range ws {
		ket := tensor.Product(bufs[1], env, ms[i], [][2]int{{3, mpsLeftAxis}})
		lower := tensor.Product(bufs[0], w, ket, [][2]int{{mpoDownAxis, 3}, {mpoLeftAxis, 2}})
		upper := tensor.Product(bufs[1], w, lower, [][2]int{{mpoDownAxis, 1}, {mpoLeftAxis, 3}})
		env = tensor.Product(bufs[0], ms[i].Conj(), upper, [][2]int{{mpsLeftAxis, 3}, {mpsUpAxis, 1}})
	}
	return scalar(env)
}

// scalar returns the only element of a fully contracted environment.
func scalar(env *tensor.Dense) (complex64, error) {
	shape := env.Shape()
	for _, d := range shape {
		if d != 1 {
			return 0, errors.Wrap(mpo.ErrDimensionMismatch, fmt.Sprintf("%#v", shape))
		}
	}
	return env.At(slices.Repeat([]int{0}, len(shape))...), nil
}

func checkLengths(fs, ws, ms []*tensor.Dense) error {
	if len(fs) == 0 || len(fs) != len(ws) || len(ws) != len(ms) {
		return errors.Wrap(mpo.ErrDimensionMismatch, fmt.Sprintf("%d %d %d", len(fs), len(ws), len(ms)))
	}
	return nil
}
