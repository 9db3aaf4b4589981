package mps

import (
	"fmt"
	"log"
	"time"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mpo"
	"github.com/fumin/qlattice/util"
)

// SearchGroundStateOptions are options for the ground state search.
type SearchGroundStateOptions struct {
	maxIterations int
	tol           float32
	verbose       bool
}

// NewSearchGroundStateOptions returns the default ground state search options.
func NewSearchGroundStateOptions() SearchGroundStateOptions {
	opt := SearchGroundStateOptions{}
	opt.maxIterations = 32
	opt.tol = 1e-6
	return opt
}

// MaxIterations sets the maximum number of sweeps.
func (opt SearchGroundStateOptions) MaxIterations(i int) SearchGroundStateOptions {
	opt.maxIterations = i
	return opt
}

// Tol sets the tolerance of the convergence criterion <H^2> - (<H>)^2.
func (opt SearchGroundStateOptions) Tol(tol float32) SearchGroundStateOptions {
	opt.tol = tol
	return opt
}

// Verbose logs the energy and variance after sweeps, at most once per second.
func (opt SearchGroundStateOptions) Verbose(v bool) SearchGroundStateOptions {
	opt.verbose = v
	return opt
}

// SearchGroundState optimizes ms in place towards the ground state of ws, and returns its energy.
// fs holds the L and R expressions between sweeps.
// See Section 6.3 Iterative ground state search, Ulrich Schollwock.
func SearchGroundState(fs, ws, ms []*tensor.Dense, bufs [10]*tensor.Dense, options ...SearchGroundStateOptions) (float32, error) {
	opt := NewSearchGroundStateOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	if len(ms) < 2 {
		return 0, errors.Errorf("%d sites", len(ms))
	}

	rightNormalizeAll(ms, bufs[:3])
	if _, err := RExpressions(fs, ws, ms, [2]*tensor.Dense(bufs[:2])); err != nil {
		return 0, errors.Wrap(err, "")
	}
	var energy, variance complex64
	throttler := util.NewSkipThrottler(time.Second)
	for i := range opt.maxIterations {
		if err := rightSweep(fs, ws, ms, bufs); err != nil {
			return 0, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		if err := leftSweep(fs, ws, ms, bufs); err != nil {
			return 0, errors.Wrap(err, fmt.Sprintf("%d", i))
		}

		bufs2 := [2]*tensor.Dense(bufs[:2])
		psiIP, err := InnerProduct(ms, ms, bufs2)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		if abs(psiIP) < epsilon {
			return 0, errors.Errorf("%f", psiIP)
		}
		// leftSweep stops at fs[1], so only fs[0] remains.
		rExpression(fs[0], fs[1], ws[0], ms[0], bufs[:])
		energy = fs[0].At(0, 0, 0) / psiIP
		h2, err := H2(ws, ms, bufs2)
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		h2 /= psiIP
		variance = h2 - energy*energy
		converged := abs(variance) < opt.tol*max(abs(h2), 1)
		if opt.verbose && (converged || throttler.Ok()) {
			log.Printf("sweep %d energy %f variance %g", i, real(energy), real(variance))
		}
		if converged {
			return real(energy), nil
		}
	}
	return 0, errors.Errorf("not converged energy %v variance %v", energy, variance)
}

// GroundEnergy allocates the buffers for a ground state search from a random state of bond dimension bondDim.
func GroundEnergy(ws []*tensor.Dense, bondDim int, options ...SearchGroundStateOptions) (float32, error) {
	fs := make([]*tensor.Dense, 0, len(ws))
	for range ws {
		fs = append(fs, tensor.Zeros(1))
	}
	var bufs [10]*tensor.Dense
	for i := range len(bufs) {
		bufs[i] = tensor.Zeros(1)
	}

	ms := RandMPS(ws, bondDim)
	e0, err := SearchGroundState(fs, ws, ms, bufs, options...)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return e0, nil
}

func leftSweep(fs, ws, ms []*tensor.Dense, bufs [10]*tensor.Dense) error {
	for l := len(ms) - 1; l >= 1; l-- {
		fRight := ones(fs[l], 1, 1, 1)
		if l+1 <= len(ms)-1 {
			fRight = fs[l+1]
		}
		if err := optimizeSite(fs[l-1], fRight, ws[l], ms, l, bufs); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%d", l))
		}

		// ms[l-1] absorbs the remainder of ms[l], so its L expression is stale.
		rightNormalize(ms, l, bufs[:3])
		fs[l-1].Reset(1)

		rExpression(fs[l], fRight, ws[l], ms[l], bufs[:2])
	}
	return nil
}

func rightSweep(fs, ws, ms []*tensor.Dense, bufs [10]*tensor.Dense) error {
	for l := range len(ms) - 1 {
		fLeft := ones(fs[l], 1, 1, 1)
		if l-1 >= 0 {
			fLeft = fs[l-1]
		}
		if err := optimizeSite(fLeft, fs[l+1], ws[l], ms, l, bufs); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%d", l))
		}

		// Keeping ms[:l] left normalized and ms[l+1:] right normalized reduces the generalized eigenvalue problem to an ordinary one.
		// See Equation 211, Section 6.3 Iterative ground state search, Ulrich Schollwock.
		leftNormalize(ms, l, bufs[:3])
		fs[l+1].Reset(1)

		lExpression(fs[l], fLeft, ws[l], ms[l], bufs[:2])
	}
	return nil
}

// optimizeSite replaces ms[l] with the lowest eigenvector of the effective Hamiltonian at site l.
func optimizeSite(left, right, w *tensor.Dense, ms []*tensor.Dense, l int, bufs [10]*tensor.Dense) error {
	h, err := effectiveH(bufs[0], left, right, w, bufs[1:])
	if err != nil {
		return errors.Wrap(err, "")
	}

	eigvals, eigvecs := bufs[1], bufs[2]
	abufs := [7]*tensor.Dense(bufs[3:])
	if err := tensor.Arnoldi(eigvals, eigvecs, h, 1, abufs); err != nil {
		return errors.Wrap(err, "")
	}
	resetCopy(ms[l], eigvecs.Reshape(ms[l].Shape()...))
	return nil
}

// effectiveH returns the H matrix defined in Equation 210, Section 6.3 Iterative ground state search, Ulrich Schollwock.
func effectiveH(h, left, right, w *tensor.Dense, bufs []*tensor.Dense) (*tensor.Dense, error) {
	// right is of shape {rightTop, rightMid, rightBot}.
	// wRight is of shape {mpoLeft, mpoUp, mpoDown, rightTop, rightBot}.
	wRight := tensor.Product(bufs[0], w, right, [][2]int{{mpoRightAxis, 1}})

	// left is of shape {leftTop, leftMid, leftBot}.
	// lwr is of shape {leftTop, leftBot, mpoUp, mpoDown, rightTop, rightBot}.
	lwr := tensor.Product(bufs[1], left, wRight, [][2]int{{1, 0}})

	// h is of shape {leftTop, mpoUp, rightTop, leftBot, mpoDown, rightBot}.
	resetCopy(h, lwr.Transpose(0, 2, 4, 1, 3, 5))

	ls, ws, rs := left.Shape(), w.Shape(), right.Shape()
	if ls[0] != ls[2] || ws[mpoUpAxis] != ws[mpoDownAxis] || rs[0] != rs[2] {
		return nil, errors.Wrap(mpo.ErrDimensionMismatch, fmt.Sprintf("%#v %#v %#v", ls, ws, rs))
	}
	return h.Reshape(ls[0]*ws[mpoUpAxis]*rs[0], ls[2]*ws[mpoDownAxis]*rs[2]), nil
}
