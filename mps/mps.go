// Package mps searches for ground states of matrix product operators with the density matrix renormalization group.
//
// References:
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package mps

import (
	"fmt"
	"math/cmplx"
	"math/rand/v2"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mpo"
)

const (
	// mpsLeftAxis is the axis of a_{l-1} in Figure 6.
	mpsLeftAxis  = 0
	mpsUpAxis    = 1
	mpsRightAxis = 2
	// mpoLeftAxis is the axis of b_{l-1} in Figure 35.
	mpoLeftAxis  = 0
	mpoRightAxis = 1
	mpoUpAxis    = 2
	mpoDownAxis  = 3

	// Machine precision.
	epsilon = 0x1p-23
)

// RandMPS creates a random state whose physical dimensions match the operator ws.
// maxD is the maximum bond dimension, which is D in the discussion below equation 71 in section 4.1.4, Ulrich Schollwock.
func RandMPS(ws []*tensor.Dense, maxD int) []*tensor.Dense {
	if len(ws) == 1 {
		return []*tensor.Dense{randTensor(1, ws[0].Shape()[mpoDownAxis], 1)}
	}

	ms := make([]*tensor.Dense, 0, len(ws))
	physD := ws[0].Shape()[mpoDownAxis]
	leftD := physD
	ms = append(ms, randTensor(1, physD, min(physD, maxD)))

	// Bond dimensions grow towards the middle of the chain, and shrink after it.
	for i := 1; i <= len(ws)-2; i++ {
		physD := ws[i].Shape()[mpoDownAxis]
		var rightD int
		switch {
		case i < len(ws)/2:
			rightD = leftD * physD
		case i > len(ws)/2:
			rightD = leftD / physD
		case len(ws)%2 == 0:
			rightD = leftD / physD
		default:
			rightD = leftD
		}
		leftD = rightD

		prev := ms[i-1].Shape()
		ms = append(ms, randTensor(prev[mpsRightAxis], physD, max(min(rightD, maxD), 1)))
	}

	physD = ws[len(ws)-1].Shape()[mpoDownAxis]
	prev := ms[len(ws)-2].Shape()
	ms = append(ms, randTensor(prev[mpsRightAxis], physD, 1))

	return ms
}

// InnerProduct computes <x|y>.
// See Section 4.2.1 Efficient evaluation of contractions, Ulrich Schollwock.
func InnerProduct(x, y []*tensor.Dense, bufs [2]*tensor.Dense) (complex64, error) {
	if len(x) != len(y) {
		return 0, errors.Wrap(mpo.ErrDimensionMismatch, fmt.Sprintf("%d %d", len(x), len(y)))
	}

	f := ones(bufs[0], 1, 1)
	const fTopAxis, fBottomAxis = 0, 1
	for i, xi := range x {
		fyi := tensor.Product(bufs[1], f, y[i], [][2]int{{fBottomAxis, mpsLeftAxis}})
		tensor.Product(f, xi.Conj(), fyi, [][2]int{{mpsLeftAxis, fTopAxis}, {mpsUpAxis, mpsUpAxis}})
	}
	return scalar(f)
}

func rightNormalizeAll(ms []*tensor.Dense, bufs []*tensor.Dense) {
	for i := len(ms) - 1; i >= 1; i-- {
		rightNormalize(ms, i, bufs)
	}
}

// rightNormalize makes ms[i] right normalized, and multiplies the remainder into ms[i-1].
// See Section 4.4.2 Generation of a right-canonical MPS, Ulrich Schollwock.
func rightNormalize(ms []*tensor.Dense, i int, bufs []*tensor.Dense) {
	s := ms[i].Shape()
	dUp, dRight := s[mpsUpAxis], s[mpsRightAxis]

	// ms[i] = l @ q.H.
	mi := ms[i].Reshape(s[mpsLeftAxis], dUp*dRight)
	q, lqbufs := bufs[0], [2]*tensor.Dense(bufs[1:])
	l := lq(q, mi, lqbufs)

	resetCopy(ms[i-1], tensor.Product(bufs[1], ms[i-1], l, [][2]int{{mpsRightAxis, 0}}))
	ms[i] = resetCopy(ms[i], q.H()).Reshape(-1, dUp, dRight)
}

// leftNormalize makes ms[i] left normalized, and multiplies the remainder into ms[i+1].
func leftNormalize(ms []*tensor.Dense, i int, bufs []*tensor.Dense) {
	s := ms[i].Shape()
	dLeft, dUp := s[mpsLeftAxis], s[mpsUpAxis]

	// ms[i] = q @ r.
	mi := ms[i].Reshape(dLeft*dUp, s[mpsRightAxis])
	q, qrbufs := bufs[0], [2]*tensor.Dense(bufs[1:])
	r := tensor.QR(q, mi, qrbufs)

	resetCopy(ms[i+1], tensor.Product(bufs[1], r, ms[i+1], [][2]int{{1, mpsLeftAxis}}))
	ms[i] = resetCopy(ms[i], q).Reshape(dLeft, dUp, -1)
}

func lq(q, a *tensor.Dense, bufs [2]*tensor.Dense) *tensor.Dense {
	r := tensor.QR(q, a.H(), bufs)
	return r.H()
}

func resetCopy(dst, src *tensor.Dense) *tensor.Dense {
	shape := src.Shape()
	zeroDigit := make([]int, len(shape))
	dst.Reset(shape...).Set(zeroDigit, src)
	return dst
}

func ones(t *tensor.Dense, shape ...int) *tensor.Dense {
	t.Reset(shape...)
	for ijk := range t.All() {
		t.SetAt(ijk, 1)
	}
	return t
}

func abs(x complex64) float32 {
	return float32(cmplx.Abs(complex128(x)))
}

func randTensor(shape ...int) *tensor.Dense {
	t := tensor.Zeros(shape...)
	for ijk := range t.All() {
		t.SetAt(ijk, complex(rand.Float32()*2-1, rand.Float32()*2-1))
	}
	return t
}
