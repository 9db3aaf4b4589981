package mps

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mpo"
)

func TestFromBlocks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		jx float64
		jy float64
	}{
		{jx: 0.4, jy: 1.3},
		{jx: 1, jy: 1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%f %f", test.jx, test.jy), func(t *testing.T) {
			t.Parallel()
			ws, err := Compass(test.jx, test.jy)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if len(ws) != 9 {
				t.Fatalf("%d", len(ws))
			}
			for i, w := range ws {
				left, right := 6, 6
				switch i {
				case 0:
					left = 1
				case len(ws) - 1:
					right = 1
				}
				if s := w.Shape(); s[0] != left || s[1] != right || s[2] != 2 || s[3] != 2 {
					t.Fatalf("%d %#v", i, s)
				}
			}

			h, err := mpo.CompassHamiltonian(test.jx, test.jy)
			if err != nil {
				t.Fatalf("%+v", err)
			}

			// Compare <psi|H|psi> for a random product state.
			ms := make([]*tensor.Dense, 0, len(ws))
			psi := []complex128{1}
			for range ws {
				a := [2]complex128{
					complex(rand.Float64()*2-1, rand.Float64()*2-1),
					complex(rand.Float64()*2-1, rand.Float64()*2-1),
				}
				m := tensor.Zeros(1, 2, 1)
				m.SetAt([]int{0, 0, 0}, complex64(a[0]))
				m.SetAt([]int{0, 1, 0}, complex64(a[1]))
				ms = append(ms, m)

				next := make([]complex128, 0, 2*len(psi))
				for _, p := range psi {
					next = append(next, p*complex128(complex64(a[0])), p*complex128(complex64(a[1])))
				}
				psi = next
			}
			var expected complex128
			for _, v := range h.Data {
				expected += cmplx.Conj(psi[v.Row]) * v.V * psi[v.Col]
			}

			fs := make([]*tensor.Dense, 0, len(ws))
			for range ws {
				fs = append(fs, tensor.Zeros(1))
			}
			bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
			l, err := LExpressions(fs, ws, ms, bufs)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			r, err := RExpressions(fs, ws, ms, bufs)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if cmplx.Abs(complex128(l-r)) > 1e-4*max(cmplx.Abs(complex128(l)), 1) {
				t.Fatalf("%v %v", l, r)
			}
			got := complex128(l)
			if cmplx.Abs(got-expected) > 1e-4*max(cmplx.Abs(expected), 1) {
				t.Fatalf("%v, expected %v", got, expected)
			}
		})
	}
}

func TestGroundEnergy(t *testing.T) {
	t.Parallel()
	ws, err := Compass(0.4, 1.3)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	e0, err := GroundEnergy(ws, 16, NewSearchGroundStateOptions().Tol(1e-4))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected := -11.79980076
	if math.Abs(float64(e0)-expected) > 1e-3 {
		t.Fatalf("%f, expected %f", e0, expected)
	}
}

func TestEnvironmentMismatch(t *testing.T) {
	t.Parallel()
	ws, err := Compass(1, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	ms := RandMPS(ws, 4)
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	fs := []*tensor.Dense{tensor.Zeros(1)}
	if _, err := LExpressions(fs, ws, ms, bufs); !errors.Is(err, mpo.ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}
	if _, err := RExpressions(fs, ws, ms, bufs); !errors.Is(err, mpo.ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}
	if _, err := H2(ws, ms[:3], bufs); !errors.Is(err, mpo.ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}
	if _, err := InnerProduct(ms, ms[1:], bufs); !errors.Is(err, mpo.ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}

	// Dropping the last site leaves the environment open on the right.
	n := len(ws) - 1
	fs = make([]*tensor.Dense, 0, n)
	for range n {
		fs = append(fs, tensor.Zeros(1))
	}
	if _, err := LExpressions(fs, ws[:n], ms[:n], bufs); !errors.Is(err, mpo.ErrDimensionMismatch) {
		t.Fatalf("%+v", err)
	}

	ip, err := InnerProduct(ms, ms, bufs)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if real(ip) <= 0 {
		t.Fatalf("%v", ip)
	}
}

func TestFromBlocksInvalid(t *testing.T) {
	t.Parallel()
	if _, err := FromBlocks([]*mpo.Block{mpo.NewBlock(1, 1, 2)}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := FromBlocks([]*mpo.Block{mpo.NewBlock(3, 3, 2), mpo.NewBlock(2, 3, 2)}); err == nil {
		t.Fatalf("expected error")
	}
}
