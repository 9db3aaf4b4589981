package exactdiag

import (
	"flag"
	"fmt"
	"log"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

func TestParityBetween(t *testing.T) {
	t.Parallel()
	tests := []struct {
		b      uint
		i      int
		j      int
		parity int
	}{
		{b: 0b000000, i: 0, j: 5, parity: 0},
		{b: 0b111111, i: 0, j: 5, parity: 0},
		{b: 0b111111, i: 0, j: 4, parity: 1},
		{b: 0b000100, i: 1, j: 3, parity: 1},
		{b: 0b000100, i: 3, j: 1, parity: 1},
		{b: 0b001010, i: 1, j: 3, parity: 0},
		{b: 0b000110, i: 1, j: 2, parity: 0},
		{b: 0b011110, i: 0, j: 5, parity: 0},
		{b: 0b010110, i: 0, j: 5, parity: 1},
		{b: 0b000001, i: 0, j: 0, parity: 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%b %d %d", test.b, test.i, test.j), func(t *testing.T) {
			t.Parallel()
			if parity := ParityBetween(test.b, test.i, test.j); parity != test.parity {
				t.Fatalf("%d, expected %d", parity, test.parity)
			}
		})
	}
}

func TestBits(t *testing.T) {
	t.Parallel()
	if b := FlipBit(0b1010, 0); b != 0b1011 {
		t.Fatalf("%b", b)
	}
	if b := FlipBit(0b1010, 3); b != 0b0010 {
		t.Fatalf("%b", b)
	}
	if b := Bit(0b1010, 1); b != 1 {
		t.Fatalf("%b", b)
	}
	if b := Bit(0b1010, 2); b != 0 {
		t.Fatalf("%b", b)
	}
	if b := ReverseBits(0b000000011, 9); b != 0b110000000 {
		t.Fatalf("%b", b)
	}
	if b := ReverseBits(0b101100, 6); b != 0b001101 {
		t.Fatalf("%b", b)
	}

	var n uint
	for b := range States(4) {
		if b != n {
			t.Fatalf("%d, expected %d", b, n)
		}
		n++
	}
	if n != 16 {
		t.Fatalf("%d", n)
	}
}

func TestSpinHamiltonian(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n     int
		terms []Term
		// pairs are the Pauli matrices of each term, with the site ordering of Kronecker products.
		pairs [][][]complex128
	}{
		{
			n:     2,
			terms: []Term{{I: 0, J: 1, Strength: 0.7, Kind: Horizontal}},
			pairs: [][][]complex128{mat.PauliX},
		},
		{
			n:     2,
			terms: []Term{{I: 0, J: 1, Strength: 1.3, Kind: Vertical}},
			pairs: [][][]complex128{mat.PauliY},
		},
		{
			n: 4,
			terms: []Term{
				{I: 0, J: 1, Strength: 0.4, Kind: Horizontal},
				{I: 1, J: 3, Strength: 1.3, Kind: Vertical},
				{I: 0, J: 2, Strength: 2.1, Kind: Vertical},
				{I: 0, J: 2, Strength: 0.5, Kind: Vertical},
			},
			pairs: [][][]complex128{mat.PauliX, mat.PauliY, mat.PauliY, mat.PauliY},
		},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			h, err := SpinHamiltonian(test.n, test.terms)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !h.IsHermitian(1e-15) {
				t.Fatalf("not hermitian")
			}

			kron := mat.COOZeros(1<<test.n, 1<<test.n)
			for k, term := range test.terms {
				system := mat.COOIdentity(1)
				for s := range test.n {
					switch s {
					case term.I, term.J:
						system.Kron(mat.M(test.pairs[k]))
					default:
						system.Kron(mat.COOIdentity(2))
					}
				}
				kron.Add(complex(-term.Strength, 0), system)
			}

			// Bit n is site n, whereas site 0 is the leading Kronecker factor.
			idx := make([]int, 1<<test.n)
			for a := range idx {
				idx[a] = int(ReverseBits(uint(a), test.n))
			}
			expected, err := kron.Sub(idx)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !h.EqualApprox(expected, 1e-15) {
				t.Fatalf("%s, expected %s", h, expected)
			}
		})
	}
}

func TestSpinHamiltonianInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		terms []Term
		err   error
	}{
		{terms: []Term{{I: 0, J: 3, Kind: Horizontal}}, err: ErrOutOfRange},
		{terms: []Term{{I: -1, J: 1, Kind: Horizontal}}, err: ErrOutOfRange},
		{terms: []Term{{I: 1, J: 1, Kind: Vertical}}, err: ErrOutOfRange},
		{terms: []Term{{I: 0, J: 1, Kind: Hopping}}, err: ErrInvalidArgument},
	}
	for _, test := range tests {
		if _, err := SpinHamiltonian(3, test.terms); !errors.Is(err, test.err) {
			t.Fatalf("%#v %+v", test.terms, err)
		}
	}
}

func TestHubbardGroundState(t *testing.T) {
	t.Parallel()
	h, err := NewHubbard(6, ladderTerms(1, -0.4), 1.3)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	ground := math.Inf(1)
	var groundSector Sector
	spectrum, err := h.Spectrum(func(s Sector, vals []float64) {
		if vals[0] < ground {
			ground, groundSector = vals[0], s
		}
	})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(spectrum) != 4096 {
		t.Fatalf("%d", len(spectrum))
	}
	expected := -7.545086897958434
	if math.Abs(spectrum[0]-expected) > 1e-10 {
		t.Fatalf("%.15f, expected %.15f", spectrum[0], expected)
	}
	if spectrum[0] != ground || groundSector.Up != 3 || groundSector.Down != 3 {
		t.Fatalf("%f %#v", ground, groundSector)
	}
}

func TestHubbardSpinExchange(t *testing.T) {
	t.Parallel()
	h, err := NewHubbard(6, ladderTerms(1, -0.4), 1.3)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	tests := [][2]int{{0, 1}, {1, 2}, {2, 4}, {1, 5}}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test), func(t *testing.T) {
			t.Parallel()
			a, err := h.SectorHamiltonian(test[0], test[1])
			if err != nil {
				t.Fatalf("%+v", err)
			}
			b, err := h.SectorHamiltonian(test[1], test[0])
			if err != nil {
				t.Fatalf("%+v", err)
			}
			va, err := mat.Eigenvalues(a)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			vb, err := mat.Eigenvalues(b)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if len(va) != len(vb) {
				t.Fatalf("%d %d", len(va), len(vb))
			}
			for i := range va {
				if math.Abs(va[i]-vb[i]) > 1e-10 {
					t.Fatalf("%v, expected %v", va, vb)
				}
			}
		})
	}

	var dim int
	for _, s := range h.Sectors() {
		if s.Up > s.Down {
			t.Fatalf("%#v", s)
		}
		if (s.Up != s.Down) != (s.Multiplicity == 2) {
			t.Fatalf("%#v", s)
		}
		d, err := h.Basis.SectorDim(s.Up, s.Down)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		dim += s.Multiplicity * d
	}
	if dim != 4096 {
		t.Fatalf("%d", dim)
	}
}

func TestHubbardSector(t *testing.T) {
	t.Parallel()
	// Two sites with one fermion of each species.
	const tHop, u, v = 0.9, 2.0, 0.3
	h, err := NewHubbard(2, []Term{{I: 0, J: 1, Strength: tHop, Kind: Hopping}, {I: 1, J: 0, Strength: v, Kind: Density}}, u)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	m, err := h.SectorHamiltonian(1, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	// The states are (up, down) = (0, 0), (0, 1), (1, 0), (1, 1) in sites occupied.
	expected := mat.M([][]complex128{
		{u, -tHop, -tHop, 0},
		{-tHop, v, 0, -tHop},
		{-tHop, 0, v, -tHop},
		{0, -tHop, -tHop, u},
	})
	if !m.EqualApprox(expected, 1e-15) {
		t.Fatalf("%s, expected %s", m, expected)
	}
}

func TestHubbardFermionSign(t *testing.T) {
	t.Parallel()
	// A hop from site 0 to site 2 passes the fermion on site 1.
	h, err := NewHubbard(3, []Term{{I: 0, J: 2, Strength: 1, Kind: Hopping}}, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	m, err := h.SectorHamiltonian(2, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	from, err := sectorIndex(h.Basis, 0b011, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	to, err := sectorIndex(h.Basis, 0b110, 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if v := m.At(to, from); v != 1 {
		t.Fatalf("%v", v)
	}
	if v := m.At(from, to); v != 1 {
		t.Fatalf("%v", v)
	}
}

func sectorIndex(b *Basis, up, down uint) (int, error) {
	_, _, i, err := b.SectorIndex(up, down)
	return i, err
}

func ladderTerms(t, v float64) []Term {
	terms := make([]Term, 0)
	for _, b := range [][2]int{{0, 1}, {1, 2}, {3, 4}, {4, 5}, {0, 3}, {1, 4}, {2, 5}} {
		terms = append(terms, Term{I: b[0], J: b[1], Strength: t, Kind: Hopping})
	}
	for _, b := range [][2]int{{0, 4}, {1, 3}, {1, 5}, {2, 4}} {
		terms = append(terms, Term{I: b[0], J: b[1], Strength: v, Kind: Density})
	}
	return terms
}

func TestMain(m *testing.M) {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	m.Run()
}
