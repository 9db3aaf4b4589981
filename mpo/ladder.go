package mpo

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

// Product is the two-site term Coeff * A_I * (Π_{I<n<J} S_n) * B_J.
type Product struct {
	I     int
	J     int
	A     *mat.COO
	S     *mat.COO
	B     *mat.COO
	Coeff complex128
}

// Channels returns the blocks of the Hamiltonian
//
//	H = Σ_n onsite_n + Σ_k products_k
//
// on a chain of sites.
// Each product gets its own automaton channel between the start state 0 and the final state, so the bond dimension is len(products)+2.
// The first block is a single row and the last block a single column.
// As with the other automata, the start-to-final entry of the contracted blocks is -H.
func Channels(phys, sites int, onsite *mat.COO, products []Product) ([]*Block, error) {
	if sites < 1 {
		return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%d", sites))
	}
	dim := len(products) + 2
	final := dim - 1
	id := mat.COOIdentity(phys)

	var negOnsite *mat.COO
	if onsite != nil {
		negOnsite = onsite.Clone()
		negOnsite.Scale(-1)
	}

	blocks := make([]*Block, 0, sites)
	for n := range sites {
		b := NewBlock(dim, dim, phys)
		if err := b.Set(0, 0, id); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if err := b.Set(final, final, id); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if err := b.Set(0, final, negOnsite); err != nil {
			return nil, errors.Wrap(err, "")
		}

		for k, p := range products {
			if p.I < 0 || p.I >= p.J || p.J >= sites {
				return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%d %d %d", p.I, p.J, sites))
			}
			channel := k + 1

			var err error
			switch {
			case n == p.I:
				a := p.A.Clone()
				a.Scale(-p.Coeff)
				err = b.Set(0, channel, a)
			case p.I < n && n < p.J:
				err = b.Set(channel, channel, p.S)
			case n == p.J:
				err = b.Set(channel, final, p.B)
			}
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("site %d product %d", n, k))
			}
		}
		blocks = append(blocks, b)
	}

	blocks[0] = blocks[0].slice([2]int{0, 1}, [2]int{0, dim})
	last := blocks[len(blocks)-1]
	blocks[len(blocks)-1] = last.slice([2]int{0, last.rows}, [2]int{final, dim})
	return blocks, nil
}

// slice returns the automaton rows in [ys[0], ys[1]) and columns in [xs[0], xs[1]).
func (b *Block) slice(ys, xs [2]int) *Block {
	s := NewBlock(ys[1]-ys[0], xs[1]-xs[0], b.phys)
	for i := ys[0]; i < ys[1]; i++ {
		for j := xs[0]; j < xs[1]; j++ {
			s.ops[(i-ys[0])*s.cols+(j-xs[0])] = b.At(i, j)
		}
	}
	return s
}

// LadderHamiltonian returns the Hubbard Hamiltonian
//
//	H = -t Σ_<ij>σ (c+_iσ c_jσ + h.c.) + U Σ_i n_i↑ n_i↓ + V Σ_(ij) n_i n_j
//
// where hops are the <ij> bonds and densities the (ij) pairs.
// Site n is the n-th Kronecker factor, and the local index of a site is 2*n↑ + n↓.
// All up orbitals precede all down orbitals in the Jordan-Wigner ordering, so a hop only sees the parity of its own species.
func LadderHamiltonian(sites int, hops, densities [][2]int, t, u, v float64) (*mat.COO, error) {
	lib := Fermions{}
	ops := make(map[Kind]*mat.COO)
	for _, k := range []Kind{AnnihilateUp, CreateUp, AnnihilateDown, CreateDown, ParityUp, ParityDown, Occupation, DoubleOccupancy} {
		m, err := lib.Matrix(k)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		ops[k] = m
	}

	species := []struct {
		annihilate Kind
		create     Kind
		parity     Kind
	}{
		{annihilate: AnnihilateUp, create: CreateUp, parity: ParityUp},
		{annihilate: AnnihilateDown, create: CreateDown, parity: ParityDown},
	}
	products := make([]Product, 0, 4*len(hops)+len(densities))
	for _, h := range hops {
		i, j := min(h[0], h[1]), max(h[0], h[1])
		for _, s := range species {
			// c+_i c_j = a+_i F a_j and c+_j c_i = a_i F a+_j for i < j.
			products = append(products, Product{I: i, J: j, A: ops[s.create], S: ops[s.parity], B: ops[s.annihilate], Coeff: complex(-t, 0)})
			products = append(products, Product{I: i, J: j, A: ops[s.annihilate], S: ops[s.parity], B: ops[s.create], Coeff: complex(-t, 0)})
		}
	}
	for _, d := range densities {
		i, j := min(d[0], d[1]), max(d[0], d[1])
		products = append(products, Product{I: i, J: j, A: ops[Occupation], S: mat.COOIdentity(lib.Phys()), B: ops[Occupation], Coeff: complex(v, 0)})
	}

	onsite := ops[DoubleOccupancy].Clone()
	onsite.Scale(complex(u, 0))
	blocks, err := Channels(lib.Phys(), sites, onsite, products)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	lattice, err := Contract(blocks, 1)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	h, err := Hamiltonian(lattice)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return h, nil
}
