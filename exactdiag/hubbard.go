package exactdiag

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

// Hubbard is the extended Hubbard model
//
//	H = -t Σ_<ij>σ (c+_iσ c_jσ + h.c.) + U Σ_i n_i↑ n_i↓ + V Σ_(ij) n_i n_j
//
// with Hopping terms of strength t and Density terms of strength V.
type Hubbard struct {
	Basis *Basis
	Terms []Term
	U     float64
}

// NewHubbard returns the Hubbard model of terms on a lattice of sites with on-site interaction u.
func NewHubbard(sites int, terms []Term, u float64) (*Hubbard, error) {
	basis, err := NewBasis(sites)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	for _, term := range terms {
		if err := checkSites(sites, term); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if term.Kind != Hopping && term.Kind != Density {
			return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%#v", term))
		}
	}
	return &Hubbard{Basis: basis, Terms: terms, U: u}, nil
}

// SectorTriples returns the matrix elements of the sector with u up and d down fermions.
func (h *Hubbard) SectorTriples(u, d int) ([]mat.Triple, error) {
	dim, err := h.Basis.SectorDim(u, d)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	triples := make([]mat.Triple, 0, dim)
	for i := range dim {
		up, down, err := h.Basis.SectorState(u, d, i)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}

		diag := h.U * float64(bits.OnesCount(up&down))
		for _, term := range h.Terms {
			switch term.Kind {
			case Density:
				ni := Bit(up, term.I) + Bit(down, term.I)
				nj := Bit(up, term.J) + Bit(down, term.J)
				diag += term.Strength * float64(ni*nj)
			case Hopping:
				for _, hop := range [][2]int{{term.I, term.J}, {term.J, term.I}} {
					if next, v, ok := hopping(up, hop[0], hop[1], term.Strength); ok {
						triples, err = h.appendTriple(triples, next, down, i, v)
						if err != nil {
							return nil, errors.Wrap(err, "")
						}
					}
					if next, v, ok := hopping(down, hop[0], hop[1], term.Strength); ok {
						triples, err = h.appendTriple(triples, up, next, i, v)
						if err != nil {
							return nil, errors.Wrap(err, "")
						}
					}
				}
			}
		}
		if diag != 0 {
			triples = append(triples, mat.Triple{V: complex(diag, 0), Row: i, Col: i})
		}
	}
	return triples, nil
}

// hopping applies -t c+_to c_from to the single species pattern p.
func hopping(p uint, from, to int, t float64) (uint, float64, bool) {
	if Bit(p, from) == 0 || Bit(p, to) == 1 {
		return 0, 0, false
	}
	v := -t
	if ParityBetween(p, from, to) == 1 {
		v = -v
	}
	return FlipBit(FlipBit(p, from), to), v, true
}

func (h *Hubbard) appendTriple(triples []mat.Triple, up, down uint, col int, v float64) ([]mat.Triple, error) {
	_, _, row, err := h.Basis.SectorIndex(up, down)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return append(triples, mat.Triple{V: complex(v, 0), Row: row, Col: col}), nil
}

// SectorHamiltonian assembles the block of the sector with u up and d down fermions.
func (h *Hubbard) SectorHamiltonian(u, d int) (*mat.COO, error) {
	triples, err := h.SectorTriples(u, d)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	dim, err := h.Basis.SectorDim(u, d)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m, err := mat.NewCOO(dim, dim, triples)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

// Sector is a block of fixed particle numbers, together with the number of blocks sharing its spectrum.
type Sector struct {
	Up           int
	Down         int
	Multiplicity int
}

// Sectors lists the sectors with Up <= Down.
// The spin exchange symmetry maps sector (u, d) onto (d, u), so a sector with Up != Down stands for both.
func (h *Hubbard) Sectors() []Sector {
	sectors := make([]Sector, 0)
	for u := range h.Basis.sites + 1 {
		for d := u; d <= h.Basis.sites; d++ {
			s := Sector{Up: u, Down: d, Multiplicity: 1}
			if u != d {
				s.Multiplicity = 2
			}
			sectors = append(sectors, s)
		}
	}
	return sectors
}

// Spectrum returns all 4^L eigenvalues in ascending order.
// If fn is not nil, it is called after each sector is diagonalized.
func (h *Hubbard) Spectrum(fn func(Sector, []float64)) ([]float64, error) {
	spectrum := make([]float64, 0, 1<<(2*h.Basis.sites))
	for _, s := range h.Sectors() {
		m, err := h.SectorHamiltonian(s.Up, s.Down)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%#v", s))
		}
		vals, err := mat.Eigenvalues(m)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%#v", s))
		}
		if fn != nil {
			fn(s, vals)
		}
		for range s.Multiplicity {
			spectrum = append(spectrum, vals...)
		}
	}
	slices.Sort(spectrum)
	return spectrum, nil
}
