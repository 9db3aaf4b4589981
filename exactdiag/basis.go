package exactdiag

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/combin"
)

// Basis holds the lookup tables between bit patterns and their index among patterns with the same number of set bits.
// A sector (u, d) of spinful fermions is spanned by the pairs of an up pattern with u particles and a down pattern with d particles,
// and the pair (iu, id) has index iu*C(L, d) + id within the sector.
type Basis struct {
	sites    int
	patterns [][]uint
	index    map[uint]int
}

// NewBasis builds the lookup tables for all particle numbers on a lattice of sites.
func NewBasis(sites int) (*Basis, error) {
	if sites < 1 || sites >= bits.UintSize {
		return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%d", sites))
	}
	b := &Basis{sites: sites, patterns: make([][]uint, sites+1), index: make(map[uint]int, 1<<sites)}
	for k := range sites + 1 {
		combs := combin.Combinations(sites, k)
		// The empty pattern is the only state without particles.
		if k == 0 {
			combs = [][]int{{}}
		}

		b.patterns[k] = make([]uint, 0, len(combs))
		for i, comb := range combs {
			var p uint
			for _, n := range comb {
				p |= 1 << n
			}
			b.patterns[k] = append(b.patterns[k], p)
			b.index[p] = i
		}
	}
	return b, nil
}

func (b *Basis) Sites() int { return b.sites }

// Dim returns the number of patterns with k set bits.
func (b *Basis) Dim(k int) (int, error) {
	if k < 0 || k > b.sites {
		return -1, errors.Wrap(ErrOutOfRange, fmt.Sprintf("%d %d", k, b.sites))
	}
	return len(b.patterns[k]), nil
}

// Pattern returns the i-th pattern with k set bits.
func (b *Basis) Pattern(k, i int) (uint, error) {
	dim, err := b.Dim(k)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	if i < 0 || i >= dim {
		return 0, errors.Wrap(ErrOutOfRange, fmt.Sprintf("%d %d %d", k, i, dim))
	}
	return b.patterns[k][i], nil
}

// Index returns the number of set bits of p and its index among patterns with as many set bits.
func (b *Basis) Index(p uint) (k, i int, err error) {
	i, ok := b.index[p]
	if !ok {
		return -1, -1, errors.Wrap(ErrOutOfRange, fmt.Sprintf("%b %d", p, b.sites))
	}
	return bits.OnesCount(p), i, nil
}

// SectorDim returns the dimension C(L, u)*C(L, d) of the sector (u, d).
func (b *Basis) SectorDim(u, d int) (int, error) {
	du, err := b.Dim(u)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	dd, err := b.Dim(d)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return du * dd, nil
}

// SectorState returns the up and down patterns of the i-th state of sector (u, d).
func (b *Basis) SectorState(u, d, i int) (up, down uint, err error) {
	dim, err := b.SectorDim(u, d)
	if err != nil {
		return 0, 0, errors.Wrap(err, "")
	}
	if i < 0 || i >= dim {
		return 0, 0, errors.Wrap(ErrOutOfRange, fmt.Sprintf("%d %d %d %d", u, d, i, dim))
	}
	dd := len(b.patterns[d])
	return b.patterns[u][i/dd], b.patterns[d][i%dd], nil
}

// SectorIndex is the inverse of SectorState.
func (b *Basis) SectorIndex(up, down uint) (u, d, i int, err error) {
	u, iu, err := b.Index(up)
	if err != nil {
		return -1, -1, -1, errors.Wrap(err, "up")
	}
	d, id, err := b.Index(down)
	if err != nil {
		return -1, -1, -1, errors.Wrap(err, "down")
	}
	return u, d, iu*len(b.patterns[d]) + id, nil
}

// FullIndex returns the index of a state in the 4^L dimensional product basis,
// where site 0 is the leading tensor factor and the local index of a site is 2*n_up + n_down.
func (b *Basis) FullIndex(up, down uint) int {
	var idx int
	for n := range b.sites {
		local := int(2*Bit(up, n) + Bit(down, n))
		idx = idx*4 + local
	}
	return idx
}
