package exactdiag

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

var (
	ErrOutOfRange      = errors.New("out of range")
	ErrInvalidArgument = errors.New("invalid argument")
)

// TermKind is the kind of a two-site coupling.
type TermKind int

const (
	// Horizontal is -J σx_i σx_j.
	Horizontal TermKind = iota
	// Vertical is -J σy_i σy_j.
	Vertical
	// Hopping is -t Σ_σ c+_iσ c_jσ + h.c.
	Hopping
	// Density is V n_i n_j.
	Density
)

func (k TermKind) String() string {
	switch k {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Hopping:
		return "hopping"
	case Density:
		return "density"
	default:
		return fmt.Sprintf("TermKind(%d)", int(k))
	}
}

// Term is a coupling between sites I and J.
type Term struct {
	I        int
	J        int
	Strength float64
	Kind     TermKind
}

// SpinTriples returns the non-zero matrix elements of the spin Hamiltonian Σ terms on n sites.
// Elements from the same basis state are listed together, in the order of terms, and may repeat coordinates.
func SpinTriples(n int, terms []Term) ([]mat.Triple, error) {
	for _, term := range terms {
		if err := checkSites(n, term); err != nil {
			return nil, errors.Wrap(err, "")
		}
		if term.Kind != Horizontal && term.Kind != Vertical {
			return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%#v", term))
		}
	}

	triples := make([]mat.Triple, 0, len(terms)<<n)
	for b := range States(n) {
		for _, term := range terms {
			triples = append(triples, spinTriple(b, term))
		}
	}
	return triples, nil
}

func spinTriple(b uint, term Term) mat.Triple {
	to := FlipBit(FlipBit(b, term.I), term.J)
	v := complex(-term.Strength, 0)
	if term.Kind == Vertical {
		// σy|0> = i|1> and σy|1> = -i|0>.
		sign := -1
		if Bit(b, term.I) == 1 {
			sign = -sign
		}
		if Bit(b, term.J) == 1 {
			sign = -sign
		}
		v *= complex(float64(sign), 0)
	}
	return mat.Triple{V: v, Row: int(to), Col: int(b)}
}

// SpinHamiltonian assembles the 2^n by 2^n spin Hamiltonian Σ terms.
func SpinHamiltonian(n int, terms []Term) (*mat.COO, error) {
	triples, err := SpinTriples(n, terms)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	h, err := mat.NewCOO(1<<n, 1<<n, triples)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return h, nil
}

func checkSites(n int, term Term) error {
	if term.I < 0 || term.I >= n || term.J < 0 || term.J >= n || term.I == term.J {
		return errors.Wrap(ErrOutOfRange, fmt.Sprintf("%#v %d", term, n))
	}
	return nil
}
