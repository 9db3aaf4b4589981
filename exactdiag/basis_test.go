package exactdiag

import (
	"fmt"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"
)

func TestBasisRoundTrip(t *testing.T) {
	t.Parallel()
	for _, sites := range []int{1, 2, 6} {
		t.Run(fmt.Sprintf("%d", sites), func(t *testing.T) {
			t.Parallel()
			basis, err := NewBasis(sites)
			require.NoError(t, err)

			var total int
			for u := range sites + 1 {
				for d := range sites + 1 {
					dim, err := basis.SectorDim(u, d)
					require.NoError(t, err)
					require.Equal(t, combin.Binomial(sites, u)*combin.Binomial(sites, d), dim)
					total += dim

					seen := make(map[int]bool, dim)
					for i := range dim {
						up, down, err := basis.SectorState(u, d, i)
						require.NoError(t, err)
						require.Equal(t, u, bits.OnesCount(up))
						require.Equal(t, d, bits.OnesCount(down))

						gu, gd, gi, err := basis.SectorIndex(up, down)
						require.NoError(t, err)
						require.Equal(t, [3]int{u, d, i}, [3]int{gu, gd, gi})

						full := basis.FullIndex(up, down)
						require.False(t, seen[full])
						seen[full] = true
					}
				}
			}
			require.Equal(t, 1<<(2*sites), total)
		})
	}
}

func TestBasisPattern(t *testing.T) {
	t.Parallel()
	basis, err := NewBasis(4)
	require.NoError(t, err)

	// Patterns of the same particle number follow the lexicographic order of their occupied sites.
	expected := []uint{0b0011, 0b0101, 0b1001, 0b0110, 0b1010, 0b1100}
	dim, err := basis.Dim(2)
	require.NoError(t, err)
	require.Equal(t, len(expected), dim)
	for i, p := range expected {
		got, err := basis.Pattern(2, i)
		require.NoError(t, err)
		require.Equal(t, p, got)

		k, idx, err := basis.Index(p)
		require.NoError(t, err)
		require.Equal(t, 2, k)
		require.Equal(t, i, idx)
	}

	p, err := basis.Pattern(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint(0), p)
}

func TestBasisOutOfRange(t *testing.T) {
	t.Parallel()
	basis, err := NewBasis(3)
	require.NoError(t, err)

	_, err = basis.Pattern(1, 3)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = basis.Pattern(4, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = basis.Pattern(-1, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = basis.SectorState(1, 1, 9)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = basis.SectorState(1, 2, -1)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = basis.Index(0b1000)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, _, _, err = basis.SectorIndex(0b001, 0b1001)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = NewBasis(0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFullIndex(t *testing.T) {
	t.Parallel()
	basis, err := NewBasis(3)
	require.NoError(t, err)
	tests := []struct {
		up   uint
		down uint
		full int
	}{
		{up: 0b000, down: 0b000, full: 0},
		// Site 0 is the leading factor.
		{up: 0b001, down: 0b000, full: 2 * 16},
		{up: 0b000, down: 0b001, full: 1 * 16},
		{up: 0b100, down: 0b100, full: 3},
		{up: 0b111, down: 0b010, full: 2*16 + 3*4 + 2},
	}
	for _, test := range tests {
		require.Equal(t, test.full, basis.FullIndex(test.up, test.down), "%b %b", test.up, test.down)
	}
}
