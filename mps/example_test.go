package mps_test

import (
	"fmt"
	"log"

	"github.com/fumin/qlattice/mps"
)

func Example() {
	// Create the compass model on a 3x3 lattice.
	ws, err := mps.Compass(0.4, 1.3)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	// Search for the ground state.
	const bondDim = 16
	e0, err := mps.GroundEnergy(ws, bondDim, mps.NewSearchGroundStateOptions().Tol(1e-4))
	if err != nil {
		log.Fatalf("%+v", err)
	}
	fmt.Printf("Ground energy %.2f\n", e0)

	// Output:
	// Ground energy -11.80
}
